// Package golang emits a migration plan as Go source.
//
// The generated file declares a constant per store name, a Version type and
// the ordered Versions table, so an application can register its engine
// versions without reading schema files at runtime:
//
//	for _, v := range schema.Versions {
//	    db.Version(v.Number).Stores(v.Stores)
//	}
package golang

import (
	"fmt"
	"go/token"
	"io"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/idbschema/compiler/gen"
	"github.com/syssam/idbschema/migrate"
)

// Header is the first line of every generated file.
const Header = "Code generated by idbschema. DO NOT EDIT."

// DefaultPackage is the package name used when none is configured.
const DefaultPackage = "schema"

// Config holds the emitter configuration.
type Config struct {
	// Package is the name of the generated package.
	Package string
	// StorePrefix prefixes every store name constant.
	StorePrefix string
}

// Option configures the emitter.
type Option func(*Config) error

// WithPackage sets the generated package name.
func WithPackage(name string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(name) {
			return gen.NewConfigError("Package", name, "must be a valid Go identifier")
		}
		c.Package = name
		return nil
	}
}

// WithStorePrefix sets the prefix of store name constants.
func WithStorePrefix(prefix string) Option {
	return func(c *Config) error {
		if prefix != "" && !token.IsExported(prefix) {
			return gen.NewConfigError("StorePrefix", prefix, "must start with an upper case letter")
		}
		c.StorePrefix = prefix
		return nil
	}
}

func newConfig(opts ...Option) (*Config, error) {
	c := &Config{Package: DefaultPackage, StorePrefix: "Store"}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

var title = cases.Title(language.English, cases.NoLower)

// Identifier converts a store name into an exported Go identifier:
// "todo_items" becomes "TodoItems".
func Identifier(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}

// Generate builds the Go file of p.
func Generate(p *migrate.Plan, opts ...Option) (*jen.File, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil plan", migrate.ErrInvalidPlan)
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	consts, err := storeConsts(p, cfg.StorePrefix)
	if err != nil {
		return nil, err
	}

	f := jen.NewFile(cfg.Package)
	f.HeaderComment(Header)

	if len(consts) > 0 {
		f.Comment("Object store names.")
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, c := range consts {
				g.Id(c.ident).Op("=").Lit(c.store)
			}
		})
	}

	f.Comment("Version is one declared schema version.")
	f.Type().Id("Version").Struct(
		jen.Comment("Number is the engine version number."),
		jen.Id("Number").Float64(),
		jen.Comment("Stores maps every object store to its index spec."),
		jen.Id("Stores").Map(jen.String()).String(),
		jen.Comment("Checksum identifies the store specs of the version."),
		jen.Id("Checksum").String(),
		jen.Comment("Upgrade reports whether a data upgrade runs at this version."),
		jen.Id("Upgrade").Bool(),
	)

	f.Comment("Versions lists every schema version in ascending order.")
	f.Var().Id("Versions").Op("=").Index().Id("Version").ValuesFunc(func(g *jen.Group) {
		for _, e := range p.Entries {
			stores := jen.Dict{}
			for _, st := range e.Stores {
				stores[jen.Lit(st.Name)] = jen.Lit(st.Spec)
			}
			g.Values(jen.Dict{
				jen.Id("Number"):   jen.Lit(e.Version),
				jen.Id("Stores"):   jen.Map(jen.String()).String().Values(stores),
				jen.Id("Checksum"): jen.Lit(e.Checksum.String()),
				jen.Id("Upgrade"):  jen.Lit(e.HasUpgrade()),
			})
		}
	})

	f.Comment("Latest returns the newest schema version.")
	f.Func().Id("Latest").Params().Params(jen.Id("Version"), jen.Bool()).Block(
		jen.If(jen.Len(jen.Id("Versions")).Op("==").Lit(0)).Block(
			jen.Return(jen.Id("Version").Values(), jen.False()),
		),
		jen.Return(jen.Id("Versions").Index(jen.Len(jen.Id("Versions")).Op("-").Lit(1)), jen.True()),
	)

	f.Comment("Lookup returns the schema version numbered n.")
	f.Func().Id("Lookup").Params(jen.Id("n").Float64()).Params(jen.Id("Version"), jen.Bool()).Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Id("Versions")).Block(
			jen.If(jen.Id("v").Dot("Number").Op("==").Id("n")).Block(
				jen.Return(jen.Id("v"), jen.True()),
			),
		),
		jen.Return(jen.Id("Version").Values(), jen.False()),
	)
	return f, nil
}

type storeConst struct {
	ident string
	store string
}

// storeConsts names every store of every version, in order of first
// appearance.
func storeConsts(p *migrate.Plan, prefix string) ([]storeConst, error) {
	var (
		out    []storeConst
		seen   = make(map[string]bool)
		idents = make(map[string]string)
	)
	for _, e := range p.Entries {
		for _, st := range e.Stores {
			if seen[st.Name] {
				continue
			}
			seen[st.Name] = true
			ident := prefix + Identifier(st.Name)
			if !token.IsIdentifier(ident) || !token.IsExported(ident) {
				return nil, fmt.Errorf("idbschema: store %q has no Go identifier", st.Name)
			}
			if other, ok := idents[ident]; ok {
				return nil, fmt.Errorf("idbschema: stores %q and %q both map to %s", other, st.Name, ident)
			}
			idents[ident] = st.Name
			out = append(out, storeConst{ident: ident, store: st.Name})
		}
	}
	return out, nil
}

// Write renders the Go file of p to w.
func Write(w io.Writer, p *migrate.Plan, opts ...Option) error {
	f, err := Generate(p, opts...)
	if err != nil {
		return err
	}
	return f.Render(w)
}

// WriteFile renders the Go file of p to path.
func WriteFile(path string, p *migrate.Plan, opts ...Option) error {
	f, err := Generate(p, opts...)
	if err != nil {
		return err
	}
	return f.Save(path)
}
