package gen

import (
	"fmt"
	"strings"
)

// Separator joins the index tokens of one store spec.
const Separator = ","

// Prefixes of encoded index tokens.
const (
	prefixAuto   = "++"
	prefixUUID   = "$$"
	prefixUnique = "&"
	prefixMulti  = "*"
)

// EncodeEntity returns the index spec of one entity: the primary key token
// first, then the secondary index tokens in field order.
func EncodeEntity(e *EntityInfo) (string, error) {
	return encodeEntity(e, false)
}

func encodeEntity(e *EntityInfo, composite bool) (string, error) {
	var (
		primary, primaryField string
		tokens                []string
		groups                compositeGroups
	)
	for _, f := range e.Fields {
		switch role := f.Index.(type) {
		case nil:
			continue
		case PrimaryRole:
			if primaryField != "" {
				return "", NewSchemaError(ErrDuplicatePrimaryKey, e.Name, f.Name,
					fmt.Sprintf("fields %q and %q both have a primary key role", primaryField, f.Name))
			}
			token, err := primaryToken(f.Name, role)
			if err != nil {
				return "", &SchemaError{Kind: ErrUnsupportedPrimary, Type: e.Name, Field: f.Name, Message: err.Error()}
			}
			primary, primaryField = token, f.Name
		case IndexRole:
			token := f.Name
			for _, sym := range role {
				switch sym {
				case IndexUnique:
					token = prefixUnique + token
				case IndexMulti:
					token = prefixMulti + token
				case IndexPlain:
				default:
					return "", NewSchemaError(ErrUnsupportedIndex, e.Name, f.Name, fmt.Sprintf("symbol %q", sym))
				}
			}
			tokens = append(tokens, token)
			if composite && f.CompositeGroup != "" {
				groups.add(f.CompositeGroup, f.Name, role)
			}
		}
	}
	if primaryField == "" {
		return "", NewSchemaError(ErrMissingPrimaryKey, e.Name, "", "")
	}
	tokens = append([]string{primary}, tokens...)
	tokens = append(tokens, groups.tokens()...)
	return strings.Join(tokens, Separator), nil
}

func primaryToken(name string, role PrimaryRole) (string, error) {
	switch role {
	case PrimaryKey:
		return name, nil
	case PrimaryAuto:
		return prefixAuto + name, nil
	case PrimaryUUID:
		return prefixUUID + name, nil
	default:
		return "", fmt.Errorf("strategy %q", string(role))
	}
}

type compositeGroup struct {
	name    string
	members []string
	unique  bool
}

// compositeGroups keeps groups in order of their first member.
type compositeGroups []*compositeGroup

func (g *compositeGroups) add(group, field string, role IndexRole) {
	var cg *compositeGroup
	for _, c := range *g {
		if c.name == group {
			cg = c
			break
		}
	}
	if cg == nil {
		cg = &compositeGroup{name: group}
		*g = append(*g, cg)
	}
	cg.members = append(cg.members, field)
	for _, sym := range role {
		if sym == IndexUnique {
			cg.unique = true
		}
	}
}

// tokens encodes every group with at least two members.
func (g compositeGroups) tokens() []string {
	var out []string
	for _, c := range g {
		if len(c.members) < 2 {
			continue
		}
		token := "[" + strings.Join(c.members, "+") + "]"
		if c.unique {
			token = prefixUnique + token
		}
		out = append(out, token)
	}
	return out
}
