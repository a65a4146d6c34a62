package migrate

import (
	"fmt"
	"strings"

	"github.com/syssam/idbschema/compiler/gen"
)

// ValidationError represents one issue between two consecutive versions.
type ValidationError struct {
	Version float64
	Store   string
	Index   string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Index != "" {
		return fmt.Sprintf("v%v %s.%s: %s", e.Version, e.Store, e.Index, e.Message)
	}
	return fmt.Sprintf("v%v %s: %s", e.Version, e.Store, e.Message)
}

// ValidationResult holds the results of plan validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, list []*ValidationError) {
		if len(list) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range list {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) add(err *ValidationError, allowed bool) {
	if allowed {
		r.Warnings = append(r.Warnings, err)
	} else {
		r.Errors = append(r.Errors, err)
	}
}

// ValidateOption configures plan validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropStore bool
	allowDropIndex bool
}

// AllowDropStore reports stores missing from a later version as warnings.
func AllowDropStore() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropStore = true
	}
}

// AllowDropIndex reports indexes missing from a later version as warnings.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropIndex = true
	}
}

// ValidatePlan validates every step between consecutive plan entries.
func ValidatePlan(p *Plan, opts ...ValidateOption) *ValidationResult {
	result := &ValidationResult{}
	for i := 1; i < len(p.Entries); i++ {
		step := ValidateStep(p.Entries[i].Version, p.Entries[i-1].Stores, p.Entries[i].Stores, opts...)
		result.Errors = append(result.Errors, step.Errors...)
		result.Warnings = append(result.Warnings, step.Warnings...)
	}
	return result
}

// ValidateStep validates moving from the current to the desired stores at
// the given version. Changing the primary key of a store is always an
// error since the engine cannot rekey existing records.
//
// Example:
//
//	result := migrate.ValidateStep(0.2, prev.Stores, next.Stores)
//	if result.HasBreakingChanges() {
//	    log.Fatal("Breaking changes detected:", result)
//	}
func ValidateStep(version float64, current, desired gen.StoreSpec, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	desiredMap := desired.Map()
	for _, st := range current {
		if _, ok := desiredMap[st.Name]; !ok {
			result.add(&ValidationError{
				Version:  version,
				Store:    st.Name,
				Message:  "store is no longer declared",
				Breaking: true,
			}, cfg.allowDropStore)
		}
	}
	currentMap := current.Map()
	for _, st := range desired {
		prev, ok := currentMap[st.Name]
		if !ok {
			continue
		}
		validateStoreStep(version, st.Name, prev, st.Spec, cfg, result)
	}
	return result
}

func validateStoreStep(version float64, store, current, desired string, cfg *validateConfig, result *ValidationResult) {
	curPK, curIdx := parseSpec(current)
	desPK, desIdx := parseSpec(desired)
	if curPK != desPK {
		result.Errors = append(result.Errors, &ValidationError{
			Version:  version,
			Store:    store,
			Index:    desPK.name,
			Message:  fmt.Sprintf("primary key changing from %s to %s is not supported", curPK, desPK),
			Breaking: true,
		})
	}
	for _, idx := range curIdx {
		if _, ok := lookupToken(desIdx, idx.name); !ok {
			result.add(&ValidationError{
				Version: version,
				Store:   store,
				Index:   idx.name,
				Message: "index will be dropped",
			}, cfg.allowDropIndex)
		}
	}
	for _, idx := range desIdx {
		prev, existed := lookupToken(curIdx, idx.name)
		switch {
		case idx.unique && (!existed || !prev.unique):
			result.Warnings = append(result.Warnings, &ValidationError{
				Version: version,
				Store:   store,
				Index:   idx.name,
				Message: "adding a unique index may fail if duplicate values exist",
			})
		case existed && prev.multi != idx.multi:
			result.Warnings = append(result.Warnings, &ValidationError{
				Version: version,
				Store:   store,
				Index:   idx.name,
				Message: "index changes between single and multi entry",
			})
		}
	}
}

// indexToken is one decoded token of an index spec.
type indexToken struct {
	name   string
	auto   bool
	uuid   bool
	unique bool
	multi  bool
}

func (t indexToken) String() string {
	switch {
	case t.auto:
		return prefixAuto + t.name
	case t.uuid:
		return prefixUUID + t.name
	default:
		return t.name
	}
}

const (
	prefixAuto   = "++"
	prefixUUID   = "$$"
	prefixUnique = "&"
	prefixMulti  = "*"
)

func parseToken(s string) indexToken {
	var t indexToken
	for {
		switch {
		case strings.HasPrefix(s, prefixAuto):
			t.auto, s = true, s[len(prefixAuto):]
		case strings.HasPrefix(s, prefixUUID):
			t.uuid, s = true, s[len(prefixUUID):]
		case strings.HasPrefix(s, prefixUnique):
			t.unique, s = true, s[len(prefixUnique):]
		case strings.HasPrefix(s, prefixMulti):
			t.multi, s = true, s[len(prefixMulti):]
		default:
			t.name = s
			return t
		}
	}
}

// parseSpec splits an index spec into its primary key and indexes.
func parseSpec(spec string) (indexToken, []indexToken) {
	parts := strings.Split(spec, gen.Separator)
	idx := make([]indexToken, 0, len(parts)-1)
	for _, p := range parts[1:] {
		idx = append(idx, parseToken(p))
	}
	return parseToken(parts[0]), idx
}

func lookupToken(list []indexToken, name string) (indexToken, bool) {
	for _, t := range list {
		if t.name == name {
			return t, true
		}
	}
	return indexToken{}, false
}
