package migrate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/syssam/idbschema/compiler/gen"
	"github.com/syssam/idbschema/compiler/load"
)

// Compiler compiles one schema snapshot. *gen.Compiler implements it.
type Compiler interface {
	Compile(input any) (gen.StoreSpec, error)
}

// Sequencer threads schema snapshots into a migration plan.
type Sequencer struct {
	compiler Compiler
	cfg      *Config
}

// NewSequencer creates a Sequencer compiling snapshots with c.
func NewSequencer(c Compiler, opts ...Option) (*Sequencer, error) {
	if c == nil {
		return nil, gen.NewConfigError("Compiler", nil, "compiler cannot be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Sequencer{compiler: c, cfg: cfg}, nil
}

// Sequence compiles every snapshot in order and assigns each the next slot,
// starting at VersionStart. Nil snapshots are handled by the NilPolicy. An
// upgrade registered for a slot is attached to the entry taking it.
//
// The plan is all or nothing: the first snapshot failing to compile fails
// the call.
func (s *Sequencer) Sequence(snapshots ...any) (*Plan, error) {
	cfg := s.cfg
	plan := &Plan{Entries: make([]Entry, 0, len(snapshots))}
	reached := make(map[int]bool, len(cfg.Upgrades))
	slot := cfg.VersionStart
	for i, snap := range snapshots {
		if load.IsNil(snap) {
			if cfg.NilPolicy != NilReserve {
				continue
			}
			if _, ok := cfg.Upgrades[slot]; ok {
				return nil, &SnapshotError{Index: i, Slot: slot, Cause: ErrReservedSlot}
			}
			reached[slot] = true
			slot++
			continue
		}
		stores, err := s.compiler.Compile(snap)
		if err != nil {
			return nil, &SnapshotError{Index: i, Slot: slot, Cause: err}
		}
		e := Entry{
			Version:  SlotVersion(slot),
			Slot:     slot,
			Snapshot: i,
			Stores:   stores,
			Checksum: Checksum(stores),
		}
		if fn, ok := cfg.Upgrades[slot]; ok {
			e.Upgrade = fn
		}
		reached[slot] = true
		plan.Entries = append(plan.Entries, e)
		slot++
	}

	for _, k := range slices.Sorted(maps.Keys(cfg.Upgrades)) {
		if !reached[k] {
			cfg.logger().Warn("upgrade registered for a slot no snapshot reaches", "slot", k, "version", SlotVersion(k))
		}
	}

	res := ValidatePlan(plan, cfg.Validate...)
	if cfg.Strict && res.HasErrors() {
		return nil, fmt.Errorf("%w:\n%s", ErrBreakingChange, res)
	}
	for _, issue := range slices.Concat(res.Errors, res.Warnings) {
		cfg.logger().Warn(issue.Message,
			"version", issue.Version,
			"store", issue.Store,
			"index", issue.Index,
			"breaking", issue.Breaking,
		)
	}
	return plan, nil
}

// Sequence builds a plan with a default compiler and the given options.
func Sequence(snapshots []any, opts ...Option) (*Plan, error) {
	c, err := gen.NewCompiler()
	if err != nil {
		return nil, err
	}
	s, err := NewSequencer(c, opts...)
	if err != nil {
		return nil, err
	}
	return s.Sequence(snapshots...)
}
