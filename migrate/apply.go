package migrate

import (
	"context"
	"fmt"
)

// Apply declares every plan entry on the engine in order, attaching the
// upgrade of each entry that has one. It stops when ctx is done. Running
// the upgrades is left to the engine.
func Apply(ctx context.Context, eng Engine, p *Plan) error {
	if eng == nil {
		return fmt.Errorf("%w: nil engine", ErrInvalidPlan)
	}
	if p == nil {
		return fmt.Errorf("%w: nil plan", ErrInvalidPlan)
	}
	for i := 1; i < len(p.Entries); i++ {
		if p.Entries[i].Version <= p.Entries[i-1].Version {
			return fmt.Errorf("%w: version %v does not follow %v",
				ErrInvalidPlan, p.Entries[i].Version, p.Entries[i-1].Version)
		}
	}
	for _, e := range p.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		vb := eng.Version(e.Version).Stores(e.Stores.Map())
		if e.Upgrade != nil {
			vb.Upgrade(e.Upgrade)
		}
	}
	return nil
}
