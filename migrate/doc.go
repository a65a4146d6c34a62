// Package migrate threads schema snapshots into a versioned migration plan.
//
// Each non-nil snapshot is compiled into store specs and given the next
// slot, starting at VersionStart. The engine version of a slot is slot/10:
//
//	seq, err := migrate.NewSequencer(gen.MustNewCompiler(),
//	    migrate.WithVersionStart(1),
//	    migrate.WithUpgrade(2, addOwnerIDs),
//	)
//	if err != nil {
//	    return err
//	}
//	plan, err := seq.Sequence(v1, v2, v3) // versions 0.1, 0.2, 0.3
//	if err != nil {
//	    return err
//	}
//	return migrate.Apply(ctx, engine, plan)
//
// Nil snapshots are skipped by default without consuming a slot. With
// NilReserve they consume a slot and produce no entry.
//
// A Lock records released versions and fails verification when a later
// plan changes or removes one of them.
package migrate
