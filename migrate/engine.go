package migrate

import "context"

// Engine is the versioned object-store engine a Plan is applied to. The
// engine owns the database; Apply only declares versions on it.
type Engine interface {
	// Version declares the schema version v and returns its builder.
	Version(v float64) VersionBuilder
}

// VersionBuilder configures one declared version.
type VersionBuilder interface {
	// Stores sets the index spec of every store, keyed by store name.
	Stores(specs map[string]string) VersionBuilder
	// Upgrade registers the data upgrade run when the database moves to
	// this version.
	Upgrade(fn UpgradeFunc) VersionBuilder
}

// UpgradeFunc migrates data inside the engine's upgrade transaction.
type UpgradeFunc func(ctx context.Context, tx Tx) error

// Tx is the upgrade transaction handed to an UpgradeFunc.
type Tx interface {
	// Store returns the named object store.
	Store(name string) Store
}

// Record is one stored object.
type Record = map[string]any

// Store is an object store inside an upgrade transaction.
type Store interface {
	// Each calls fn for every record in primary key order and stops at the
	// first error.
	Each(ctx context.Context, fn func(key any, value Record) error) error
	// Put inserts or replaces the record stored under key.
	Put(ctx context.Context, key any, value Record) error
	// Delete removes the record stored under key.
	Delete(ctx context.Context, key any) error
}
