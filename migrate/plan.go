package migrate

import (
	"github.com/google/uuid"

	"github.com/syssam/idbschema/compiler/gen"
)

// checksumSpace is the UUIDv5 namespace of store spec checksums.
var checksumSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/syssam/idbschema"))

// Checksum returns a stable identifier of the store spec content.
func Checksum(stores gen.StoreSpec) uuid.UUID {
	return uuid.NewSHA1(checksumSpace, []byte(stores.String()))
}

// SlotVersion returns the version number of a slot. Versions are slot/10,
// leaving whole numbers for versions bumped outside the plan.
func SlotVersion(slot int) float64 {
	return float64(slot) / 10
}

// Entry is one version of the migration plan.
type Entry struct {
	// Version is the engine version number.
	Version float64 `json:"version" yaml:"version"`
	// Slot is the integer counter the version was derived from.
	Slot int `json:"slot" yaml:"slot"`
	// Snapshot is the position of the source snapshot.
	Snapshot int `json:"snapshot" yaml:"snapshot"`
	// Stores holds the compiled store specs.
	Stores gen.StoreSpec `json:"stores" yaml:"stores"`
	// Checksum identifies the store spec content.
	Checksum uuid.UUID `json:"checksum" yaml:"checksum"`
	// Upgrade is the data upgrade registered for the slot, if any.
	Upgrade UpgradeFunc `json:"-" yaml:"-"`
}

// HasUpgrade reports whether an upgrade is attached to the entry.
func (e Entry) HasUpgrade() bool {
	return e.Upgrade != nil
}

// Plan is the ordered sequence of versions handed to the engine.
type Plan struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Len returns the number of entries.
func (p *Plan) Len() int {
	return len(p.Entries)
}

// Versions returns the version numbers in order.
func (p *Plan) Versions() []float64 {
	out := make([]float64, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Version
	}
	return out
}

// Latest returns the last entry.
func (p *Plan) Latest() (Entry, bool) {
	if len(p.Entries) == 0 {
		return Entry{}, false
	}
	return p.Entries[len(p.Entries)-1], true
}

// Lookup returns the entry declaring version v.
func (p *Plan) Lookup(v float64) (Entry, bool) {
	for _, e := range p.Entries {
		if e.Version == v {
			return e, true
		}
	}
	return Entry{}, false
}
