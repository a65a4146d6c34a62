package migrate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/idbschema/compiler/gen"
)

// LockFormat is the current lock file format.
const LockFormat = 1

// LockEntry records one released version.
type LockEntry struct {
	Version  float64       `msgpack:"version"`
	Slot     int           `msgpack:"slot"`
	Checksum uuid.UUID     `msgpack:"checksum"`
	Stores   gen.StoreSpec `msgpack:"stores"`
}

// Lock pins released versions so that a later plan cannot silently change
// a version users already migrated to.
type Lock struct {
	Format  int         `msgpack:"format"`
	Entries []LockEntry `msgpack:"entries"`
}

// NewLock records every entry of p.
func NewLock(p *Plan) *Lock {
	l := &Lock{Format: LockFormat, Entries: make([]LockEntry, len(p.Entries))}
	for i, e := range p.Entries {
		l.Entries[i] = LockEntry{
			Version:  e.Version,
			Slot:     e.Slot,
			Checksum: e.Checksum,
			Stores:   e.Stores,
		}
	}
	return l
}

// Verify checks that every locked version is still in p with the same
// content. Versions added after the lock are accepted.
func (l *Lock) Verify(p *Plan) error {
	var errs []error
	for _, le := range l.Entries {
		e, ok := p.Lookup(le.Version)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: version %v was removed", ErrLockMismatch, le.Version))
		case e.Checksum != le.Checksum:
			errs = append(errs, fmt.Errorf("%w: version %v changed (locked %s, got %s)",
				ErrLockMismatch, le.Version, le.Checksum, e.Checksum))
		}
	}
	return errors.Join(errs...)
}

// Encode writes the lock in msgpack.
func (l *Lock) Encode(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(l)
}

// DecodeLock reads a msgpack lock.
func DecodeLock(r io.Reader) (*Lock, error) {
	var l Lock
	if err := msgpack.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("idbschema: decode lock: %w", err)
	}
	if l.Format != LockFormat {
		return nil, fmt.Errorf("idbschema: unsupported lock format %d", l.Format)
	}
	return &l, nil
}

// ReadLock reads the lock file at path.
func ReadLock(path string) (*Lock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("idbschema: read lock: %w", err)
	}
	defer f.Close()
	return DecodeLock(f)
}

// WriteLock writes l to path, replacing any existing file.
func WriteLock(path string, l *Lock) error {
	b, err := msgpack.Marshal(l)
	if err != nil {
		return fmt.Errorf("idbschema: encode lock: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("idbschema: write lock: %w", err)
	}
	return nil
}
