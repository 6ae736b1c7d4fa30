package snapshot

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/oodx/meteor/pkg/addressing"
	"github.com/oodx/meteor/pkg/engine"
	"github.com/oodx/meteor/pkg/types"
)

// Exporter writes an engine's canonical storage out to a snapshot.
type Exporter interface {
	Export(eng *engine.MeteorEngine) error
}

// Importer restores an engine's canonical storage from a snapshot. The
// target engine should be freshly constructed; Import does not clear
// existing state before writing into it.
type Importer interface {
	Import(eng *engine.MeteorEngine) error
}

// BoltStore is the reference Exporter/Importer, backed by a single bbolt
// file with one bucket per context.
type BoltStore struct {
	path string
}

// NewBoltStore returns a BoltStore writing to/reading from path.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

// Export serializes eng's current entries into the bbolt file at s.path,
// overwriting any bucket for a context eng still holds. Buckets of
// contexts eng does not hold are left as they are.
func (s *BoltStore) Export(eng *engine.MeteorEngine) error {
	db, err := bolt.Open(s.path, 0o600, nil)
	if err != nil {
		return fmt.Errorf("snapshot: open %s: %w", s.path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		for _, ctx := range eng.ContextsIter() {
			if tx.Bucket([]byte(ctx)) == nil {
				continue
			}
			if err := tx.DeleteBucket([]byte(ctx)); err != nil {
				return fmt.Errorf("snapshot: reset bucket %q: %w", ctx, err)
			}
		}
		for _, entry := range eng.IterEntries() {
			bucket, err := tx.CreateBucketIfNotExists([]byte(entry.Context))
			if err != nil {
				return fmt.Errorf("snapshot: create bucket %q: %w", entry.Context, err)
			}
			canonical := addressing.CanonicalKey(entry.Namespace, entry.Key)
			if err := bucket.Put([]byte(canonical), []byte(entry.Value)); err != nil {
				return fmt.Errorf("snapshot: write %q: %w", canonical, err)
			}
		}
		return nil
	})
}

// Import restores every bucket in s.path's bbolt file into eng, one
// engine.Set call per entry. A malformed canonical key (shouldn't occur
// in a file this package wrote) is skipped rather than aborting the
// whole restore.
func (s *BoltStore) Import(eng *engine.MeteorEngine) error {
	db, err := bolt.Open(s.path, 0o600, nil)
	if err != nil {
		return fmt.Errorf("snapshot: open %s: %w", s.path, err)
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, bucket *bolt.Bucket) error {
			ctx := types.Context(name)
			return bucket.ForEach(func(k, v []byte) error {
				path := string(ctx) + ":" + splitNamespacedKey(string(k))
				if err := eng.Set(path, string(v)); err != nil {
					return nil // skip malformed entries; best-effort restore
				}
				return nil
			})
		})
	})
}

// splitNamespacedKey turns a bucket key back into "ns:key" form, adding
// an explicit "main:" prefix when CanonicalKey omitted the namespace
// (main namespace entries are stored as a bare dotted key).
func splitNamespacedKey(canonical string) string {
	for i := 0; i < len(canonical); i++ {
		if canonical[i] == ':' {
			return canonical
		}
	}
	return string(types.MainNamespace) + ":" + canonical
}
