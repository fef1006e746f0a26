package betree

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// PebbleStore is a Store backed by a single cockroachdb/pebble database,
// keying each node on its big-endian-encoded id so Pebble's own
// lexicographic iteration order matches numeric id order. Useful when
// betree is embedded alongside other Pebble-resident state, or when the
// host process wants Pebble's own WAL and compaction behavior rather
// than FileStore's one-file-per-node layout.
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebbleStore opens (creating if absent) a Pebble database at dir.
func OpenPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, newErr(ErrIO, "open pebble store: %v", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close releases the underlying Pebble database.
func (s *PebbleStore) Close() error {
	if err := s.db.Close(); err != nil {
		return newErr(ErrIO, "close pebble store: %v", err)
	}
	return nil
}

func pebbleKey(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return buf[:]
}

func (s *PebbleStore) Read(id uint64) ([]byte, error) {
	val, closer, err := s.db.Get(pebbleKey(id))
	if err != nil {
		return nil, newErr(ErrIO, "read node %d: %v", id, err)
	}
	out := make([]byte, len(val))
	copy(out, val)
	if cerr := closer.Close(); cerr != nil {
		return nil, newErr(ErrIO, "read node %d: %v", id, cerr)
	}
	return out, nil
}

func (s *PebbleStore) Write(id uint64, node []byte) error {
	if err := s.db.Set(pebbleKey(id), node, pebble.Sync); err != nil {
		return newErr(ErrIO, "write node %d: %v", id, err)
	}
	return nil
}

func (s *PebbleStore) ScheduleDelete(id uint64) error {
	if err := s.db.Delete(pebbleKey(id), pebble.Sync); err != nil {
		return newErr(ErrIO, "delete node %d: %v", id, err)
	}
	return nil
}
