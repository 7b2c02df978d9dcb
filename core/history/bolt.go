package history

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketCmd = "cmd"

// BoltStore persists history in a bbolt database so it survives restarts.
type BoltStore struct {
	db  *bolt.DB
	max int
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at path. If max is positive,
// only the newest max lines are kept.
func OpenBoltStore(path string, max int) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmd))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history: %w", err)
	}

	return &BoltStore{db: db, max: max}, nil
}

// Append implements Store.
func (s *BoltStore) Append(line string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(marshalSeq(seq), []byte(line)); err != nil {
			return err
		}

		if s.max <= 0 {
			return nil
		}
		// Trim the oldest entries past the limit.
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for i := 0; i < len(keys)-s.max; i++ {
			if err := b.Delete(keys[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Lines implements Store.
func (s *BoltStore) Lines() ([]string, error) {
	var lines []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCmd)).ForEach(func(_, v []byte) error {
			lines = append(lines, string(v))
			return nil
		})
	})
	return lines, err
}

// Clear implements Store. Sequence numbers keep increasing after a clear.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		seq := b.Sequence()
		if err := tx.DeleteBucket([]byte(bucketCmd)); err != nil {
			return err
		}
		b, err := tx.CreateBucket([]byte(bucketCmd))
		if err != nil {
			return err
		}
		return b.SetSequence(seq)
	})
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
