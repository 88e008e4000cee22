// Package eventlog persists the per-book event log in pebble. The log is
// the source of truth for book state: events are appended atomically per
// transaction before a command is acknowledged, and scanned back in key
// order for recovery-by-replay at startup.
package eventlog

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"

	"exchange-core/src/engine"
)

type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // durability before acknowledgement
	})
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// key layout: bookID 0x00 bigendian(eventID). Big-endian sequence numbers
// make pebble's key order the replay order. Key order does not survive a
// sequence wrap back to zero; a log that old would need an epoch prefix.
func eventKey(bookID engine.BookID, eventID uint64) []byte {
	key := make([]byte, 0, len(bookID)+1+8)
	key = append(key, bookID...)
	key = append(key, 0x00)
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], eventID)
	return append(key, seq[:]...)
}

func bookBounds(bookID engine.BookID) (lower, upper []byte) {
	lower = append([]byte(bookID), 0x00)
	upper = append([]byte(bookID), 0x01)
	return lower, upper
}

// Append durably writes a transaction's events in one atomic, synced batch.
// Nothing is visible to readers until every event of the transaction is.
func (s *Store) Append(bookID engine.BookID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, event := range events {
		value, err := engine.MarshalEvent(event)
		if err != nil {
			return fmt.Errorf("encode event %d: %w", event.EventID(), err)
		}
		if err := batch.Set(eventKey(bookID, uint64(event.EventID())), value, nil); err != nil {
			return fmt.Errorf("append event %d: %w", event.EventID(), err)
		}
	}
	if err := s.db.Apply(batch, pebble.Sync); err != nil {
		return fmt.Errorf("sync event batch: %w", err)
	}
	return nil
}

// ReadBook returns the book's full event log in sequence order.
func (s *Store) ReadBook(bookID engine.BookID) ([]engine.Event, error) {
	lower, upper := bookBounds(bookID)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("iterate event log: %w", err)
	}
	defer iter.Close()

	var events []engine.Event
	for iter.First(); iter.Valid(); iter.Next() {
		event, err := engine.UnmarshalEvent(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode event at key %x: %w", iter.Key(), err)
		}
		events = append(events, event)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return events, nil
}

// BookIDs scans the distinct book ids present in the log.
func (s *Store) BookIDs() ([]engine.BookID, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("iterate event log: %w", err)
	}
	defer iter.Close()

	var ids []engine.BookID
	var last []byte
	for iter.First(); iter.Valid(); iter.Next() {
		sep := bytes.IndexByte(iter.Key(), 0x00)
		if sep < 0 {
			continue
		}
		bookID := iter.Key()[:sep]
		if last != nil && bytes.Equal(bookID, last) {
			continue
		}
		last = append([]byte(nil), bookID...)
		ids = append(ids, engine.BookID(bookID))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return ids, nil
}
