// Package store is an in-memory reference implementation of the game's
// persistence/sync collaborator: key-value records with field-level patch
// semantics and change notifications filtered by room. Updates merge at
// field granularity, so two participants writing disjoint fields of the
// same record never lose each other's write.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotFound is returned when patching or reading a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned when inserting over an existing record.
	ErrExists = errors.New("record already exists")
	// ErrForbidden is returned when reading a hand record without owning it.
	ErrForbidden = errors.New("hand is private to its owner")
)

// Record kinds used by the game service.
const (
	KindRoom    = "room"
	KindPlayer  = "player"
	KindRound   = "round"
	KindHand    = "hand"
	KindActions = "actions"
)

// Key identifies a record within a room.
type Key struct {
	Room string
	Kind string
	ID   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Room, k.Kind, k.ID)
}

// Fields is a record's field set.
type Fields map[string]any

// Op is the kind of change applied to a record.
type Op int

const (
	OpInsert Op = iota
	OpPatch
	OpDelete
)

func (o Op) String() string {
	return [...]string{"insert", "patch", "delete"}[o]
}

// Change is delivered to subscribers of the record's room. Fields carries
// only the fields touched by the change.
type Change struct {
	Op     Op
	Key    Key
	Fields Fields
}

type subscriber struct {
	room string
	ch   chan Change
}

// Store holds the records and their subscribers.
type Store struct {
	mu      sync.RWMutex
	records map[Key]Fields
	subs    map[int]*subscriber
	nextSub int
	logger  *log.Logger
}

// New creates an empty store.
func New(logger *log.Logger) *Store {
	return &Store{
		records: make(map[Key]Fields),
		subs:    make(map[int]*subscriber),
		logger:  logger.WithPrefix("store"),
	}
}

// Insert creates a record.
func (s *Store) Insert(k Key, fields Fields) error {
	s.mu.Lock()
	if _, ok := s.records[k]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", k, ErrExists)
	}
	s.records[k] = cloneFields(fields)
	s.mu.Unlock()

	s.notify(Change{Op: OpInsert, Key: k, Fields: cloneFields(fields)})
	return nil
}

// Upsert merges the fields into the record, creating it if missing.
func (s *Store) Upsert(k Key, fields Fields) {
	s.mu.Lock()
	rec, ok := s.records[k]
	if !ok {
		rec = make(Fields, len(fields))
		s.records[k] = rec
	}
	for name, value := range fields {
		rec[name] = value
	}
	s.mu.Unlock()

	op := OpPatch
	if !ok {
		op = OpInsert
	}
	s.notify(Change{Op: op, Key: k, Fields: cloneFields(fields)})
}

// Get returns a copy of the record.
func (s *Store) Get(k Key) (Fields, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[k]
	if !ok {
		return nil, false
	}
	return cloneFields(rec), true
}

// Patch merges the given fields into the record. Fields not named are left
// untouched; there is no whole-record overwrite.
func (s *Store) Patch(k Key, fields Fields) error {
	s.mu.Lock()
	rec, ok := s.records[k]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", k, ErrNotFound)
	}
	for name, value := range fields {
		rec[name] = value
	}
	s.mu.Unlock()

	s.notify(Change{Op: OpPatch, Key: k, Fields: cloneFields(fields)})
	return nil
}

// Delete removes a record. Deleting a missing record is a no-op.
func (s *Store) Delete(k Key) {
	s.mu.Lock()
	_, ok := s.records[k]
	delete(s.records, k)
	s.mu.Unlock()

	if ok {
		s.notify(Change{Op: OpDelete, Key: k})
	}
}

// DeleteRoom tears down every record belonging to a room.
func (s *Store) DeleteRoom(room string) {
	s.mu.Lock()
	var keys []Key
	for k := range s.records {
		if k.Room == room {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		delete(s.records, k)
	}
	s.mu.Unlock()

	for _, k := range keys {
		s.notify(Change{Op: OpDelete, Key: k})
	}
}

// ReadHand returns a hand record, enforcing the visibility policy: only the
// owning player may read it, plus the host when the hand belongs to a bot.
func (s *Store) ReadHand(k Key, requesterID, hostID string) (Fields, error) {
	rec, ok := s.Get(k)
	if !ok {
		return nil, fmt.Errorf("%s: %w", k, ErrNotFound)
	}
	owner, _ := rec["owner"].(string)
	isBot, _ := rec["bot"].(bool)
	if requesterID == owner || (isBot && requesterID == hostID) {
		return rec, nil
	}
	return nil, ErrForbidden
}

// Subscribe returns a channel of changes for records in the given room and
// a cancel function. Slow subscribers drop changes rather than blocking
// writers; clients re-read the store to converge.
func (s *Store) Subscribe(room string, buffer int) (<-chan Change, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	sub := &subscriber{room: room, ch: make(chan Change, buffer)}
	s.subs[id] = sub
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if cur, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(cur.ch)
		}
		s.mu.Unlock()
	}
	return sub.ch, cancel
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.room != c.Key.Room {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			s.logger.Warn("Dropping change for slow subscriber", "key", c.Key.String(), "op", c.Op)
		}
	}
}

func cloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for name, value := range fields {
		out[name] = value
	}
	return out
}
