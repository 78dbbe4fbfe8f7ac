// Package memstore is an in-process implementation of repository.Store.
//
// Transactions are serialized by a store-wide writer lock and run against a
// private copy of the data that replaces the shared copy on commit. Reads
// outside a transaction never observe uncommitted writes.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// Store keeps every table in memory.
type Store struct {
	txMu sync.Mutex   // one writer at a time
	mu   sync.RWMutex // guards data
	data *data
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: newData()}
}

type data struct {
	seq          map[string]int64
	users        map[int64]model.User
	categories   map[int64]model.Category
	events       map[int64]model.Event
	requests     map[int64]model.ParticipationRequest
	comments     map[int64]model.Comment
	compilations map[int64]model.Compilation
}

func newData() *data {
	return &data{
		seq:          map[string]int64{},
		users:        map[int64]model.User{},
		categories:   map[int64]model.Category{},
		events:       map[int64]model.Event{},
		requests:     map[int64]model.ParticipationRequest{},
		comments:     map[int64]model.Comment{},
		compilations: map[int64]model.Compilation{},
	}
}

func (d *data) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.seq {
		c.seq[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.events {
		c.events[k] = copyEvent(v)
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	for k, v := range d.comments {
		c.comments[k] = copyComment(v)
	}
	for k, v := range d.compilations {
		c.compilations[k] = copyCompilation(v)
	}
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyEvent(e model.Event) model.Event {
	e.PublishedOn = copyTime(e.PublishedOn)
	return e
}

func copyComment(c model.Comment) model.Comment {
	c.UpdatedOn = copyTime(c.UpdatedOn)
	return c
}

func copyCompilation(c model.Compilation) model.Compilation {
	c.EventIDs = append([]int64{}, c.EventIDs...)
	return c
}

// view binds the repositories either to the shared data or to the private
// copy of a running transaction.
type view struct {
	s  *Store
	tx *data
}

func (v view) read(fn func(d *data) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.data)
}

// write runs fn with exclusive access. fn must validate before mutating.
func (v view) write(fn func(d *data) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.txMu.Lock()
	defer v.s.txMu.Unlock()
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.data)
}

func (v view) Users() repository.Users               { return users{v} }
func (v view) Categories() repository.Categories     { return categories{v} }
func (v view) Events() repository.Events             { return events{v} }
func (v view) Requests() repository.Requests         { return requests{v} }
func (v view) Comments() repository.Comments         { return comments{v} }
func (v view) Compilations() repository.Compilations { return compilations{v} }

func (s *Store) Users() repository.Users               { return view{s: s}.Users() }
func (s *Store) Categories() repository.Categories     { return view{s: s}.Categories() }
func (s *Store) Events() repository.Events             { return view{s: s}.Events() }
func (s *Store) Requests() repository.Requests         { return view{s: s}.Requests() }
func (s *Store) Comments() repository.Comments         { return view{s: s}.Comments() }
func (s *Store) Compilations() repository.Compilations { return view{s: s}.Compilations() }

// InTx runs fn against a private copy of the data and publishes the copy
// only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(view{s: s, tx: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Store) Close() {}
