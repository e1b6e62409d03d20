// Package notetest provides in-memory repositories that honour the same
// specifications as the GORM implementations, for service and controller tests.
package notetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/repository/contract"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a goroutine-safe stand-in for the database.
type Store struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
	notes map[uuid.UUID]entity.Note
	err   error

	beforeNoteUpdate func()

	Begins, Commits, Rollbacks int
}

func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]entity.User),
		notes: make(map[uuid.UUID]entity.Note),
	}
}

// FailWith makes every repository call return err until cleared with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) NoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// DeleteNote drops a note directly, ignoring ownership.
func (s *Store) DeleteNote(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, id)
}

// BeforeNoteUpdate runs fn at the start of every note Update, outside the lock.
func (s *Store) BeforeNoteUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeNoteUpdate = fn
}

// Note returns a copy of the stored note, ignoring ownership.
func (s *Store) Note(id uuid.UUID) (entity.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	return cloneNote(n), ok
}

// Factory returns a RepositoryFactory backed by s.
func (s *Store) Factory() unitofwork.RepositoryFactory {
	return factory{store: s}
}

type factory struct {
	store *Store
}

func (f factory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

type unitOfWork struct {
	store  *Store
	active bool
}

func (u *unitOfWork) Begin(context.Context) error {
	if u.active {
		return unitofwork.ErrTxAlreadyStarted
	}
	u.store.mu.Lock()
	u.store.Begins++
	u.store.mu.Unlock()
	u.active = true
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.active {
		return unitofwork.ErrNoTransaction
	}
	u.store.mu.Lock()
	u.store.Commits++
	u.store.mu.Unlock()
	u.active = false
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.active {
		return unitofwork.ErrNoTransaction
	}
	u.store.mu.Lock()
	u.store.Rollbacks++
	u.store.mu.Unlock()
	u.active = false
	return nil
}

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return userRepository{store: u.store}
}

func (u *unitOfWork) NoteRepository() contract.NoteRepository {
	return noteRepository{store: u.store}
}

type filter struct {
	id      *uuid.UUID
	ownerID *uuid.UUID
	email   *string
	order   *specification.OrderBy
}

func parse(specs []specification.Specification) filter {
	var f filter
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			f.id = &s.ID
		case specification.UserOwnedBy:
			f.ownerID = &s.UserID
		case specification.ByEmail:
			f.email = &s.Email
		case specification.OrderBy:
			f.order = &s
		default:
			panic(fmt.Sprintf("notetest: unsupported specification %T", spec))
		}
	}
	return f
}

func (f filter) matchUser(u entity.User) bool {
	if f.id != nil && u.Id != *f.id {
		return false
	}
	if f.email != nil && u.Email != *f.email {
		return false
	}
	return true
}

func (f filter) matchNote(n entity.Note) bool {
	if f.id != nil && n.Id != *f.id {
		return false
	}
	if f.ownerID != nil && n.UserId != *f.ownerID {
		return false
	}
	return true
}

func cloneNote(n entity.Note) entity.Note {
	tags := make([]string, len(n.Tags))
	copy(tags, n.Tags)
	n.Tags = tags
	if n.UpdatedAt != nil {
		t := *n.UpdatedAt
		n.UpdatedAt = &t
	}
	return n
}

type userRepository struct {
	store *Store
}

func (r userRepository) Create(_ context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.Id] = *user
	return nil
}

func (r userRepository) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	f := parse(specs)
	for _, u := range s.users {
		if f.matchUser(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r userRepository) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}

	f := parse(specs)
	var n int64
	for _, u := range s.users {
		if f.matchUser(u) {
			n++
		}
	}
	return n, nil
}

type noteRepository struct {
	store *Store
}

func (r noteRepository) Create(_ context.Context, note *entity.Note) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	if note.Id == uuid.Nil {
		note.Id = uuid.New()
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	s.notes[note.Id] = cloneNote(*note)
	return nil
}

func (r noteRepository) Update(_ context.Context, note *entity.Note) error {
	s := r.store
	s.mu.Lock()
	hook := s.beforeNoteUpdate
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	existing, ok := s.notes[note.Id]
	if !ok || existing.UserId != note.UserId {
		return contract.ErrNoteNotFound
	}
	now := time.Now()
	note.UpdatedAt = &now
	note.CreatedAt = existing.CreatedAt
	s.notes[note.Id] = cloneNote(*note)
	return nil
}

func (r noteRepository) Delete(_ context.Context, specs ...specification.Specification) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}

	f := parse(specs)
	var removed int64
	for id, n := range s.notes {
		if f.matchNote(n) {
			delete(s.notes, id)
			removed++
		}
	}
	return removed, nil
}

func (r noteRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	notes, err := r.FindAll(ctx, specs...)
	if err != nil || len(notes) == 0 {
		return nil, err
	}
	return notes[0], nil
}

func (r noteRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	f := parse(specs)
	out := make([]*entity.Note, 0)
	for _, n := range s.notes {
		if f.matchNote(n) {
			c := cloneNote(n)
			out = append(out, &c)
		}
	}

	// Map iteration is random; default to insertion-like order by creation time.
	desc := f.order != nil && f.order.Desc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r noteRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	notes, err := r.FindAll(ctx, specs...)
	return int64(len(notes)), err
}

// SeedUser stores user directly, bypassing services.
func (s *Store) SeedUser(user entity.User) entity.User {
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Id] = user
	return user
}

// SeedNote stores note directly, bypassing services.
func (s *Store) SeedNote(note entity.Note) entity.Note {
	if note.Id == uuid.Nil {
		note.Id = uuid.New()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.Id] = cloneNote(note)
	return cloneNote(note)
}
