package repofakes

import (
	"sync"

	"github.com/jrsteele09/go-itvx/sessions"
)

var _ sessions.Repo = (*FakeStore)(nil)

// FakeStore is an in-memory sessions.Repo.
type FakeStore struct {
	lock    sync.Mutex
	record  *sessions.Record
	saveErr error

	Loads int
	Saves int
}

// NewFakeStore returns a store holding a copy of rec, or an empty record when rec is nil.
func NewFakeStore(rec *sessions.Record) *FakeStore {
	if rec == nil {
		rec = sessions.NewRecord()
	}
	return &FakeStore{record: rec.Clone()}
}

func (s *FakeStore) Load() (*sessions.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Loads++
	return s.record.Clone(), nil
}

func (s *FakeStore) Save(r *sessions.Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.record = r.Clone()
	return nil
}

// SetSaveError makes subsequent saves fail with err.
func (s *FakeStore) SetSaveError(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.saveErr = err
}

// Stored returns a copy of the last saved record.
func (s *FakeStore) Stored() *sessions.Record {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.record.Clone()
}

func (s *FakeStore) SaveCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.Saves
}
