package repofake

import (
	"sync"

	"github.com/athlogic/salesbot/token"
)

var _ token.Repo = (*FakeCredentialsRepo)(nil)

// FakeCredentialsRepo is an in-memory credential store for tests.
type FakeCredentialsRepo struct {
	lock    sync.RWMutex
	creds   *token.Credentials
	saves   int
	saveErr error
}

func NewFakeCredentialsRepo() *FakeCredentialsRepo {
	return &FakeCredentialsRepo{}
}

// Seed sets the stored record directly.
func (r *FakeCredentialsRepo) Seed(creds *token.Credentials) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.creds = creds
}

// FailSavesWith makes every subsequent Save return err.
func (r *FakeCredentialsRepo) FailSavesWith(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.saveErr = err
}

// SaveCount returns how many successful saves happened.
func (r *FakeCredentialsRepo) SaveCount() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves
}

func (r *FakeCredentialsRepo) Load() (*token.Credentials, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.creds == nil {
		return nil, nil
	}
	copied := *r.creds
	return &copied, nil
}

func (r *FakeCredentialsRepo) Save(creds *token.Credentials) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *creds
	r.creds = &copied
	r.saves++
	return nil
}
