// Package filerepo stores the credential record as a single JSON file.
package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/athlogic/salesbot/token"
)

var _ token.Repo = (*Repo)(nil)

type Repo struct {
	path string
}

func New(path string) *Repo {
	return &Repo{path: path}
}

// Load reads the stored record. A missing file, unreadable content or a
// record violating the invariant all degrade to (nil, nil): the next
// process start simply begins unauthenticated.
func (r *Repo) Load() (*token.Credentials, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, nil
	}

	var creds token.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		log.Warn().Str("path", r.path).Err(err).Msg("credential file unreadable, treating as absent")
		return nil, nil
	}
	if !creds.Valid() {
		return nil, nil
	}
	return &creds, nil
}

// Save replaces the stored record atomically: the new content is written
// to a temp file in the same directory and renamed over the old one, so
// a crash mid-write never leaves a torn record for the next start.
func (r *Repo) Save(creds *token.Credentials) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "[Save] json.Marshal")
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "[Save] os.CreateTemp")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "[Save] write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "[Save] close temp file")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "[Save] os.Rename")
	}
	return nil
}
