package sessions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Repo = (*FileStore)(nil)

// FileStore keeps the record in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record. A missing, unreadable or corrupt file gives an empty
// record and no error. Records of an older version are migrated and written
// back straight away; a failure to write them back is returned along with the
// migrated record.
func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("session file unreadable, starting without session")
		}
		return NewRecord(), nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err == nil && rec.Vers == CurrentVersion {
		if !rec.HasTokens() {
			rec.ItvSession = nil
		}
		return &rec, nil
	}

	migrated, err := Migrate(data)
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("session file corrupt, starting without session")
		return NewRecord(), nil
	}
	log.Info().Int("from", rec.Vers).Int("to", CurrentVersion).Msg("migrated session file")
	if err := s.Save(migrated); err != nil {
		return migrated, err
	}
	return migrated, nil
}

// Save writes the record atomically with owner-only permissions.
func (s *FileStore) Save(r *Record) error {
	if r == nil {
		r = NewRecord()
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(saveError(err), "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(saveError(err), "create profile folder")
	}

	pendingFile, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o600))
	if err != nil {
		return errors.Wrapf(saveError(err), "create pending session file %s", s.path)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			log.Debug().Err(err).Msg("cleanup pending session file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return errors.Wrap(saveError(err), "write session data")
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(saveError(err), "replace session file %s", s.path)
	}
	return nil
}

func saveError(err error) error {
	return fmt.Errorf("%w: %w", itvxerrors.ErrSessionSave, err)
}
