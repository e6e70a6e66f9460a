package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"brandforge/internal/logging"
)

// Store persists the workflow document as pretty-printed JSON at a fixed path.
// Every accessor re-reads from disk; nothing in memory is trusted as source of
// truth. Read-modify-write sequences are serialized through a sibling lock
// file so a concurrently running CLI cannot interleave with the daemon.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewStore constructs a document store rooted at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "workflow-store"),
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Read loads the document from disk. A missing file yields an empty document.
// An unparsable file is backed up beside the original, logged, and treated as
// empty: the intake brief is re-derivable from the ledger, so corruption
// resets rather than halts (in-flight pending job refs are lost).
func (s *Store) Read() (Document, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire document lock: %w", err)
	}
	defer s.lock.Unlock()

	return s.readLocked()
}

// Write serializes and persists the full document, replacing what is on disk.
func (s *Store) Write(doc Document) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}
	defer s.lock.Unlock()

	return s.writeLocked(doc)
}

// SetDomain merges record into doc[instanceID][domain] via read-modify-write.
func (s *Store) SetDomain(instanceID string, domain Domain, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}
	defer s.lock.Unlock()

	doc, err := s.readLocked()
	if err != nil {
		return err
	}
	instance, ok := doc[instanceID]
	if !ok {
		instance = make(Instance)
		doc[instanceID] = instance
	}
	instance[domain] = record
	return s.writeLocked(doc)
}

// GetDomain returns the record for doc[instanceID][domain], or nil when absent.
func (s *Store) GetDomain(instanceID string, domain Domain) (*Record, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	instance, ok := doc[instanceID]
	if !ok {
		return nil, nil
	}
	return instance[domain], nil
}

// Clear resets the document to empty, admitting the next workflow instance.
func (s *Store) Clear() error {
	return s.Write(Document{})
}

func (s *Store) readLocked() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("read workflow document: %w", err)
	}
	if len(data) == 0 {
		return Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		backupPath := s.path + ".corrupt"
		if backupErr := os.WriteFile(backupPath, data, 0o644); backupErr == nil {
			s.logger.Warn("workflow document unparsable; resetting to empty",
				logging.Error(err),
				logging.String("backup", backupPath),
				logging.String(logging.FieldErrorHint, "inspect the backup; pending job refs were lost"),
			)
		} else {
			s.logger.Warn("workflow document unparsable; resetting to empty (backup failed)",
				logging.Error(err),
			)
		}
		return Document{}, nil
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func (s *Store) writeLocked(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workflow document: %w", err)
	}
	encoded = append(encoded, '\n')

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure state directory: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write workflow document: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace workflow document: %w", err)
	}
	return nil
}
