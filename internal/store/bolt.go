package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileName      = "fyseq_sequences.db"
	SequencesBucket = "Sequences" // Bucket name for entry key to Record mapping.
)

// BoltStore keeps records in a BoltDB file, one JSON document per key.
type BoltStore struct {
	db     *bolt.DB
	path   string
	logger LoggerFunc
}

// DefaultDir returns the per-user directory the database lives in when no
// explicit location is given.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config dir: %w", err)
	}
	return filepath.Join(configDir, "fyseq"), nil
}

// NewBoltStore creates or opens the sequence database.
// location may be a directory (the default file name is used inside it), a
// path ending in ".db", or empty for DefaultDir.
func NewBoltStore(location string, logger LoggerFunc) (*BoltStore, error) {
	dbPath, err := resolvePath(location)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", filepath.Dir(dbPath), err)
	}

	s := &BoltStore{path: dbPath, logger: logger}
	s.logMessage("Using sequence database at: %s", dbPath)

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open sequence database %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(SequencesBucket)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", SequencesBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func resolvePath(location string) (string, error) {
	if location == "" {
		dir, err := DefaultDir()
		if err != nil {
			log.Printf("Warning: %v. Using current dir.", err)
			dir = "."
		}
		return filepath.Join(dir, dbFileName), nil
	}
	if filepath.Ext(location) == ".db" {
		return location, nil
	}
	return filepath.Join(location, dbFileName), nil
}

// Path returns the database file in use.
func (s *BoltStore) Path() string {
	return s.path
}

func (s *BoltStore) logMessage(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Close closes the database connection.
func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the record stored under key, or ErrNotFound.
func (s *BoltStore) Load(key string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(SequencesBucket)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("failed to decode record %s: %w", key, err)
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Save writes rec, replacing any record with the same key.
func (s *BoltStore) Save(rec Record) error {
	if rec.Key == "" {
		return errors.New("record key cannot be empty")
	}
	if rec.Updated.IsZero() {
		rec.Updated = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.Key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(SequencesBucket)).Put([]byte(rec.Key), data); err != nil {
			return fmt.Errorf("failed to put record %s: %w", rec.Key, err)
		}
		return nil
	})
}

// Delete removes the record stored under key. Unknown keys are ignored.
func (s *BoltStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(SequencesBucket)).Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", key, err)
		}
		return nil
	})
}

// Keys returns every stored key in byte order.
func (s *BoltStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(SequencesBucket)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list record keys: %w", err)
	}
	return keys, nil
}
