// internal/database/store.go
package database

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/openkb/product-kb/internal/apperr"
)

const (
	busyRetries = 3
	busyBackoff = 100 * time.Millisecond
)

// Store wraps the GORM handle with the write discipline the storage engine
// needs. With SQLite every write runs under one process-wide mutex so at most
// one write transaction is in flight; reads go straight through. With
// Postgres the gate is disabled and the engine's own concurrency control
// applies.
type Store struct {
	db        *gorm.DB
	writeMu   sync.Mutex
	serialize bool
}

func NewStore(db *gorm.DB, serializeWrites bool) *Store {
	return &Store{db: db, serialize: serializeWrites}
}

// Read returns the handle for read-only queries. Reads are not isolated from
// concurrent writes beyond the engine's read-committed snapshot.
func (s *Store) Read() *gorm.DB {
	return s.db
}

// Write runs fn inside a transaction, holding the exclusive write section for
// the whole attempt so the gate is released on every exit path. Transient
// lock errors are retried a bounded number of times before surfacing as
// apperr.ErrTransient; fn's own errors pass through unchanged and roll the
// transaction back.
func (s *Store) Write(fn func(tx *gorm.DB) error) error {
	if s.serialize {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = s.db.Transaction(fn)
		if err == nil || !isBusy(err) {
			return err
		}
		if attempt >= busyRetries {
			break
		}
		time.Sleep(busyBackoff * time.Duration(attempt+1))
	}
	return fmt.Errorf("write failed after %d retries: %v: %w", busyRetries, err, apperr.ErrTransient)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}
