// package testing contains shared testing utilities
package testing

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

// ErrInjected is returned by the failing test doubles in this package.
var ErrInjected = errors.New("injected failure")

// NewTestDB creates an in-memory SQLite database with migrations applied and closes it with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// FailingStore wraps a [models.Store] and fails Commit while Fail is set.
//
// Commits that fail leave the wrapped store's pending changes untouched, mirroring a rolled back transaction.
type FailingStore struct {
	models.Store
	Fail    bool
	Commits int
}

func (f *FailingStore) Commit() error {
	f.Commits++
	if f.Fail {
		return ErrInjected
	}
	return f.Store.Commit()
}

// Applied forwards to the wrapped store when it keeps receipts.
func (f *FailingStore) Applied(key string) (bool, error) {
	if rs, ok := f.Store.(models.ReceiptStore); ok {
		return rs.Applied(key)
	}
	return false, nil
}

// MarkApplied forwards to the wrapped store when it keeps receipts.
func (f *FailingStore) MarkApplied(key, playlistID string) {
	if rs, ok := f.Store.(models.ReceiptStore); ok {
		rs.MarkApplied(key, playlistID)
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
