package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// SchemaVersion is the current persistence schema version.
const SchemaVersion = 1

// Persistence defines the interface for history storage.
type Persistence interface {
	// Load reads every stored line. A record may appear several times; the
	// last occurrence is the current one.
	Load() ([]model.Record, error)

	// Append adds a record snapshot to storage.
	Append(r model.Record) error

	// Rewrite replaces the entire storage file (used after prune).
	Rewrite(rs []model.Record) error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SnackbarSchemaVersion int   `json:"snackbar_schema_version"`
	CreatedAt             int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence implements Persistence using an append-only JSONL file.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence opens the history file, creating it with a schema
// header if needed.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	p := &JSONLPersistence{
		path: path,
		file: file,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return p, nil
}

// Path returns the file path.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func (p *JSONLPersistence) writeHeader() error {
	header := schemaHeader{
		SnackbarSchemaVersion: SchemaVersion,
		CreatedAt:             time.Now().Unix(),
	}

	data, err := json.Marshal(header)
	if err != nil {
		return err
	}

	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads all records from storage. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]model.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}

	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", p.path, err)
	}

	records, err := readRecords(p.file)
	if err != nil {
		return records, err
	}

	if _, err := p.file.Seek(0, io.SeekEnd); err != nil {
		return records, err
	}
	return records, nil
}

func readRecords(r io.Reader) ([]model.Record, error) {
	var records []model.Record
	scanner := bufio.NewScanner(r)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SnackbarSchemaVersion > 0 {
				if header.SnackbarSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SnackbarSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var rec model.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.ID != "" {
			records = append(records, rec)
		}
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("error reading file: %w", err)
	}
	return records, nil
}

// Append adds a record snapshot to storage.
func (p *JSONLPersistence) Append(r model.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	if _, err := p.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return p.file.Sync()
}

// Rewrite replaces the entire storage file, keeping a backup until the new
// file is synced.
func (p *JSONLPersistence) Rewrite(rs []model.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return err
		}
		p.file = nil
	}

	backupPath := p.path + ".bak"
	if err := os.Rename(p.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		os.Rename(backupPath, p.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	p.file = file

	if err := p.writeHeader(); err != nil {
		return err
	}

	for _, r := range rs {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := p.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}

	if err := p.file.Sync(); err != nil {
		return err
	}

	os.Remove(backupPath)
	return nil
}

// Close releases file handles and resources.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

// ReadHistory reads a history file without opening it for writing. A
// missing file yields no records.
func ReadHistory(path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return readRecords(file)
}

// ErrReadOnly is returned when writing through a ReadOnlyPersistence.
var ErrReadOnly = errors.New("persistence is read-only")

// ReadOnlyPersistence reopens the history file on every Load. It is used by
// clients that follow a file owned by snackbard.
type ReadOnlyPersistence struct {
	Path string
}

// Load reads the file from the start.
func (p ReadOnlyPersistence) Load() ([]model.Record, error) {
	return ReadHistory(p.Path)
}

// Append always fails.
func (p ReadOnlyPersistence) Append(model.Record) error { return ErrReadOnly }

// Rewrite always fails.
func (p ReadOnlyPersistence) Rewrite([]model.Record) error { return ErrReadOnly }

// Close is a no-op.
func (p ReadOnlyPersistence) Close() error { return nil }
