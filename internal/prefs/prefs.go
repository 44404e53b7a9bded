// Package prefs persists per-grid column preferences as one JSON file per
// grid under the gridctl config directory.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kong/gridctl/internal/util"
)

const (
	defaultDirPerm  = 0o700
	defaultFilePerm = 0o600
	fileExt         = ".json"
)

// Record is the on-disk form of a grid's preferences.
type Record struct {
	GridID        string    `json:"grid_id" yaml:"grid_id"`
	HiddenColumns []string  `json:"hidden_columns" yaml:"hidden_columns"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store implements colstate.PreferenceStore on the filesystem. It is safe
// for concurrent use.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewStore returns a store rooted at dir. The directory is created on the
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file that holds gridID's preferences.
func (s *Store) Path(gridID string) string {
	return filepath.Join(s.dir, sanitizeComponent(gridID)+fileExt)
}

// LoadHiddenColumns returns the stored hidden columns. A grid with no
// stored preferences yields nil and no error.
func (s *Store) LoadHiddenColumns(gridID string) ([]string, error) {
	rec, err := s.Load(gridID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.HiddenColumns, nil
}

// SaveHiddenColumns replaces the stored hidden columns.
func (s *Store) SaveHiddenColumns(gridID string, hidden []string) error {
	if hidden == nil {
		hidden = []string{}
	}
	rec := Record{GridID: gridID, HiddenColumns: slices.Clone(hidden), UpdatedAt: s.now().UTC()}
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences for %q: %w", gridID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.Path(gridID), append(payload, '\n'), defaultFilePerm)
}

// Load reads gridID's record. The error wraps fs.ErrNotExist when nothing
// was stored.
func (s *Store) Load(gridID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(gridID))
	if err != nil {
		return Record{}, fmt.Errorf("read preferences for %q: %w", gridID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode preferences for %q: %w", gridID, err)
	}
	return rec, nil
}

// List returns every stored record ordered by grid id. Unreadable files are
// skipped.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}

	var out []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var rec Record
		if json.Unmarshal(data, &rec) != nil || rec.GridID == "" {
			continue
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b Record) int { return strings.Compare(a.GridID, b.GridID) })
	return out, nil
}

// Delete removes gridID's preferences. Deleting a grid with none stored is
// not an error.
func (s *Store) Delete(gridID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path(gridID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete preferences for %q: %w", gridID, err)
	}
	return nil
}

// GridIDForSource derives a stable grid id for a data file: a readable slug
// of the file name plus a short name-based UUID of its absolute path, so two
// files with the same name in different directories do not share
// preferences. Stdin ("-") maps to "stdin".
func GridIDForSource(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs))).String()
	slug := util.Slugify(strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)))
	if slug == "" {
		return sum[:8]
	}
	return slug + "-" + sum[:8]
}

func writeAtomic(path string, payload []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return fmt.Errorf("ensure preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(payload); err != nil {
		return fmt.Errorf("write temp preferences: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp preferences: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

func sanitizeComponent(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_.")
	if out == "" {
		return "grid"
	}
	return out
}
