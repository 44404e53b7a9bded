// Package source loads row data from files or stdin into records the grid
// engine can process.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kong/gridctl/internal/log"
)

var ErrUnsupportedFormat = errors.New("unsupported source format")

// Record is one row: field name to value.
type Record map[string]any

// Format names an input encoding.
type Format string

const (
	JSON    Format = "json"
	JSONL   Format = "jsonl"
	YAML    Format = "yaml"
	CSV     Format = "csv"
	Arrow   Format = "arrow"
	Parquet Format = "parquet"
)

var extensions = map[string]Format{
	".json":    JSON,
	".jsonl":   JSONL,
	".ndjson":  JSONL,
	".yaml":    YAML,
	".yml":     YAML,
	".csv":     CSV,
	".arrow":   Arrow,
	".ipc":     Arrow,
	".feather": Arrow,
	".parquet": Parquet,
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(JSON), string(JSONL), string(YAML), string(CSV), string(Arrow), string(Parquet)}
}

// ParseFormat validates a format name. Empty means detect from the path.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", JSON, JSONL, YAML, CSV, Arrow, Parquet:
		return f, nil
	case "ndjson":
		return JSONL, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q, expected one of %s", ErrUnsupportedFormat, s, strings.Join(Formats(), ", "))
}

// DetectFormat maps a file extension to a Format. Stdin defaults to JSON.
func DetectFormat(path string) (Format, error) {
	if path == "-" {
		return JSON, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Options controls Load.
type Options struct {
	// Path of the data file. "-" reads Stdin.
	Path string
	// Format overrides extension detection.
	Format Format
	// Query is a jq expression selecting or reshaping the rows.
	Query string
	Stdin io.Reader
}

// Table is a loaded data set.
type Table struct {
	Source  string
	Format  Format
	Fields  []string
	Records []Record

	// object is set when the document was a single object rather than a
	// list of rows.
	object bool
}

// Rows returns the records as a slice for the grid engine.
func (t *Table) Rows() []Record {
	return t.Records
}

// Load reads opts.Path with the detected or requested format.
func Load(ctx context.Context, opts Options) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format := opts.Format
	if format == "" {
		f, err := DetectFormat(opts.Path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	var r io.Reader
	if opts.Path == "-" {
		r = opts.Stdin
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		r = f
	}

	t, err := Decode(ctx, r, format, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", displayName(opts.Path), err)
	}
	t.Source = opts.Path

	log.FromContext(ctx).Log(ctx, log.LevelTrace, "source loaded",
		slog.String("format", string(format)),
		slog.Int("rows", len(t.Records)),
		slog.Int("fields", len(t.Fields)))
	return t, nil
}

// Decode reads r as format and applies query when it is not empty.
func Decode(ctx context.Context, r io.Reader, format Format, query string) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch format {
	case JSON:
		t, err = decodeJSON(r)
	case JSONL:
		t, err = decodeJSONLines(ctx, r)
	case YAML:
		t, err = decodeYAML(r)
	case CSV:
		t, err = decodeCSV(ctx, r)
	case Arrow:
		var ras readAtSeeker
		if ras, err = asReadAtSeeker(r); err == nil {
			t, err = decodeArrow(ctx, ras)
		}
	case Parquet:
		var ras readAtSeeker
		if ras, err = asReadAtSeeker(r); err == nil {
			t, err = decodeParquet(ctx, ras)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	t.Format = format

	if strings.TrimSpace(query) != "" {
		if err := t.applyQuery(query); err != nil {
			return nil, err
		}
	}
	return t, nil
}

type readAtSeeker interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// asReadAtSeeker returns r when it supports random access and buffers it
// otherwise. Columnar formats need random access to their footers.
func asReadAtSeeker(r io.Reader) (readAtSeeker, error) {
	if ras, ok := r.(readAtSeeker); ok {
		return ras, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// fieldOrder accumulates field names in first-seen order.
type fieldOrder struct {
	names []string
	seen  map[string]struct{}
}

func (o *fieldOrder) add(names ...string) {
	if o.seen == nil {
		o.seen = make(map[string]struct{})
	}
	for _, n := range names {
		if _, ok := o.seen[n]; ok {
			continue
		}
		o.seen[n] = struct{}{}
		o.names = append(o.names, n)
	}
}

// addRecord appends keys of rec not seen before, sorted, since maps carry no
// order of their own.
func (o *fieldOrder) addRecord(rec Record) {
	var fresh []string
	for k := range rec {
		if _, ok := o.seen[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	slices.Sort(fresh)
	o.add(fresh...)
}

func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}
