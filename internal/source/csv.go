package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// decodeCSV reads a header row followed by data rows. Cells holding
// integer, float or boolean literals are typed; empty cells are nil.
func decodeCSV(ctx context.Context, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("decode csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("decode csv header: %w", err)
	}

	var order fieldOrder
	fields := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := order.seen[name]; dup || name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		fields[i] = name
		order.add(name)
	}

	var recs []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode csv line %d: %w", line, err)
		}
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec := make(Record, len(fields))
		for i, name := range fields {
			if i < len(row) {
				rec[name] = typedCell(row[i])
			} else {
				rec[name] = nil
			}
		}
		recs = append(recs, rec)
	}
	return &Table{Fields: order.names, Records: recs}, nil
}

// Numbers with a leading zero, such as postal codes, stay strings.
func typedCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if leadingZero(s) {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func leadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
