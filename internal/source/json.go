package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// decodeJSON reads an array of objects, or a single object, keeping the key
// order of the document for the field list.
func decodeJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	var (
		order fieldOrder
		recs  []Record
	)
	switch tok {
	case json.Delim('['):
		for dec.More() {
			rec, err := decodeElement(dec, &order)
			if err != nil {
				return nil, fmt.Errorf("decode json row %d: %w", len(recs), err)
			}
			recs = append(recs, rec)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case json.Delim('{'):
		rec, err := decodeObjectBody(dec, &order)
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return &Table{Fields: order.names, Records: []Record{rec}, object: true}, nil
	default:
		return nil, fmt.Errorf("decode json: expected an array or object, got %v", tok)
	}
	return &Table{Fields: order.names, Records: recs}, nil
}

// decodeElement reads one array element. Non-object elements become a
// record with a single "value" field.
func decodeElement(dec *json.Decoder, order *fieldOrder) (Record, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		order.add("value")
		return Record{"value": v}, nil
	}
	inner := json.NewDecoder(bytes.NewReader(raw))
	if _, err := inner.Token(); err != nil {
		return nil, err
	}
	return decodeObjectBody(inner, order)
}

// decodeObjectBody reads the members of an object whose opening brace was
// already consumed.
func decodeObjectBody(dec *json.Decoder, order *fieldOrder) (Record, error) {
	rec := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		order.add(key)
		rec[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

// decodeJSONLines reads one JSON value per line. Blank lines are skipped.
func decodeJSONLines(ctx context.Context, r io.Reader) (*Table, error) {
	var (
		order fieldOrder
		recs  []Record
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		rec, err := decodeElement(dec, &order)
		if err != nil {
			return nil, fmt.Errorf("decode jsonl line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return &Table{Fields: order.names, Records: recs}, nil
}

// decodeYAML converts the document to JSON and decodes that. Mapping key
// order does not survive the conversion, so fields come out sorted.
func decodeYAML(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("decode yaml: empty document")
	}
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return decodeJSON(bytes.NewReader(js))
}
