package mutation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
)

// decodeBody parses a single JSON document, keeping numbers as json.Number
// so integers beyond float64 precision survive a rewrite.
func decodeBody(body []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return data, true
}

// encodeOrdered writes v as compact JSON. Object members present in orig
// keep their original order; members added since follow in key order.
func encodeOrdered(buf *bytes.Buffer, v any, orig json.RawMessage) error {
	switch val := v.(type) {
	case map[string]any:
		keys, raws := objectMembers(orig)
		seen := make(map[string]bool, len(val))

		buf.WriteByte('{')
		write := func(k string, raw json.RawMessage) error {
			if len(seen) > 0 {
				buf.WriteByte(',')
			}
			seen[k] = true
			if err := encodeValue(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			return encodeOrdered(buf, val[k], raw)
		}

		for i, k := range keys {
			if _, ok := val[k]; !ok || seen[k] {
				continue
			}
			if err := write(k, raws[i]); err != nil {
				return err
			}
		}
		added := make([]string, 0, len(val))
		for k := range val {
			if !seen[k] {
				added = append(added, k)
			}
		}
		sort.Strings(added)
		for _, k := range added {
			if err := write(k, nil); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		items := arrayItems(orig)
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			var raw json.RawMessage
			if i < len(items) {
				raw = items[i]
			}
			if err := encodeOrdered(buf, item, raw); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		return encodeValue(buf, v)
	}
}

// encodeValue writes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func encodeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// objectMembers returns the keys and raw values of a JSON object in
// document order. Anything else yields nothing.
func objectMembers(raw json.RawMessage) ([]string, []json.RawMessage) {
	dec, ok := openDelim(raw, '{')
	if !ok {
		return nil, nil
	}
	var (
		keys []string
		vals []json.RawMessage
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			break
		}
		keys = append(keys, key)
		vals = append(vals, v)
	}
	return keys, vals
}

// arrayItems returns the raw elements of a JSON array.
func arrayItems(raw json.RawMessage) []json.RawMessage {
	dec, ok := openDelim(raw, '[')
	if !ok {
		return nil
	}
	var items []json.RawMessage
	for dec.More() {
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			break
		}
		items = append(items, v)
	}
	return items
}

func openDelim(raw json.RawMessage, delim json.Delim) (*json.Decoder, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != delim {
		return nil, false
	}
	return dec, true
}
