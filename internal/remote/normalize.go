package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Pagination is the page metadata of a listing response.
type Pagination struct {
	Count    int
	Next     string
	Previous string
}

type pageFields struct {
	Count    *int    `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

func (p pageFields) toPagination() Pagination {
	var out Pagination
	if p.Count != nil {
		out.Count = *p.Count
	}
	if p.Next != nil {
		out.Next = *p.Next
	}
	if p.Previous != nil {
		out.Previous = *p.Previous
	}
	return out
}

// NormalizeResults unwraps a collection response. The payload may arrive as
// {data:{results:[...]}}, {data:[...]}, {results:[...]} or a bare array; all
// yield the same ordered records. Pagination is read from data when data is an
// object, otherwise from the top level. Unrecognised shapes yield no records.
func NormalizeResults(body []byte) ([]json.RawMessage, Pagination, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, Pagination{}, nil
	}
	if trimmed[0] == '[' {
		records, err := rawArray(trimmed)
		return records, Pagination{}, err
	}
	if trimmed[0] != '{' {
		return nil, Pagination{}, fmt.Errorf("normalize: unexpected payload %q", firstByte(trimmed))
	}

	var top struct {
		pageFields
		Data    json.RawMessage `json:"data"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, Pagination{}, fmt.Errorf("normalize: %w", err)
	}

	data := bytes.TrimSpace(top.Data)
	if len(data) > 0 {
		switch data[0] {
		case '{':
			var inner struct {
				pageFields
				Results json.RawMessage `json:"results"`
			}
			if err := json.Unmarshal(data, &inner); err != nil {
				return nil, Pagination{}, fmt.Errorf("normalize: %w", err)
			}
			if isArray(inner.Results) {
				records, err := rawArray(inner.Results)
				return records, inner.toPagination(), err
			}
		case '[':
			records, err := rawArray(data)
			return records, top.toPagination(), err
		}
	}
	if isArray(top.Results) {
		records, err := rawArray(top.Results)
		return records, top.toPagination(), err
	}
	return nil, top.toPagination(), nil
}

// decodeRecords converts normalized records to T.
func decodeRecords[T any](records []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// unwrapData returns the "data" member of an envelope, or the body itself when
// there is no envelope.
func unwrapData(body []byte) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err == nil && len(bytes.TrimSpace(env.Data)) > 0 {
			return env.Data
		}
	}
	return trimmed
}

// messageText flattens a server "message" that may be a string or a field
// error map such as {"email":["This field is required."]}.
func messageText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if t := messageText(item); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, " ")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if t := messageText(fields[k]); t != "" {
				parts = append(parts, k+": "+t)
			}
		}
		return strings.Join(parts, "; ")
	}
	return strings.TrimSpace(string(raw))
}

// flexString reads an identifier that may be a JSON string or number.
func flexString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}

func rawArray(b []byte) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return records, nil
}

func isArray(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

func firstByte(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return string(b[:1])
}
