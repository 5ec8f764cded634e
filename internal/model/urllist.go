package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// URLList is an ordered list of URLs persisted in a JSON column.
type URLList []string

// Value encodes the list as a JSON array; nil is stored as [].
func (l URLList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan decodes a JSON array read from the database.
func (l *URLList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = URLList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("urllist: unsupported source %T", src)
	}
	if len(raw) == 0 {
		*l = URLList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("urllist: %w", err)
	}
	*l = out
	return nil
}

// Without returns the list minus every URL in drop, preserving order.
func (l URLList) Without(drop []string) URLList {
	skip := make(map[string]bool, len(drop))
	for _, u := range drop {
		skip[u] = true
	}
	out := make(URLList, 0, len(l))
	for _, u := range l {
		if !skip[u] {
			out = append(out, u)
		}
	}
	return out
}
