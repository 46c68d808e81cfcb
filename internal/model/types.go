package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is an open key-value payload stored in a jsonb column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// ReactionCounts is an emoji→count aggregate stored in a jsonb column.
type ReactionCounts map[string]int

// Value implements driver.Valuer.
func (c ReactionCounts) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *ReactionCounts) Scan(src interface{}) error {
	if src == nil {
		*c = ReactionCounts{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ReactionCounts", src)
	}
	if len(data) == 0 {
		*c = ReactionCounts{}
		return nil
	}
	return json.Unmarshal(data, c)
}
