package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap maps a jsonb column holding a free-form string map. Notification
// payload data rides in this shape.
type JSONMap map[string]string

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("JSONMap: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}

	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("JSONMap: decode: %w", err)
	}
	*m = JSONMap(out)
	return nil
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, fmt.Errorf("JSONMap: encode: %w", err)
	}
	return string(raw), nil
}
