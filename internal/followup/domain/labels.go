package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LabelSet is a list of labels stored as a JSON-encoded text column.
// Decoding happens eagerly at the persistence boundary; a malformed
// column surfaces ErrMalformedRecord instead of silently defaulting.
type LabelSet []string

// Value implements driver.Valuer
func (l LabelSet) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *LabelSet) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("%w: unexpected label column type %T", ErrMalformedRecord, value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}

	var decoded []string
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	*l = decoded
	return nil
}

// Metadata is free-form history metadata stored as a JSON-encoded text column
type Metadata map[string]interface{}

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("%w: unexpected metadata column type %T", ErrMalformedRecord, value)
	}

	if len(data) == 0 {
		*m = nil
		return nil
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	*m = decoded
	return nil
}
