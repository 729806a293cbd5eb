package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ==================== JSON COLUMN TYPES ====================

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, err := columnBytes(value)
	if err != nil {
		return errors.New("failed to scan JSONB: invalid type")
	}
	return json.Unmarshal(bytes, j)
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, err := columnBytes(value)
	if err != nil {
		return errors.New("failed to scan StringList: invalid type")
	}
	return json.Unmarshal(bytes, (*[]string)(s))
}

// ProcessedItemList is a nullable JSON column; a nil list is stored as NULL.
type ProcessedItemList []ProcessedItem

func (p ProcessedItemList) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal([]ProcessedItem(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *ProcessedItemList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	bytes, err := columnBytes(value)
	if err != nil {
		return errors.New("failed to scan ProcessedItemList: invalid type")
	}
	return json.Unmarshal(bytes, (*[]ProcessedItem)(p))
}

// SQLite hands TEXT back as string, PostgreSQL as []byte.
func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported column type")
	}
}
