package storage

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/easeaico/companion-house/internal/types"
)

// marshalJSON encodes a value into a JSON column, returning nil for empty values.
func marshalJSON(value any) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return datatypes.JSON(raw), nil
}

// unmarshalJSON decodes a JSON column into target; empty columns leave target untouched.
func unmarshalJSON(data datatypes.JSON, target any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, target)
}

// notFound maps gorm's missing-record error to the domain sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrNotFound
	}
	return err
}
