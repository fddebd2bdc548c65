package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"tle_zone_dashboard/internal/common"
)

// FieldError reports which field of which record broke the contract.
// Field is a dotted path for embedded records, e.g. "sender.status" or "tests[1].Input".
type FieldError struct {
	Entity string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Entity, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(entity, field string, err error) error {
	return &FieldError{Entity: entity, Field: field, Err: err}
}

// nestErr re-roots an error raised by an embedded record under the parent's field.
func nestErr(entity, field string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		return &FieldError{Entity: entity, Field: field + "." + fe.Field, Err: fe.Err}
	}
	return &FieldError{Entity: entity, Field: field, Err: err}
}

type presence struct {
	name string
	ok   bool
}

func has(name string, ok bool) presence {
	return presence{name: name, ok: ok}
}

// requireFields returns a FieldError for the first absent key.
func requireFields(entity string, fields ...presence) error {
	for _, f := range fields {
		if !f.ok {
			return fieldErr(entity, f.name, common.ErrMissingRequiredField)
		}
	}
	return nil
}

// present reports whether a raw value was supplied; null counts as absent.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func decodeErr(entity string, err error) error {
	return fmt.Errorf("decode %s: %v: %w", entity, err, common.ErrBadRequest)
}
