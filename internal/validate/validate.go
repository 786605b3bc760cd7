// Package validate checks controller response payloads against per-endpoint
// shapes before anything downstream decodes, joins or sums them. Unvalidated
// payloads never reach the data processors.
package validate

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrorKind classifies validation failures.
type ErrorKind int

const (
	// MissingField means a required field is absent.
	MissingField ErrorKind = iota
	// TypeMismatch means a field exists with the wrong primitive type.
	TypeMismatch
	// Truncated means the payload is an incomplete document (cut off
	// mid-response or signalling more pages without a continuation).
	Truncated
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case TypeMismatch:
		return "type mismatch"
	case Truncated:
		return "truncated payload"
	default:
		return "unknown"
	}
}

// Error is a rejected payload. Field always names the offending field.
type Error struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("validate: %s: %s", e.Kind, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// FieldType is the expected primitive type of a required field.
type FieldType int

const (
	String FieldType = iota
	Number
	Bool
	Array
	ObjectField
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Array:
		return "array"
	case ObjectField:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one required field in a payload shape.
type Field struct {
	Path string
	Type FieldType
}

func matches(res gjson.Result, t FieldType) bool {
	switch t {
	case String:
		return res.Type == gjson.String
	case Number:
		return res.Type == gjson.Number
	case Bool:
		return res.IsBool()
	case Array:
		return res.IsArray()
	case ObjectField:
		return res.IsObject()
	default:
		return false
	}
}

// Document verifies the body is complete, well-formed JSON.
func Document(body []byte) error {
	if !gjson.ValidBytes(body) {
		return &Error{Kind: Truncated, Field: "document"}
	}
	return nil
}

// Object verifies a JSON object carries every required field with the
// expected type.
func Object(body []byte, fields ...Field) error {
	if err := Document(body); err != nil {
		return err
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return &Error{Kind: TypeMismatch, Field: "document", Err: fmt.Errorf("expected object")}
	}
	return checkFields(root, fields)
}

// ObjectArray verifies a JSON array whose every element carries the required
// fields. An empty array is valid.
func ObjectArray(body []byte, fields ...Field) error {
	if err := Document(body); err != nil {
		return err
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return &Error{Kind: TypeMismatch, Field: "document", Err: fmt.Errorf("expected array")}
	}

	var verr *Error
	root.ForEach(func(idx, elem gjson.Result) bool {
		if !elem.IsObject() {
			verr = &Error{Kind: TypeMismatch, Field: fmt.Sprintf("[%d]", int(idx.Int()))}
			return false
		}
		if err := checkFields(elem, fields); err != nil {
			verr = err.(*Error)
			verr.Field = fmt.Sprintf("[%d].%s", int(idx.Int()), verr.Field)
			return false
		}
		return true
	})
	if verr != nil {
		return verr
	}
	return nil
}

func checkFields(obj gjson.Result, fields []Field) error {
	for _, f := range fields {
		res := obj.Get(f.Path)
		if !res.Exists() {
			return &Error{Kind: MissingField, Field: f.Path}
		}
		if !matches(res, f.Type) {
			return &Error{
				Kind:  TypeMismatch,
				Field: f.Path,
				Err:   fmt.Errorf("expected %s, got %s", f.Type, res.Type),
			}
		}
	}
	return nil
}

// Empty reports whether a payload represents "no data": blank, an empty
// array, or an empty object. Empty payloads are skipped, not rejected.
func Empty(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return true
	}
	s := string(trimmed)
	return s == "[]" || s == "{}" || s == `""`
}
