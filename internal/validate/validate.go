package validate

import (
	"bytes"         // Null detection
	"encoding/json" // Optional field decoding
	"errors"        // Error inspection
	"fmt"           // Message formatting
	"reflect"       // Type error reporting
	"strconv"       // Query coercion
	"strings"       // Trimming
	"time"          // Date parsing

	"finance_tracker/internal/apperr" // Error taxonomy

	"github.com/go-playground/validator/v10" // Struct validation errors
	"github.com/shopspring/decimal"          // Exact amounts
)

// Issues accumulates field problems for one request
type Issues []apperr.Issue

// Add records a problem with field
func (is *Issues) Add(field, message string) {
	*is = append(*is, apperr.Issue{Field: field, Message: message})
}

// Err returns a Validation error when any issue was recorded, nil otherwise
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	return apperr.Invalid(is)
}

// FromBindError turns a gin binding error into issues. Validator errors
// become one issue per field; decoding errors become a single body issue.
func (is *Issues) FromBindError(err error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			is.Add(fe.Field(), tagMessage(fe))
		}
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		is.Add(typeErr.Field, "has the wrong type")
		return
	}
	is.Add("body", "must be a valid JSON object")
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps and zone-less dates, which are
// read as UTC. The result is always in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// QueryInt parses an optional integer query value within [lo, hi]
func (is *Issues) QueryInt(field, raw string, lo, hi int) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		is.Add(field, "must be an integer")
		return 0, false
	}
	if v < lo || v > hi {
		is.Add(field, fmt.Sprintf("must be between %d and %d", lo, hi))
		return 0, false
	}
	return v, true
}

// QueryDecimal parses an optional numeric query value
func (is *Issues) QueryDecimal(field, raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		is.Add(field, "must be a number")
		return nil
	}
	return &v
}

// QueryDate parses an optional date query value
func (is *Issues) QueryDate(field, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		is.Add(field, "must be a valid date")
		return nil
	}
	return &t
}

// ID parses a path id, which must be a positive integer
func ID(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, &apperr.Error{
			Kind:    apperr.Validation,
			Message: "Invalid ID format",
			Issues:  []apperr.Issue{{Field: "id", Message: "must be a positive integer"}},
		}
	}
	return uint(v), nil
}

// Nullable tells apart a JSON field that is absent, explicitly null, or set
type Nullable[T any] struct {
	Set   bool // Field present in the payload
	Value *T   // Nil when the payload had null
}

// UnmarshalJSON is only invoked when the key is present
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Number is a decimal that only decodes from a JSON number; "42.50" in
// quotes is a type error
type Number struct {
	decimal.Decimal
}

// UnmarshalJSON rejects strings before handing the literal to decimal
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return &json.UnmarshalTypeError{Value: "string", Type: reflect.TypeOf(n.Decimal)}
	}
	return n.Decimal.UnmarshalJSON(data)
}
