package forms

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind is how a raw form string is coerced before persistence
type Kind int

const (
	Text Kind = iota
	Integer
	Decimal
	Boolean
	Date
	Enum
)

// Field maps one form key to its validation rule and persistence coercion
type Field struct {
	Key string
	// Column defaults to Key
	Column string
	Kind   Kind
	// Rules is a validator tag checked against the trimmed raw string (e.g. "required,max=100")
	Rules string
	// Check is a validator tag checked against the coerced value when it is not nil (e.g. "gte=0")
	Check string
	// Options are the allowed values of an Enum
	Options []string
	// Nullable stores empty text as NULL instead of ""
	Nullable bool
	// Default is the raw value used when the key is absent from a full bind
	Default string
}

func (f Field) column() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Key
}

// CrossRule validates relations between coerced fields
type CrossRule func(v Values) []FieldError

// Schema is the closed set of fields a form accepts
type Schema struct {
	Name   string
	Fields []Field
	Rules  []CrossRule
}

// Values are coerced column values ready for the store
type Values map[string]interface{}

// FieldError describes one rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a form fails validation; nothing is written
type ValidationError struct {
	Form   string       `json:"form"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("invalid %s form: %s", e.Form, strings.Join(parts, "; "))
}

var validate = validator.New()

// Bind validates and coerces raw input. With partial set, fields absent from raw are left out
// of the result instead of being validated as empty; otherwise they bind their Default.
func (s Schema) Bind(raw map[string]string, partial bool) (Values, error) {
	var errs []FieldError
	known := make(map[string]bool, len(s.Fields))
	values := make(Values, len(s.Fields))

	for _, f := range s.Fields {
		known[f.Key] = true
		rawVal, present := raw[f.Key]
		if !present {
			if partial {
				continue
			}
			rawVal = f.Default
		}
		trimmed := strings.TrimSpace(rawVal)

		if f.Rules != "" {
			if err := validate.Var(trimmed, f.Rules); err != nil {
				errs = append(errs, FieldError{Field: f.Key, Message: describe(err)})
				continue
			}
		}

		v, err := coerce(f, trimmed)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Key, Message: err.Error()})
			continue
		}
		if v != nil && f.Check != "" {
			if err := validate.Var(v, f.Check); err != nil {
				errs = append(errs, FieldError{Field: f.Key, Message: describe(err)})
				continue
			}
		}
		values[f.column()] = v
	}

	unknown := make([]string, 0)
	for key := range raw {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, FieldError{Field: key, Message: "unknown field"})
	}

	if len(errs) == 0 {
		for _, rule := range s.Rules {
			errs = append(errs, rule(values)...)
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Form: s.Name, Fields: errs}
	}
	return values, nil
}

// Field returns the field definition for key
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func coerce(f Field, s string) (interface{}, error) {
	switch f.Kind {
	case Integer:
		return ParseInt(s)
	case Decimal:
		return ParseFloat(s)
	case Boolean:
		if s == "" {
			return false, nil
		}
		switch strings.ToLower(s) {
		case "on", "yes", "y":
			return true, nil
		case "off", "no", "n":
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("must be true or false")
		}
		return b, nil
	case Date:
		return ParseDate(s)
	case Enum:
		if s == "" {
			return nil, nil
		}
		for _, opt := range f.Options {
			if s == opt {
				return s, nil
			}
		}
		return nil, fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
	default:
		if s == "" && f.Nullable {
			return nil, nil
		}
		return s, nil
	}
}

// ParseInt converts a form string to an integer; empty input yields nil, never 0
func ParseInt(s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("must be a whole number")
	}
	return n, nil
}

// ParseFloat converts a form string to a decimal; empty input yields nil
func ParseFloat(s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("must be a number")
	}
	return f, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339; empty input yields nil
func ParseDate(s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("must be a date (YYYY-MM-DD)")
	}
	return t, nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must contain only digits"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag() + " check"
}
