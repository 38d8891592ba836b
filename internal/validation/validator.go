package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds the size of a decoded request body.
const MaxBodyBytes = 1 << 20

// Defaulter is implemented by shapes with fields that fall back to a value
// when the request omits them. ApplyDefaults runs before decoding so values
// present in the request win.
type Defaulter interface {
	ApplyDefaults(now time.Time)
}

// Request declares the shapes a handler accepts. Nil parts are not checked.
type Request struct {
	Params any
	Body   any
	Query  any
}

// Validator decodes request parts into declared shapes and checks their
// `validate` constraints.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New constructs a Validator that names fields after their wire names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "path", "query"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
	if err := v.RegisterValidation("password", passwordBytes); err != nil {
		panic(fmt.Sprintf("register password validation: %v", err))
	}
	return &Validator{validate: v, now: time.Now}
}

// WithNowFunc allows tests to override the clock used for defaults.
func (v *Validator) WithNowFunc(now func() time.Time) {
	v.now = now
}

// ValidateRequest binds and checks params, then body, then query. The first
// failing stage stops the pipeline and its *Error is returned.
func (v *Validator) ValidateRequest(r *http.Request, req Request) error {
	now := v.now()

	if req.Params != nil {
		applyDefaults(req.Params, now)
		if err := bindTagged(req.Params, "path", r.PathValue); err != nil {
			return err
		}
		if err := v.Struct(req.Params); err != nil {
			return err
		}
	}

	if req.Body != nil {
		applyDefaults(req.Body, now)
		if err := decodeBody(r, req.Body); err != nil {
			return err
		}
		if err := v.Struct(req.Body); err != nil {
			return err
		}
	}

	if req.Query != nil {
		applyDefaults(req.Query, now)
		query := r.URL.Query()
		lookup := func(name string) string {
			if !query.Has(name) {
				return ""
			}
			return query.Get(name)
		}
		if err := bindTagged(req.Query, "query", lookup); err != nil {
			return err
		}
		if err := v.Struct(req.Query); err != nil {
			return err
		}
	}

	return nil
}

// Struct checks the constraints of an already populated shape.
func (v *Validator) Struct(shape any) error {
	err := v.validate.Struct(shape)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", shape, err)
	}

	messages := customMessages(shape)
	out := &Error{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.StructField()][fe.Tag()]
		if !ok {
			msg = describe(fe)
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// PasswordMaxBytes is the longest password bcrypt accepts.
const PasswordMaxBytes = 72

// passwordBytes backs the `password` tag. min and max count characters, while
// bcrypt limits the encoded length.
func passwordBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= PasswordMaxBytes
}

func applyDefaults(shape any, now time.Time) {
	if d, ok := shape.(Defaulter); ok {
		d.ApplyDefaults(now)
	}
}

func decodeBody(r *http.Request, shape any) error {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(shape); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fieldError(typeErr.Field, fmt.Sprintf("%s has an invalid type", typeErr.Field))
		}
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return fieldError("body", "request body is too large")
		}
		return fieldError("body", "request body must be valid JSON")
	}

	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) {
			return fieldError("body", "request body is too large")
		}
		return fieldError("body", "request body must be valid JSON")
	}
	return nil
}

// bindTagged copies string values looked up by tag name into the string and
// integer fields of shape. Missing values leave the field untouched.
func bindTagged(shape any, tag string, lookup func(string) string) error {
	rv := reflect.ValueOf(shape)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("validation: %T must be a pointer to a struct", shape)
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "" || name == "-" {
			continue
		}
		raw := lookup(name)
		if raw == "" {
			continue
		}

		target := rv.Field(i)
		switch target.Kind() {
		case reflect.String:
			target.SetString(raw)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fieldError(name, fmt.Sprintf("%s must be a number", name))
			}
			target.SetInt(n)
		default:
			return fmt.Errorf("validation: unsupported %s field kind %s", tag, target.Kind())
		}
	}
	return nil
}

// customMessages reads `errmsg:"tag=message;tag=message"` overrides per field.
func customMessages(shape any) map[string]map[string]string {
	rt := reflect.TypeOf(shape)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	out := make(map[string]map[string]string)
	if rt.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		messages := field.Tag.Get("errmsg")
		if messages == "" {
			continue
		}
		perTag := make(map[string]string)
		for _, part := range strings.Split(messages, ";") {
			if tag, msg, ok := strings.Cut(part, "="); ok {
				perTag[strings.TrimSpace(tag)] = strings.TrimSpace(msg)
			}
		}
		out[field.Name] = perTag
	}
	return out
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	text := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email address"
	case "uuid", "uuid4":
		return field + " must be a valid id"
	case "min":
		if text {
			return fmt.Sprintf("%s should be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if text {
			return fmt.Sprintf("%s should be less than %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "password":
		return fmt.Sprintf("%s must be at most %d bytes long", field, PasswordMaxBytes)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return field + " is invalid"
	}
}
