package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("query")
	return d
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report json / query names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// FieldError describes one invalid request field.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// bindError is returned for requests that fail binding or validation.
type bindError struct {
	Fields []FieldError
}

func (e *bindError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// readQuery applies defaults to req, overwrites them from the query string and validates.
func readQuery(r *http.Request, req any) error {
	if err := defaults.Set(req); err != nil {
		return err
	}
	if err := decodeQuery(r, req); err != nil {
		return err
	}
	return validateStruct(r, req)
}

// readJSON decodes the body into req, applies defaults and validates.
func readJSON(r *http.Request, req any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return &bindError{Fields: []FieldError{{Code: "ERR_BODY", Message: fmt.Sprintf("invalid JSON body: %v", err)}}}
	}
	if err := defaults.Set(req); err != nil {
		return err
	}
	return validateStruct(r, req)
}

func validateStruct(r *http.Request, req any) error {
	err := validate.StructCtx(r.Context(), req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return &bindError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// decodeQuery overwrites fields tagged `query:"name"` with values from the URL query.
// Parameters absent from the query keep their current values.
func decodeQuery(r *http.Request, req any) error {
	err := queryDecoder.Decode(req, r.URL.Query())
	if err == nil {
		return nil
	}

	var derrs form.DecodeErrors
	if !errors.As(err, &derrs) {
		return err
	}

	kinds := queryKinds(reflect.TypeOf(req).Elem())
	names := make([]string, 0, len(derrs))
	for name := range derrs {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]FieldError, 0, len(names))
	for _, name := range names {
		switch kinds[name] {
		case reflect.Int:
			fields = append(fields, FieldError{Code: "ERR_INT", Field: name, Message: fmt.Sprintf("%s must be an integer", name)})
		case reflect.Bool:
			fields = append(fields, FieldError{Code: "ERR_BOOL", Field: name, Message: fmt.Sprintf("%s must be a boolean", name)})
		default:
			fields = append(fields, FieldError{Code: "ERR_QUERY", Field: name, Message: fmt.Sprintf("%s is invalid", name)})
		}
	}
	return &bindError{Fields: fields}
}

// queryKinds maps query parameter names to the kind of the field they bind to.
func queryKinds(t reflect.Type) map[string]reflect.Kind {
	kinds := make(map[string]reflect.Kind, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := strings.SplitN(f.Tag.Get("query"), ",", 2)[0]; name != "" && name != "-" {
			kinds[name] = f.Type.Kind()
		}
	}
	return kinds
}
