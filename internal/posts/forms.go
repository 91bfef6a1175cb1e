package posts

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Field error messages shown next to form inputs
const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// PostForm is the input for creating or editing a post. Image holds a media
// reference that has already been stored; empty keeps the current image.
type PostForm struct {
	Text  string `form:"text" json:"text" validate:"notblank"`
	Group string `form:"group" json:"group"`
	Image string `form:"-" json:"-"`
}

// CommentForm is the input for adding a comment
type CommentForm struct {
	Text string `form:"text" json:"text" validate:"notblank"`
}

// ValidationError carries per-field messages for a rejected form
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an error with a single field message
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add appends a message to field
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(v.Fields[name], " "))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// check validates form and converts failures into a ValidationError
func check(v *validator.Validate, form interface{}) *ValidationError {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("__all__", err.Error())
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "notblank", "required":
			out.Add(fe.Field(), MsgRequired)
		default:
			out.Add(fe.Field(), fe.Error())
		}
	}
	return out
}
