package blog

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  = newValidator()
	stripHTML = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their form/json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a form field name to its validation messages.
// An empty FieldErrors means the form is valid.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

type CommentForm struct {
	Name  string `json:"name" validate:"required,max=80"`
	Email string `json:"email" validate:"required,email,max=254"`
	Body  string `json:"body" validate:"required"`
}

// Clean strips any HTML from the visitor supplied text and trims it.
func (f *CommentForm) Clean() {
	f.Name = stripTags(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Body = stripTags(f.Body)
}

// stripTags drops the HTML elements of s and returns plain text. Entities
// are decoded afterwards, so escaped markup such as "&lt;b&gt;" is kept as
// the literal text "<b>"; callers must escape it if they ever render HTML.
func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripHTML.Sanitize(s)))
}

func (f *CommentForm) Validate() FieldErrors {
	return validateForm(f)
}

func (f *CommentForm) fromValues(v url.Values) {
	f.Name = v.Get("name")
	f.Email = v.Get("email")
	f.Body = v.Get("body")
}

type ShareForm struct {
	Name     string `json:"name" validate:"required,max=25"`
	Email    string `json:"email" validate:"required,email,max=254"`
	To       string `json:"to" validate:"required,email,max=254"`
	Comments string `json:"comments"`
}

func (f *ShareForm) Clean() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.To = strings.TrimSpace(f.To)
	f.Comments = strings.TrimSpace(f.Comments)
}

func (f *ShareForm) Validate() FieldErrors {
	return validateForm(f)
}

func (f *ShareForm) fromValues(v url.Values) {
	f.Name = v.Get("name")
	f.Email = v.Get("email")
	f.To = v.Get("to")
	f.Comments = v.Get("comments")
}

func validateForm(form any) FieldErrors {
	fieldErrs := FieldErrors{}

	err := validate.Struct(form)
	if err == nil {
		return fieldErrs
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fieldErrs.Add("__all__", err.Error())
		return fieldErrs
	}

	for _, fe := range validationErrs {
		fieldErrs.Add(fe.Field(), fieldErrorMessage(fe))
	}

	return fieldErrs
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf(
			"Ensure this value has at most %s characters (it has %d).",
			fe.Param(), len([]rune(fmt.Sprint(fe.Value()))),
		)
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}

type valuesForm interface {
	fromValues(v url.Values)
}

// decodeForm fills the form from a JSON or an urlencoded/multipart request body.
func decodeForm(r *http.Request, form valuesForm) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(form); err != nil {
			return fmt.Errorf("decode json form: %w", err)
		}
		return nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	form.fromValues(r.PostForm)
	return nil
}
