// Package validation checks the formats of user and grade entry fields.
// It has no side effects; callers normalise values before checking them.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Kind names a single field format understood by Check.
type Kind int

const (
	Email Kind = iota
	Grade
	Attendance
	Comments
	Password
)

func (k Kind) String() string {
	switch k {
	case Email:
		return "email"
	case Grade:
		return "grade"
	case Attendance:
		return "attendance"
	case Comments:
		return "comments"
	case Password:
		return "password"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	MaxCommentsLength = 500
	MinPasswordLength = 8
	MaxPasswordLength = 100
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags & texts
	emailTag   = "email_address"
	emailText  = "{0} must be a valid email address"
	emailRegex = regexp.MustCompile(`^[\w-]+(?:\.[\w-]+)*@(?:[\w-]+\.)+[a-zA-Z]{2,7}$`)

	gradeTag   = "letter_grade"
	gradeText  = "{0} must be a letter from A to F, optionally followed by + or -"
	gradeRegex = regexp.MustCompile(`^[A-F][+-]?$`)

	passwordTag  = "password"
	passwordText = "{0} must be 8 to 100 characters with upper and lower case letters, a digit and a symbol"

	upperRegex  = regexp.MustCompile(`[A-Z]`)
	lowerRegex  = regexp.MustCompile(`[a-z]`)
	digitRegex  = regexp.MustCompile(`[0-9]`)
	symbolRegex = regexp.MustCompile(`[^A-Za-z0-9\s]`)

	requiredTag  = "required"
	requiredText = "{0} is required"

	kindTags = map[Kind]string{
		Email:      "required," + emailTag,
		Grade:      "required," + gradeTag,
		Attendance: "min=0,max=100",
		Comments:   fmt.Sprintf("max=%d", MaxCommentsLength),
		Password:   "required," + passwordTag,
	}
)

func init() {
	validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(emailTag, emailValidation)
	registerTranslation(emailTag, emailText, false)

	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	registerTranslation(gradeTag, gradeText, false)

	_ = validate.RegisterValidation(passwordTag, passwordValidation)
	registerTranslation(passwordTag, passwordText, false)

	registerTranslation(requiredTag, requiredText, true)
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Error carries one message per offending field, keyed by JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError builds a single-field Error.
func NewError(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

// Check validates a single value of the given kind.
func Check(kind Kind, value interface{}) error {
	tag, ok := kindTags[kind]
	if !ok {
		return fmt.Errorf("validation: unknown kind %s", kind)
	}
	return translate(validate.VarWithKey(kind.String(), value, tag))
}

// Struct validates a request struct declared with validate tags.
func Struct(v interface{}) error {
	return translate(validate.Struct(v))
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		// first failing rule per field wins
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = fe.Translate(translator)
		}
	}
	return out
}

// Custom Validators

func emailValidation(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func gradeValidation(fl validator.FieldLevel) bool {
	return gradeRegex.MatchString(fl.Field().String())
}

func passwordValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	n := utf8.RuneCountInString(s)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return false
	}
	return upperRegex.MatchString(s) &&
		lowerRegex.MatchString(s) &&
		digitRegex.MatchString(s) &&
		symbolRegex.MatchString(s)
}
