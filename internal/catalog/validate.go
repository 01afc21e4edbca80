package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes the first field of a Book that failed
// validation.
type ValidationError struct {
	Field string
	Tag   string
	Param string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Tag == "required" && e.Field == "title":
		return "please enter a title"
	case e.Tag == "required" && e.Field == "author":
		return "please enter an author"
	case e.Tag == "max":
		return fmt.Sprintf("%s must not exceed %s characters", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml field names so messages match what users type.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the fields required before a book may be committed.
// Callers are expected to trim user input first.
func Validate(b Book) error {
	err := validate.Struct(b)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return err
}
