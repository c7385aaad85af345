// Package inputval validates request input structs using struct tags.
//
// Fields are tagged with `validate:"..."` rules and a human `label:"..."`:
//
//	type createProjectorInput struct {
//	    Grade int    `validate:"required,min=1,max=12" label:"Grade"`
//	    Shift string `validate:"required,shift" label:"Shift"`
//	}
//
// Validate returns a Result whose First() message is ready to show a user.
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/projectorhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the failed rules of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("shift", func(fl validator.FieldLevel) bool {
			return models.IsShift(fl.Field().String())
		})
		_ = v.RegisterValidation("projectorstate", func(fl validator.FieldLevel) bool {
			return models.IsProjectorState(fl.Field().String())
		})
		_ = v.RegisterValidation("reservationstate", func(fl validator.FieldLevel) bool {
			return models.IsReservationState(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate runs the struct-tag rules on s.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "email":
		return "A valid " + strings.ToLower(label) + " is required."
	case "objectid":
		return label + " is not a valid id."
	case "shift":
		return label + " must be 'morning' or 'evening'."
	case "projectorstate", "reservationstate", "oneof":
		return label + " is not a valid value."
	case "gtfield":
		return fmt.Sprintf("%s must be after %s.", label, fe.Param())
	}
	return label + " is invalid."
}

// IsValidObjectID reports whether s is a 24-char hex Mongo ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
