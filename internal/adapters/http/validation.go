package web

import (
	"net/http"
	"reflect"
	"strings"

	"studio/internal/domain/schedule"

	"github.com/go-playground/validator/v10"
)

// validate checks decoded request bodies. Field names in errors follow the JSON tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// date: YYYY-MM-DD
	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseDate(fl.Field().String())
		return err == nil
	})
	// clock: HH:MM
	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseClock(fl.Field().String())
		return err == nil
	})
	// halfhour: a bookable slot start inside the operating window
	v.RegisterValidation("halfhour", func(fl validator.FieldLevel) bool {
		_, err := schedule.BookingWindow.ValidateSlot(fl.Field().String())
		return err == nil
	})
	return v
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field()] = err.Tag()
	}
	return details
}

// decodeRequest decodes and validates a JSON body, writing a 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

// queryRequest validates a struct filled from query parameters, writing a 400 on failure.
func queryRequest(w http.ResponseWriter, v any) bool {
	if err := validate.Struct(v); err != nil {
		writeError(w, err)
		return false
	}
	return true
}
