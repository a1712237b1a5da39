// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	vehicleNumberPattern = regexp.MustCompile(`^[A-Z]{2}[ -]?[0-9]{1,2}[ -]?[A-Z]{0,3}[ -]?[0-9]{1,4}$`)
	quantityUnits        = map[string]bool{"kg": true, "g": true, "quintal": true, "ton": true, "litre": true, "dozen": true, "piece": true, "crate": true}
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("vehicle_number", validateVehicleNumber)
	validate.RegisterValidation("quantity_unit", validateQuantityUnit)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// Indian registration plates, e.g. "TN 09 AB 1234" or "KA01AB123".
func validateVehicleNumber(fl validator.FieldLevel) bool {
	return vehicleNumberPattern.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func validateQuantityUnit(fl validator.FieldLevel) bool {
	return quantityUnits[strings.ToLower(fl.Field().String())]
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "uuid":
		return e.Field() + " must be a valid id"
	case "vehicle_number":
		return "Vehicle number must be a valid registration plate"
	case "quantity_unit":
		return "Unit must be one of kg, g, quintal, ton, litre, dozen, piece, crate"
	default:
		return e.Field() + " is invalid"
	}
}
