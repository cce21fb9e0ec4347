package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"product-catalog/internal/dto"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Let numeric tags such as gte=0 apply to decimal amounts
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterStructValidation(productPriceValidation, dto.ProductDTO{})
}

// productPriceValidation rejects non-negative prices the store would round or
// overflow. Negative prices are already reported by gte=0.
func productPriceValidation(sl validator.StructLevel) {
	product := sl.Current().Interface().(dto.ProductDTO)
	if product.Price.IsNegative() || dto.StorablePrice(product.Price) {
		return
	}
	sl.ReportError(product.Price, "price", "Price", "price", "")
}

// ValidateRequest validates a struct against its validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	FieldName string `json:"fieldName"`
	Message   string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format.
// It returns nil when err is not a validation failure.
func FormatValidationErrors(err error) []ValidationError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	errs := make([]ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, ValidationError{
			FieldName: fieldPath(e),
			Message:   getErrorMessage(e),
		})
	}

	return errs
}

// fieldPath drops the top-level struct name from the namespace, so
// "ProductDTO.categories[0].id" becomes "categories[0].id"
func fieldPath(e validator.FieldError) string {
	if _, path, found := strings.Cut(e.Namespace(), "."); found {
		return path
	}
	return e.Field()
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Required field"
	case "min":
		if e.Kind() == reflect.String {
			return "Must have at least " + e.Param() + " characters"
		}
		return "Value is too small"
	case "max":
		if e.Kind() == reflect.String {
			return "Must have at most " + e.Param() + " characters"
		}
		return "Value is too large"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "url":
		return "Invalid URL"
	case "price":
		return "Must have at most 2 decimal places and be less than 10000000000"
	default:
		return "Invalid value"
	}
}
