package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"nana-store/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	enums := map[string]func(string) bool{
		"category":       func(s string) bool { return domain.Category(s).Valid() },
		"product_type":   func(s string) bool { return domain.ProductType(s).Valid() },
		"product_status": func(s string) bool { return domain.ProductStatus(s).Valid() },
		"badge":          func(s string) bool { return domain.Badge(s).Valid() },
		"payment_method": func(s string) bool { return domain.PaymentMethod(s).Valid() },
		"order_status":   func(s string) bool { return domain.OrderStatus(s).Valid() },
		"order_trigger":  func(s string) bool { return domain.Trigger(s).Valid() },
		"address_type":   func(s string) bool { return domain.AddressType(s).Valid() },
		"size":           func(s string) bool { return domain.Size(s).Valid() },
	}
	for tag, valid := range enums {
		valid := valid
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}
	return v
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ErrEmptyBody is returned when a request that needs a body has none
var ErrEmptyBody = errors.New("request body is empty")

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var out []ValidationError
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			out = append(out, ValidationError{
				Field:   fieldPath(e),
				Message: getErrorMessage(e),
			})
		}
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid", "uuid4":
		return "Invalid ID"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " item(s)"
		}
		return "Value must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Cannot exceed " + e.Param() + " characters"
		}
		return "Value must be at most " + e.Param()
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "category":
		return "Invalid category"
	case "product_type":
		return "Invalid product type"
	case "product_status":
		return "Invalid product status"
	case "badge":
		return "Invalid badge"
	case "payment_method":
		return "Invalid payment method"
	case "order_status":
		return "Invalid status"
	case "order_trigger":
		return "Invalid trigger"
	case "address_type":
		return "Invalid address type"
	case "size":
		return "Invalid size"
	default:
		return "Invalid value"
	}
}
