// Package middleware provides net/http middlewares built on the doze
// request adapter. They expect to run inside an Application, which attaches
// a *request.Request to every inbound request.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iaconlabs/doze/adapter"
	"github.com/iaconlabs/doze/mediatype"
	"github.com/iaconlabs/doze/request"
	"github.com/iaconlabs/doze/router"
)

// Internal singleton instance to allow custom tag registration.
var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// GetValidator returns the shared validator instance used by the Validate middleware.
// Use this to register custom validation tags or translations.
func GetValidator() *validator.Validate {
	return defaultValidator
}

// ValidationError represents a specific validation failure for a field.
// It is intended to be returned as part of a structured JSON response.
type ValidationError struct {
	// Field is the name of the struct field that failed validation.
	Field string `json:"field"`
	// Rule is the name of the validator tag that was violated (e.g., "required", "email").
	Rule string `json:"rule"`
	// Message is a human-readable description of the error.
	Message string `json:"message"`
}

// Validate returns a middleware that binds and validates a T. The request
// entity is decoded with the decoder of its media type, so JSON, XML, YAML
// and form bodies all work; form fields bind through "form" struct tags.
// Path parameters are then mapped using the "param" struct tag. Failures
// answer 400 (unreadable or malformed body), 415 (body of an unregistered
// media type or one without a decoder) or 422 (rule violations). The validated *T is stored under router.ValidationKey.
func Validate[T any](_ T) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, ok := request.FromRequest(r)
			if !ok {
				sendJSONError(w, "doze request not found", http.StatusInternalServerError)
				return
			}

			target := new(T)

			// 1. BINDING: request entity, when the body has a registered media type.
			if status, msg := bindEntity(req, target); status != 0 {
				sendJSONError(w, msg, status)
				return
			}

			// 2. BINDING: path parameters mapped via "param" tags.
			if state, found := adapter.StateFrom(r); found {
				mapPathParams(target, state.Params)
			}

			// 3. VALIDATION: rules from go-playground/validator.
			if err := defaultValidator.Struct(target); err != nil {
				sendDetailedError(w, formatValidationErrors(err))
				return
			}

			// 4. INJECTION: store the validated data in the context.
			ctx := context.WithValue(r.Context(), router.ValidationKey, target)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Validated returns the value stored by Validate[T].
func Validated[T any](r *http.Request) (*T, bool) {
	v, ok := r.Context().Value(router.ValidationKey).(*T)
	return v, ok
}

// bindEntity decodes the request body into target. It returns a zero status
// on success or when there is no body to bind.
func bindEntity(req *request.Request, target any) (int, string) {
	entity, ok := req.Entity()
	if !ok {
		if req.ContentType() != "" && hasBody(req) {
			return http.StatusUnsupportedMediaType, "Unsupported media type"
		}
		return 0, ""
	}

	data, err := entity.Bytes()
	if err != nil {
		return http.StatusBadRequest, "Unable to read request body"
	}
	if len(data) == 0 {
		return 0, ""
	}

	err = entity.Decode(target)
	switch {
	case err == nil:
		return 0, ""
	case errors.Is(err, mediatype.ErrNoDecoder):
		return http.StatusUnsupportedMediaType, "Unsupported media type"
	default:
		return http.StatusBadRequest, fmt.Sprintf("Invalid %s body", entity.MediaType().Name)
	}
}

// hasBody reports whether the request may carry a body. A body of unknown
// length, as sent with chunked encoding, counts.
func hasBody(req *request.Request) bool {
	body := req.HTTP().Body
	return body != nil && body != http.NoBody && req.ContentLength() != 0
}

// mapPathParams uses reflection to populate struct fields decorated with the "param" tag
// using values found in the request's path parameters.
func mapPathParams(target any, params map[string]string) {
	val := reflect.ValueOf(target).Elem()
	if val.Kind() != reflect.Struct {
		return
	}
	typ := val.Type()

	for i := range typ.NumField() {
		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		if paramVal, exists := params[tag]; exists {
			f := val.Field(i)
			if f.CanSet() && f.Kind() == reflect.String {
				f.SetString(paramVal)
			}
		}
	}
}

// formatValidationErrors converts internal validator errors into a slice of ValidationError.
func formatValidationErrors(err error) []ValidationError {
	var errs []ValidationError
	var vErrors validator.ValidationErrors

	if errors.As(err, &vErrors) {
		for _, vErr := range vErrors {
			errs = append(errs, ValidationError{
				Field:   strings.ToLower(vErr.Field()),
				Rule:    vErr.Tag(),
				Message: createMsgForTag(vErr),
			})
		}
	}
	return errs
}

// createMsgForTag generates an error message based on the failed validation tag.
func createMsgForTag(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length/value is %s", v.Param())
	case "max":
		return fmt.Sprintf("Maximum length/value is %s", v.Param())
	default:
		return fmt.Sprintf("Validation failed on rule: %s", v.Tag())
	}
}
