package validation

import (
	"html"
	"reflect"
	"strings"

	"github.com/Aidin1998/usersapi/common/errors"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Validator validates request payloads against their struct tags and strips markup from
// free text fields.
type Validator struct {
	validator *validator.Validate
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
}

// NewValidator creates a new validator reporting fields by their json names
func NewValidator(logger *zap.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validator: v,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ValidateStruct validates a struct using struct tags. Failures are returned as errors.Invalid
// with one field error per violated rule.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	validationErr := errors.Invalid.Explain("validation error")
	var fieldsError validator.ValidationErrors
	if errors.As(err, &fieldsError) {
		for _, fieldErr := range fieldsError {
			validationErr = validationErr.WithField(fieldErr.Tag(), fieldErr.Field(), fieldErr.Param())
		}
		v.logger.Debug("validation failed", zap.Any("fields", validationErr.Fields))
		return validationErr
	}

	return validationErr.Wrap(err)
}

// maxSanitizePasses bounds the sanitize/unescape loop for deeply nested entities.
const maxSanitizePasses = 8

// SanitizeString removes all markup and surrounding whitespace. Entities escaped by the
// sanitizer are decoded again so plain text round-trips unchanged. Decoding can surface markup
// that was written as entities, so the policy runs again until the text is stable.
func (v *Validator) SanitizeString(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		sanitized := v.sanitizer.Sanitize(s)
		decoded := html.UnescapeString(sanitized)
		if decoded == s {
			return strings.TrimSpace(decoded)
		}
		s = decoded
	}
	// Still not stable: keep the escaped form so nothing decodes into markup.
	return strings.TrimSpace(v.sanitizer.Sanitize(s))
}
