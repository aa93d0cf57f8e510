package http

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondValidationError renders binding failures as a 422 with a
// per-field error map. Non-validator errors (malformed JSON, wrong
// types) get a single error string at the same status.
func respondValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[snakeCase(fe.Field())] = validationMessage(fe)
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  fields,
		})
		return
	}

	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}

func validationMessage(fe validator.FieldError) string {
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return "The " + field + " field is required"
	case "max":
		return "The " + field + " field may not be greater than " + fe.Param() + " characters"
	case "min":
		return "The " + field + " field must be at least " + fe.Param() + " characters"
	case "email":
		return "The " + field + " field must be a valid email address"
	case "oneof":
		return "The " + field + " field must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "The " + field + " field is invalid"
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
