package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/service"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// maxRecipeBody caps recipe writes, which carry a base64 image.
const maxRecipeBody = 10 << 20

var errBodyTooLarge = errors.New("request body too large")

// limitBody rejects request bodies longer than n bytes once they are read.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// bindJSON decodes the body into dst and reports problems per field.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var sizeErr *http.MaxBytesError

	switch {
	case errors.As(err, &sizeErr):
		return errBodyTooLarge
	case errors.As(err, &verrs):
		out := service.NewValidationError()
		for _, fe := range verrs {
			out.Add(fe.Field(), validationMessage(fe))
		}
		return out
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		return service.FieldError(field, fmt.Sprintf("Expected %s.", typeErr.Type.String()))
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return service.FieldError("non_field_errors", "JSON parse error.")
	default:
		return service.FieldError("non_field_errors", err.Error())
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseRecipesLimit reads ?recipes_limit; absent means no cap (-1).
func parseRecipesLimit(c *gin.Context) (int, error) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, service.FieldError("recipes_limit", "A non-negative integer is required.")
	}
	return n, nil
}
