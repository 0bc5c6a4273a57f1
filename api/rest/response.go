package rest

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kasuganosora/middleearth/apperr"
)

// respond writes a success envelope.
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// fail writes the failure envelope for err. Validation failures list their
// fields under "errors"; other failures put their metadata there.
func fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	body := gin.H{"success": false, "code": code, "message": publicMessage(err, code)}
	if fields := apperr.FieldErrors(err); fields != nil {
		body["errors"] = fields
	} else if meta := apperr.MetaOf(err); len(meta) > 0 {
		body["errors"] = meta
	}
	if code == apperr.CodeInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code.HTTPStatus(), body)
}

func publicMessage(err error, code apperr.Code) string {
	var e *apperr.Error
	switch {
	case code == apperr.CodeInternal:
		return "internal error"
	case code == apperr.CodeValidation:
		return "validation failed"
	case errors.As(err, &e) && e.Message != "":
		return e.Message
	default:
		return strings.ToLower(strings.ReplaceAll(string(code), "_", " "))
	}
}

var tagNameOnce sync.Once

// useJSONFieldNames makes binding errors report json names.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bind decodes the JSON body into req and reports problems as a validation
// failure. An empty body is accepted and leaves req untouched.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	vb := apperr.NewValidationBuilder()
	var ves validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &ves):
		for _, fe := range ves {
			vb.Field(fe.Field(), describe(fe))
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		vb.Fieldf(typeErr.Field, "must be a %s", typeErr.Type.String())
	default:
		vb.Field("body", "malformed JSON")
	}
	fail(c, vb.Build())
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// pathID parses a positive integer path parameter. Anything else is reported
// as a missing resource.
func pathID(c *gin.Context, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, apperr.NotFoundf("%s %q not found", what, c.Param(name)))
		return 0, false
	}
	return id, true
}
