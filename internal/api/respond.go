package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"reflect"  // Struct field tags
	"strings"  // Tag parsing
	"sync"     // One-time validator setup

	"finance_tracker/internal/apperr"     // Error taxonomy
	"finance_tracker/internal/middleware" // Request identity
	"finance_tracker/internal/validate"   // Input validation

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Gin's validator engine
	"github.com/go-playground/validator/v10" // Struct validation
	"github.com/sirupsen/logrus"             // Logging
)

var fieldNamesOnce sync.Once

// useJSONFieldNames makes validation issues report JSON names (categoryId,
// not CategoryID)
func useJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
	})
}

// bindJSON decodes the body into dst and runs its binding rules. The bool
// is false when the body could not be decoded at all, in which case the
// caller must not look at dst.
func bindJSON(c *gin.Context, dst any) (validate.Issues, bool) {
	var issues validate.Issues
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return issues, true
	}
	issues.FromBindError(err)
	var verrs validator.ValidationErrors
	return issues, errors.As(err, &verrs)
}

// respondError writes err as JSON. Anything that is not an expected domain
// failure is logged with the request context and reported as a bare 500.
func respondError(c *gin.Context, err error, op string) {
	appErr := apperr.As(err)
	if appErr.Kind == apperr.Internal {
		fields := logrus.Fields{
			"op":         op,                                   // Failing operation
			"request_id": c.GetString(middleware.RequestIDKey), // Correlates with the access log
			"error":      err.Error(),                          // Internal detail, never returned
		}
		if id, ok := middleware.CurrentUser(c); ok {
			fields["user_id"] = id.UserID
		}
		logrus.WithFields(fields).Error(op + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	body := gin.H{"error": appErr.Message}
	if len(appErr.Issues) > 0 {
		body["issues"] = appErr.Issues
	}
	c.JSON(apperr.Status(appErr.Kind), body)
}

// currentUserID returns the caller's id, answering 401 when the access
// guard did not run
func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, apperr.New(apperr.Unauthenticated, "Unauthorized"), "authorize")
		return 0, false
	}
	return id.UserID, true
}

// pathID parses the :id path parameter, answering 400 when malformed
func pathID(c *gin.Context) (uint, bool) {
	id, err := validate.ID(c.Param("id"))
	if err != nil {
		respondError(c, err, "parse id")
		return 0, false
	}
	return id, true
}

// trimmed returns the trimmed value of s, or nil for a nil or blank s
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
