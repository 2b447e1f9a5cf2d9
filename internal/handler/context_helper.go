package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/shift-booking-api/internal/calendar"
	"github.com/noah-isme/shift-booking-api/internal/middleware"
	"github.com/noah-isme/shift-booking-api/internal/models"
	"github.com/noah-isme/shift-booking-api/internal/service"
	appErrors "github.com/noah-isme/shift-booking-api/pkg/errors"
	"github.com/noah-isme/shift-booking-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUser aborts with 401 when no claims are attached.
func currentUser(c *gin.Context) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

func newValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return validator.New()
	}
	return v
}

// validationError converts validator output into a VALIDATION_ERROR with one
// reason per failed field.
func validationError(err error, message string) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		reasons := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			reasons = append(reasons, strings.ToLower(fe.Field())+" failed "+fe.Tag())
		}
		return appErrors.WithReasons(appErrors.Clone(appErrors.ErrValidation, message), reasons)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func bindJSON(c *gin.Context, v *validator.Validate, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, validationError(err, message))
		return false
	}
	if err := v.Struct(dst); err != nil {
		response.Error(c, validationError(err, message))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, v *validator.Validate, dst interface{}, message string) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, validationError(err, message))
		return false
	}
	if err := v.Struct(dst); err != nil {
		response.Error(c, validationError(err, message))
		return false
	}
	return true
}

// bookingID reads the :id path parameter, which must be a UUID.
func bookingID(c *gin.Context, v *validator.Validate) (string, bool) {
	id := c.Param("id")
	if err := v.Var(id, "required,uuid"); err != nil {
		response.Error(c, appErrors.WithReasons(appErrors.Clone(appErrors.ErrValidation, "invalid booking id"), []string{"id must be a UUID"}))
		return "", false
	}
	return id, true
}

func parseDate(c *gin.Context, raw, field string) (time.Time, bool) {
	date, err := calendar.ParseDate(raw)
	if err != nil {
		response.Error(c, appErrors.WithReasons(appErrors.Clone(appErrors.ErrValidation, "invalid "+field), []string{field + " must be YYYY-MM-DD"}))
		return time.Time{}, false
	}
	return date, true
}

// writeResult maps a workflow outcome to HTTP. Rejections keep the result in
// the payload so callers see every reason code.
func writeResult(c *gin.Context, status int, res *service.WorkflowResult) {
	if res.Success {
		response.JSON(c, status, res, nil)
		return
	}
	err := res.Error
	if err == nil {
		err = appErrors.ErrInternal
	}
	response.Failure(c, err, res)
}
