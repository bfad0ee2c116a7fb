package handler

import (
	"errors"
	"net/http"
	"reflect"

	"nexopos/internal/apierror"
	"nexopos/internal/middleware"
	"nexopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorFromClaims builds the service actor from the validated JWT. The
// tenant always comes from the token, never from the request.
func actorFromClaims(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	actor := service.Actor{UserName: claims.Name}
	if uid, err := uuid.Parse(claims.UserID); err == nil {
		actor.UserID = &uid
	}
	if tid, err := uuid.Parse(claims.TenantID); err == nil {
		actor.TenantID = tid
	}
	return actor
}

// writeServiceError maps typed service errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var insufficient *service.InsufficientStockError
	var invalid *service.InvalidReferenceError
	var mismatch *service.TenantMismatchError
	var invariant *service.InvariantViolationError

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, apierror.New(insufficient.Error()))
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, apierror.New(invalid.Error()))
	case errors.As(err, &mismatch):
		c.JSON(http.StatusForbidden, apierror.New(mismatch.Error()))
	case errors.As(err, &invariant):
		// Internal inconsistency — don't leak the arithmetic to clients.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
