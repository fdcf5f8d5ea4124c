package handler

import (
	"errors"
	"net/http"

	"armory/internal/apierror"
	"armory/internal/middleware"
	"armory/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

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

// principal builds the authorization principal from the request's JWT claims.
func principal(c *gin.Context) service.Principal {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Principal{}
	}
	uid, _ := uuid.Parse(claims.UserID)
	return service.Principal{ID: uid, Role: claims.Role, BaseCode: claims.BaseCode}
}

// respondError maps domain errors onto HTTP status codes and the error
// envelope. Anything untyped becomes a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var (
		validation   *service.ValidationError
		notFound     *service.NotFoundError
		conflict     *service.ConflictError
		insufficient *service.InsufficientStockError
		forbidden    *service.ForbiddenError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(validation.Fields))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

// pathUUID parses a :id path parameter, writing the 400 itself on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
