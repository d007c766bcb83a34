package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leetcurve/backend/internal/domain"
)

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidSnapshot):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProblemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProblemExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// failure converts err into a failed Result. Storage and unknown errors
// are not echoed to the caller.
func failure(err error) domain.Result {
	if statusFor(err) == http.StatusInternalServerError {
		return domain.Result{Success: false, Message: "Internal server error"}
	}
	return domain.Result{Success: false, Message: err.Error()}
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), failure(err))
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, domain.Result{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, domain.Result{Success: true, Message: message})
}
