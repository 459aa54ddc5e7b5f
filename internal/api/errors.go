package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spckit/internal/errors"
)

var statusByCode = map[string]int{
	errors.CodeInvalidInput:               http.StatusBadRequest,
	errors.CodeValidationError:            http.StatusBadRequest,
	errors.CodeUnknownColumn:              http.StatusBadRequest,
	errors.CodeEmptyTable:                 http.StatusUnprocessableEntity,
	errors.CodeEmptySeries:                http.StatusUnprocessableEntity,
	errors.CodeInsufficientData:           http.StatusUnprocessableEntity,
	errors.CodeDefectsExceedOpportunities: http.StatusUnprocessableEntity,
	errors.CodeOutOfRangeResult:           http.StatusUnprocessableEntity,
	errors.CodeNotFound:                   http.StatusNotFound,
	errors.CodeConflict:                   http.StatusConflict,
}

// statusFor maps the code of err to an HTTP status; unknown codes are 500.
func statusFor(err error) int {
	if status, ok := statusByCode[errors.GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": {"code", "message"}}. Internal
// errors are attached to the context for the logger, not echoed.
func respondError(c *gin.Context, err error) {
	respondStatus(c, statusFor(err), err)
}

func respondStatus(c *gin.Context, status int, err error) {
	code := errors.GetCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		code = errors.CodeInternalError
		message = "internal error"
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// bindError reports a malformed request body or query.
func bindError(c *gin.Context, err error) {
	respondError(c, errors.InvalidInput(err.Error()))
}
