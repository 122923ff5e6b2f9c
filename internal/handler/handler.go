package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func respondWithError(ctx *gin.Context, statusCode int, message string) {
	ctx.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrTooManyLoginAttempts) {
		return http.StatusTooManyRequests
	}
	switch service.Kind(err) {
	case service.ErrNotFound:
		return http.StatusNotFound
	case service.ErrValidation:
		return http.StatusBadRequest
	case service.ErrConstraintViolation, service.ErrCapacityExceeded:
		return http.StatusConflict
	case service.ErrInsufficientFunds:
		return http.StatusPaymentRequired
	case service.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes a domain error with its own message. Anything
// unexpected is recorded on the context for the request logger and hidden
// behind a generic message.
func respondServiceError(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ctx.Error(err)
		respondWithError(ctx, status, "Something went wrong, please try again later")
		return
	}
	respondWithError(ctx, status, err.Error())
}

func respondBindError(ctx *gin.Context, err error) {
	respondWithError(ctx, http.StatusBadRequest, err.Error())
}

func idParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondWithError(ctx, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

const dateLayout = "2006-01-02"

// parseDate accepts RFC 3339 timestamps and plain dates. A plain date is
// midnight in location, or the last instant of that day when endOfDay is set,
// so that date ranges include their whole last day.
func parseDate(value string, location *time.Location, endOfDay bool) (time.Time, error) {
	if strings.Contains(value, "T") {
		return time.Parse(time.RFC3339, value)
	}
	day, err := time.ParseInLocation(dateLayout, value, location)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

func dateParam(ctx *gin.Context, name string, location *time.Location, endOfDay bool) (time.Time, bool) {
	t, err := parseDate(ctx.Param(name), location, endOfDay)
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid date format")
		return time.Time{}, false
	}
	return t, true
}

func bindPagination(ctx *gin.Context) (model.Pagination, bool) {
	var p model.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		respondBindError(ctx, err)
		return p, false
	}
	return p.Normalize(), true
}
