package domain

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/service"
)

var (
	ErrMovieNotFound       = service.NotFound("Movie does not exist")
	ErrAuditoriumNotFound  = service.NotFound("Auditorium does not exist")
	ErrScheduleNotFound    = service.NotFound("Schedule does not exist")
	ErrUserNotFound        = service.NotFound("User does not exist")
	ErrTicketNotFound      = service.NotFound("Ticket does not exist")
	ErrSuperTicketNotFound = service.NotFound("Super ticket does not exist")
	ErrNoSchedulesFound    = service.NotFound("No schedules found between the specified dates")

	ErrInvalidCapacity      = service.Validation("Capacity must be between 15 and 30")
	ErrScheduleInPast       = service.Validation("Schedule date cannot be in the past")
	ErrOutsideBusinessHours = service.Validation("Schedules can only be between 9am and 8pm from Monday to Friday")
	ErrInvalidDuration      = service.Validation("Duration must be greater than 0")
	ErrInvalidAmount        = service.Validation("Amount must be greater than 0")
	ErrInvalidPrice         = service.Validation("Price must be greater than 0")
	ErrInvalidUses          = service.Validation("Uses remaining cannot be negative")
	ErrInvalidRole          = service.Validation("Role must be admin or client")
	ErrNoSchedulesBooked    = service.Validation("No schedules booked")

	ErrOverlappingSchedules  = service.Constraint("Overlapping schedules are not allowed")
	ErrMinimumAuditoriums    = service.Constraint("At least 10 auditoriums must be present")
	ErrAuditoriumNameInUse   = service.Constraint("Auditorium name already in use")
	ErrMovieTitleInUse       = service.Constraint("Movie title already in use")
	ErrEmailInUse            = service.Constraint("Email already in use")
	ErrBookingLimitReached   = service.Constraint("Cannot book more than 10 schedules")
	ErrNoUsesRemaining       = service.Constraint("No uses remaining")
	ErrScheduleAlreadyBooked = service.Constraint("Schedule already booked")
	ErrDuplicateSchedules    = service.Constraint("Used schedules cannot contain duplicates")

	ErrCapacityReached     = service.NewError(service.ErrCapacityExceeded, "Auditorium capacity has been reached")
	ErrScheduleFullyBooked = service.NewError(service.ErrCapacityExceeded, "Schedule is fully booked")
	ErrInsufficientBalance = service.NewError(service.ErrInsufficientFunds, "Insufficient balance")

	ErrInvalidCredentials   = service.NewError(service.ErrUnauthorized, "Invalid email or password")
	ErrTooManyLoginAttempts = service.NewError(service.ErrUnauthorized, "Too many login attempts, try again later")
	ErrTokenRevoked         = service.NewError(service.ErrUnauthorized, "Token has been revoked")
)

// notFound replaces gorm's missing-row error with the domain error for that entity.
func notFound(err error, replacement error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return replacement
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
