package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

const (
	MinCapacity    = 15
	MaxCapacity    = 30
	MinAuditoriums = 10

	// CleaningBuffer is added to a movie's running time when it occupies a schedule slot.
	CleaningBuffer = 30 * time.Minute
	// EntryWindowMinutes is how far either side of the start time a ticket is accepted.
	EntryWindowMinutes = 15

	OpeningHour = 9
	ClosingHour = 20

	SuperTicketUses         = 10
	SuperTicketMaxSchedules = 10
)

var (
	SuperTicketPrice      = decimal.NewFromInt(100)
	SuperTicketMinBalance = decimal.NewFromInt(100)
)

// occupiedUntil is when a schedule starting at start releases its auditorium.
func occupiedUntil(start time.Time, durationMinutes int) time.Time {
	return start.Add(time.Duration(durationMinutes)*time.Minute + CleaningBuffer)
}

// withinEntryWindow rounds the offset from the start time to whole minutes.
func withinEntryWindow(now, start time.Time) bool {
	diff := math.Round(now.Sub(start).Minutes())
	return diff >= -EntryWindowMinutes && diff <= EntryWindowMinutes
}

func validCapacity(capacity int) bool {
	return capacity >= MinCapacity && capacity <= MaxCapacity
}

type txRepo[R any] interface {
	WithTx(tx *gorm.DB) R
}

// withTx binds repo to tx, or returns it unchanged outside a transaction.
func withTx[R txRepo[R]](repo R, tx *gorm.DB) R {
	if tx == nil {
		return repo
	}
	return repo.WithTx(tx)
}

// apply copies a partial-update field into dst. Null is rejected.
func apply[T any](dst *T, field util.Optional[T], name string) error {
	if !field.Set {
		return nil
	}
	if field.Null {
		return service.Validation(name + " cannot be null")
	}
	*dst = field.Value
	return nil
}

// applyClearable is apply for text fields, where null clears the value.
func applyClearable(dst *string, field util.Optional[string]) {
	if field.Set {
		*dst = field.Value
	}
}
