package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Email          string          `gorm:"size:255;not null;uniqueIndex" json:"email"`
	HashedPassword string          `gorm:"not null" json:"-"`
	Role           UserRole        `gorm:"type:varchar(16);not null" json:"role"`
	Balance        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Auditorium struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	Name               string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description        string `gorm:"type:text" json:"description"`
	ImageURL           string `gorm:"size:255" json:"imageUrl"`
	Type               string `gorm:"size:32" json:"type"`
	Capacity           int    `gorm:"not null" json:"capacity"`
	HandicapAccessible bool   `gorm:"not null" json:"handicapAccessible"`
	Maintenance        bool   `gorm:"not null" json:"maintenance"`
}

type Movie struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:100;not null;uniqueIndex" json:"title"`
	Slug        string `gorm:"size:120;not null;index" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:255" json:"imageUrl"`
	// Duration is the running time in minutes.
	Duration int `gorm:"not null" json:"duration"`
}

type Schedule struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StartAt      time.Time `gorm:"not null;index" json:"date"`
	EndAt        time.Time `gorm:"not null;index" json:"endAt"`
	MovieID      uint      `gorm:"not null;index" json:"movieId"`
	AuditoriumID uint      `gorm:"not null;index" json:"auditoriumId"`
}

type Ticket struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ScheduleID uint            `gorm:"index" json:"scheduleId"`
	Used       bool            `gorm:"not null" json:"used"`
	UserID     uint            `gorm:"not null;index" json:"userId"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type SuperTicket struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	UsesRemaining int             `gorm:"not null" json:"usesRemaining"`
	UserID        uint            `gorm:"not null;index" json:"userId"`
	CreatedAt     time.Time       `json:"createdAt"`

	Bookings []SuperTicketBooking `gorm:"foreignKey:SuperTicketID" json:"-"`
}

// UsedSchedules returns the booked schedule ids in booking order.
func (t *SuperTicket) UsedSchedules() []uint {
	ids := make([]uint, 0, len(t.Bookings))
	for _, b := range t.Bookings {
		ids = append(ids, b.ScheduleID)
	}
	return ids
}

func (t *SuperTicket) HasBooked(scheduleID uint) bool {
	for _, b := range t.Bookings {
		if b.ScheduleID == scheduleID {
			return true
		}
	}
	return false
}

// SuperTicketBooking is one entry of a super ticket's usedSchedules.
type SuperTicketBooking struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SuperTicketID uint      `gorm:"not null;uniqueIndex:idx_super_ticket_schedule" json:"superTicketId"`
	ScheduleID    uint      `gorm:"not null;uniqueIndex:idx_super_ticket_schedule;index" json:"scheduleId"`
	Position      int       `gorm:"not null" json:"position"`
	CreatedAt     time.Time `json:"createdAt"`
}

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionPurchase TransactionType = "PURCHASE"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdraw, TransactionPurchase:
		return true
	}
	return false
}

type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"userId"`
	Type      TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"date"`
}

// RevokedToken is a logged out JWT, kept until the token would have expired anyway.
type RevokedToken struct {
	TokenHash string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// All lists every persisted entity, in migration order.
func All() []any {
	return []any{
		&User{},
		&Auditorium{},
		&Movie{},
		&Schedule{},
		&Ticket{},
		&SuperTicket{},
		&SuperTicketBooking{},
		&Transaction{},
		&RevokedToken{},
	}
}
