package mq

import (
	"time"

	"github.com/shopspring/decimal"
)

// Queue names and message definitions

// immediate queue of booking events
// every committed purchase or super ticket booking is announced here
const (
	BookingEventsImmediateQueue = "booking.events.immediate"
)

type BookingEventType string

const (
	EventTicketPurchased      BookingEventType = "ticket.purchased"
	EventSuperTicketPurchased BookingEventType = "superticket.purchased"
	EventSuperTicketBooked    BookingEventType = "superticket.booked"
)

type BookingEventMessage struct {
	Type          BookingEventType `json:"type"`
	UserID        uint             `json:"user_id"`
	TicketID      uint             `json:"ticket_id,omitempty"`
	SuperTicketID uint             `json:"super_ticket_id,omitempty"`
	ScheduleID    uint             `json:"schedule_id,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// delay queue of no-show checks
// a purchased ticket is checked once its entry window has closed
const (
	TicketNoShowDelayQueue     = "ticket.noshow.delay"
	TicketNoShowImmediateQueue = "ticket.noshow.immediate"
	TicketNoShowExchange       = "ticket.noshow.exchange"
	TicketNoShowRoutingKey     = "ticket.noshow"
)

type TicketNoShowDelayMessage struct {
	TicketID   uint `json:"ticket_id"`
	ScheduleID uint `json:"schedule_id"`
}
