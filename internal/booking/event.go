// Package booking publishes confirmed phone bookings for the booking API.
package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
)

const EventConfirmed = "booking.confirmed"

// Event is the message consumed by the booking API. Date and time are the
// caller's words ("demain", "14h"); the consumer resolves them against its
// calendar.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	CallSid     string    `json:"call_sid"`
	CallerPhone string    `json:"caller_phone,omitempty"`
	ClientName  string    `json:"client_name,omitempty"`
	Salon       string    `json:"salon,omitempty"`
	Service     string    `json:"service"`
	Price       string    `json:"price,omitempty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Barber      string    `json:"barber"`
	Urgent      bool      `json:"urgent,omitempty"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// NewEvent builds the confirmation event for a booked call.
func NewEvent(rec callrecord.Record) Event {
	name := rec.Known.ClientName
	if rec.CallerName != "" {
		name = rec.CallerName
	}
	confirmed := rec.EndedAt
	if confirmed.IsZero() {
		confirmed = time.Now().UTC()
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        EventConfirmed,
		CallSid:     rec.CallSid,
		CallerPhone: rec.CallerPhone,
		ClientName:  name,
		Salon:       rec.Salon,
		Service:     rec.Known.Service,
		Price:       rec.Known.Price,
		Date:        rec.Known.Date,
		Time:        rec.Known.Time,
		Barber:      rec.Known.Barber,
		Urgent:      rec.Known.Urgent,
		ConfirmedAt: confirmed,
	}
}
