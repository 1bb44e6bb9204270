package notifier

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// EventType тип события о записи
type EventType string

const (
	EventCreated   EventType = "appointment.created"
	EventConfirmed EventType = "appointment.confirmed"
	EventCancelled EventType = "appointment.cancelled"
)

// Event событие, отправляемое в систему уведомлений
type Event struct {
	Type               EventType `json:"type"`
	AppointmentID      string    `json:"appointmentId"`
	CustomerName       string    `json:"customerName"`
	CustomerEmail      string    `json:"customerEmail"`
	CustomerPhone      string    `json:"customerPhone"`
	Track              string    `json:"track"`
	Status             string    `json:"status"`
	StartTime          string    `json:"startTime"`
	EndTime            *string   `json:"endTime,omitempty"`
	CancellationReason *string   `json:"cancellationReason,omitempty"`
	OccurredAt         string    `json:"occurredAt"`
}

// NewEvent собирает событие из записи
func NewEvent(eventType EventType, a *domain.Appointment, occurredAt time.Time) Event {
	event := Event{
		Type:               eventType,
		AppointmentID:      a.ID.String(),
		CustomerName:       a.CustomerName,
		CustomerEmail:      a.CustomerEmail,
		CustomerPhone:      a.CustomerPhone,
		Track:              string(a.Track),
		Status:             string(a.Status),
		StartTime:          a.StartTime.Format(time.RFC3339),
		CancellationReason: a.CancellationReason,
		OccurredAt:         occurredAt.Format(time.RFC3339),
	}

	if a.EndTime != nil {
		end := a.EndTime.Format(time.RFC3339)
		event.EndTime = &end
	}

	return event
}
