package domain

import (
	"time"

	"github.com/google/uuid"
)

// Track дорожка мастеров, на которую ставится запись
// Дорожки независимы: записи на разных дорожках никогда не пересекаются
type Track string

const (
	TrackMale   Track = "male"
	TrackFemale Track = "female"
)

// IsValid returns true if the track is one of the known tracks
func (t Track) IsValid() bool {
	return t == TrackMale || t == TrackFemale
}

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// IsValid returns true if the status is known
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода статуса
// pending -> confirmed | cancelled, confirmed -> cancelled, из cancelled переходов нет
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// TransitionSources статусы, из которых допустим переход в next
func TransitionSources(next AppointmentStatus) []AppointmentStatus {
	var sources []AppointmentStatus
	for _, s := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
		if s.CanTransitionTo(next) {
			sources = append(sources, s)
		}
	}
	return sources
}

// ProductItem товар, прикреплённый к записи
type ProductItem struct {
	ProductID int64
	Quantity  int
}

// Appointment represents a salon appointment
type Appointment struct {
	ID     uuid.UUID
	UserID *int64 // владелец записи, nil для записи от администратора

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	Track     Track
	StartTime time.Time
	EndTime   *time.Time // nil пока не рассчитано

	// EndTimeManual время окончания задано вручную, автоматический пересчёт отключён
	EndTimeManual bool

	Remarks *string
	Status  AppointmentStatus

	CancellationReason *string
	CancelledAt        *time.Time

	ServiceIDs []int64
	Products   []ProductItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.CanTransitionTo(StatusCancelled)
}

// CanBeConfirmed returns true if the appointment can be confirmed
func (a *Appointment) CanBeConfirmed() bool {
	return a.Status.CanTransitionTo(StatusConfirmed)
}

// CanBeUpdated returns true if the appointment can be edited
func (a *Appointment) CanBeUpdated() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// Interval возвращает интервал записи
// Запись без времени окончания считается нулевой длины
func (a *Appointment) Interval() (time.Time, time.Time) {
	if a.EndTime == nil {
		return a.StartTime, a.StartTime
	}
	return a.StartTime, *a.EndTime
}

// AppointmentsFilter фильтр для списка записей
type AppointmentsFilter struct {
	Track            *Track             // nil - обе дорожки
	Status           *AppointmentStatus // nil - любой статус
	From             *time.Time         // начало записи >= From
	To               *time.Time         // начало записи < To
	IncludeCancelled bool               // учитывается только когда Status не задан
}
