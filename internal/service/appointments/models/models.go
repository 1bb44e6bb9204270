package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidTrack возвращается при некорректной дорожке
	ErrInvalidTrack = errors.New("invalid track")
)

// Request модели

// ListRequest запрос на получение списка записей
type ListRequest struct {
	Track            *string    // Фильтр по дорожке (опционально)
	Status           *string    // Фильтр по статусу (опционально)
	From             *time.Time // Начало периода (опционально)
	To               *time.Time // Конец периода, не включительно (опционально)
	IncludeCancelled bool       // Включить отменённые записи
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		From:             r.From,
		To:               r.To,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Track != nil {
		track := domain.Track(*r.Track)
		if !track.IsValid() {
			return filter, ErrInvalidTrack
		}
		filter.Track = &track
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ProductResponse товар в записи
type ProductResponse struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID                 string            `json:"id"`
	UserID             *int64            `json:"userId,omitempty"`
	CustomerName       string            `json:"customerName"`
	CustomerEmail      string            `json:"customerEmail"`
	CustomerPhone      string            `json:"customerPhone"`
	Track              string            `json:"track"`
	StartTime          time.Time         `json:"startTime"`
	EndTime            *time.Time        `json:"endTime"`
	EndTimeManual      bool              `json:"endTimeManual"`
	Remarks            *string           `json:"remarks,omitempty"`
	Status             string            `json:"status"`
	CancellationReason *string           `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelledAt,omitempty"`
	ServiceIDs         []int64           `json:"serviceIds"`
	Products           []ProductResponse `json:"products"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	Total        int                    `json:"total"`
}

// ConflictResponse пересекающаяся запись
type ConflictResponse struct {
	AppointmentID string    `json:"appointmentId"`
	CustomerName  string    `json:"customerName"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
}

// ConfirmResponse ответ на подтверждение записи
// Warnings - пересечения, которые не мешают подтверждению
type ConfirmResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
	Warnings    []ConflictResponse   `json:"warnings"`
}

// Конвертеры

// FromDomainAppointment конвертирует domain модель в response
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	serviceIDs := a.ServiceIDs
	if serviceIDs == nil {
		serviceIDs = []int64{}
	}

	products := make([]ProductResponse, 0, len(a.Products))
	for _, p := range a.Products {
		products = append(products, ProductResponse{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	return &AppointmentResponse{
		ID:                 a.ID.String(),
		UserID:             a.UserID,
		CustomerName:       a.CustomerName,
		CustomerEmail:      a.CustomerEmail,
		CustomerPhone:      a.CustomerPhone,
		Track:              string(a.Track),
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		EndTimeManual:      a.EndTimeManual,
		Remarks:            a.Remarks,
		Status:             string(a.Status),
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		ServiceIDs:         serviceIDs,
		Products:           products,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в response
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	responses := make([]*AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		responses = append(responses, FromDomainAppointment(a))
	}

	return &AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}
}

// FromDomainConflicts конвертирует пересечения в response
func FromDomainConflicts(conflicts []domain.OverlapSummary) []ConflictResponse {
	result := make([]ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		result = append(result, ConflictResponse{
			AppointmentID: c.AppointmentID.String(),
			CustomerName:  c.CustomerName,
			StartTime:     c.StartTime,
			EndTime:       c.EndTime,
		})
	}
	return result
}

// ToDomainStatus конвертирует строку в статус записи
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
