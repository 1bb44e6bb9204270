package update_appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	updateAppointment "github.com/m04kA/SMC-SalonBooking/internal/usecase/update_appointment"
)

// UpdateAppointmentRequest HTTP request model
// Отсутствующее поле не меняется, serviceIds: [] очищает список услуг
type UpdateAppointmentRequest struct {
	CustomerName       *string           `json:"customerName,omitempty"`
	CustomerEmail      *string           `json:"customerEmail,omitempty"`
	CustomerPhone      *string           `json:"customerPhone,omitempty"`
	Track              *string           `json:"track,omitempty"`
	StartTime          *string           `json:"startTime,omitempty"`
	EndTime            *string           `json:"endTime,omitempty"`
	ClearEndTime       bool              `json:"clearEndTime"` // вернуть автоматический расчёт окончания
	ServiceIDs         *[]int64          `json:"serviceIds,omitempty"`
	Products           *[]ProductRequest `json:"products,omitempty"`
	Remarks            *string           `json:"remarks,omitempty"`
	Status             *string           `json:"status,omitempty"`
	CancellationReason *string           `json:"cancellationReason,omitempty"`
	OverlapConfirmed   bool              `json:"overlapConfirmed"`
}

// ProductRequest товар в записи
type ProductRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateAppointmentRequest) ToUseCaseRequest(id uuid.UUID, loc *time.Location) (*updateAppointment.Request, error) {
	startTime, err := handlers.ParseOptionalTimestamp(r.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	endTime, err := handlers.ParseOptionalTimestamp(r.EndTime, loc)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	var products *[]updateAppointment.ProductItem
	if r.Products != nil {
		items := make([]updateAppointment.ProductItem, 0, len(*r.Products))
		for _, p := range *r.Products {
			items = append(items, updateAppointment.ProductItem{ProductID: p.ProductID, Quantity: p.Quantity})
		}
		products = &items
	}

	return &updateAppointment.Request{
		ID:                 id,
		CustomerName:       r.CustomerName,
		CustomerEmail:      r.CustomerEmail,
		CustomerPhone:      r.CustomerPhone,
		Track:              r.Track,
		StartTime:          startTime,
		EndTime:            endTime,
		ClearEndTime:       r.ClearEndTime,
		ServiceIDs:         r.ServiceIDs,
		Products:           products,
		Remarks:            r.Remarks,
		Status:             r.Status,
		CancellationReason: r.CancellationReason,
		OverlapConfirmed:   r.OverlapConfirmed,
	}, nil
}
