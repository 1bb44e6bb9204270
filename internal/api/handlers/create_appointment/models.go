package create_appointment

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	createAppointment "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	CustomerName     string           `json:"customerName"`
	CustomerEmail    string           `json:"customerEmail"`
	CustomerPhone    string           `json:"customerPhone"`
	Track            string           `json:"track"`
	StartTime        string           `json:"startTime"`         // RFC 3339 или "2025-06-02T10:00" в зоне салона
	EndTime          *string          `json:"endTime,omitempty"` // ручное окончание
	ServiceIDs       []int64          `json:"serviceIds"`
	Products         []ProductRequest `json:"products,omitempty"`
	Remarks          *string          `json:"remarks,omitempty"`
	OverlapConfirmed bool             `json:"overlapConfirmed"`
}

// ProductRequest товар в записи
type ProductRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(userID *int64, loc *time.Location) (*createAppointment.Request, error) {
	startTime, err := handlers.ParseTimestamp(r.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	endTime, err := handlers.ParseOptionalTimestamp(r.EndTime, loc)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	products := make([]createAppointment.ProductItem, 0, len(r.Products))
	for _, p := range r.Products {
		products = append(products, createAppointment.ProductItem{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	return &createAppointment.Request{
		UserID:           userID,
		CustomerName:     r.CustomerName,
		CustomerEmail:    r.CustomerEmail,
		CustomerPhone:    r.CustomerPhone,
		Track:            r.Track,
		StartTime:        startTime,
		EndTime:          endTime,
		ServiceIDs:       r.ServiceIDs,
		Products:         products,
		Remarks:          r.Remarks,
		OverlapConfirmed: r.OverlapConfirmed,
	}, nil
}
