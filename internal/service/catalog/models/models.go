package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// ServiceResponse услуга салона
type ServiceResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	DurationMinutes int       `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ServiceListResponse список услуг
type ServiceListResponse struct {
	Services []*ServiceResponse `json:"services"`
	Total    int                `json:"total"`
}

// FromDomainService конвертирует domain модель в response
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}
	return &ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromDomainServiceList конвертирует список domain моделей в response
func FromDomainServiceList(services []*domain.Service) *ServiceListResponse {
	result := make([]*ServiceResponse, 0, len(services))
	for _, s := range services {
		result = append(result, FromDomainService(s))
	}
	return &ServiceListResponse{Services: result, Total: len(result)}
}
