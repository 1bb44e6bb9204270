package catalog

import (
	"context"
	"errors"
	"fmt"

	salonserviceRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salonservice"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog/models"
)

// Service каталог услуг салона (только чтение)
type Service struct {
	serviceRepo ServiceRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(serviceRepo ServiceRepository, logger Logger) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// List возвращает активные услуги
func (s *Service) List(ctx context.Context) (*models.ServiceListResponse, error) {
	services, err := s.serviceRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d active services", len(services))
	return models.FromDomainServiceList(services), nil
}

// Get возвращает активную услугу по ID
func (s *Service) Get(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, salonserviceRepo.ErrServiceNotFound) {
			s.logger.Warn("Get: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Get: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	if !service.IsActive {
		s.logger.Warn("Get: service id=%d is inactive", id)
		return nil, ErrServiceNotFound
	}

	return models.FromDomainService(service), nil
}
