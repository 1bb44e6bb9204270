package sync_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBooking/internal/service/scheduling"
)

// UseCase use case синхронизации услуг записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	serviceRepo     ServiceRepository
	resolver        EndTimeResolver
	detector        OverlapDetector
	txManager       TransactionManager
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	resolver EndTimeResolver,
	detector OverlapDetector,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		resolver:        resolver,
		detector:        detector,
		txManager:       txManager,
		logger:          logger,
	}
}

// Execute заменяет услуги записи и безусловно пересчитывает время окончания
// Ручное окончание сохраняется. Пересечения возвращаются как предупреждения, без остановки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SyncServices: appointment=%s, services=%v", req.AppointmentID, req.ServiceIDs)

	// 1. Валидация входных данных
	if req.AppointmentID == uuid.Nil {
		return nil, fmt.Errorf("%w: appointment id is required", ErrInvalidInput)
	}
	for _, id := range req.ServiceIDs {
		if id <= 0 {
			uc.logger.Warn("SyncServices: invalid service id=%d", id)
			return nil, fmt.Errorf("%w: invalid service id=%d", ErrInvalidInput, id)
		}
	}
	serviceIDs := scheduling.UniqueIDs(req.ServiceIDs)

	// 2. Проверяем, что услуги существуют
	if err := uc.ensureServicesExist(ctx, serviceIDs); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			uc.logger.Warn("SyncServices: %v", err)
		} else {
			uc.logger.Error("SyncServices: %v", err)
		}
		return nil, err
	}

	var appointment *domain.Appointment

	// 3. Заменяем услуги и сохраняем новое время окончания одной транзакцией
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
		}
		if a.IsCancelled() {
			return ErrAppointmentCancelled
		}

		if err := uc.appointmentRepo.ReplaceServices(txCtx, a.ID, serviceIDs); err != nil {
			return fmt.Errorf("%w: failed to replace services: %w", ErrInternal, err)
		}

		var explicitEnd *time.Time
		if a.EndTimeManual {
			explicitEnd = a.EndTime
		}

		end, err := uc.resolver.ResolveEndTime(txCtx, a.StartTime, serviceIDs, explicitEnd)
		if err != nil {
			return fmt.Errorf("%w: failed to resolve end time: %w", ErrInternal, err)
		}

		manual := a.EndTimeManual && explicitEnd != nil
		if err := uc.appointmentRepo.UpdateEndTime(txCtx, a.ID, end, manual); err != nil {
			return fmt.Errorf("%w: failed to update end time: %w", ErrInternal, err)
		}

		a.ServiceIDs = serviceIDs
		a.EndTime = &end
		a.EndTimeManual = manual
		appointment = a
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) || errors.Is(err, ErrAppointmentCancelled) {
			uc.logger.Warn("SyncServices: appointment=%s: %v", req.AppointmentID, err)
			return nil, err
		}
		uc.logger.Error("SyncServices: appointment=%s: %v", req.AppointmentID, err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	resp := &Response{
		AppointmentID: appointment.ID,
		ServiceIDs:    appointment.ServiceIDs,
		EndTime:       *appointment.EndTime,
		EndTimeManual: appointment.EndTimeManual,
		Warnings:      []domain.OverlapSummary{},
	}

	// 4. Пересечения только как предупреждение, ошибка поиска не отменяет сохранённое
	start, end := appointment.Interval()
	warnings, err := uc.detector.FindOverlaps(ctx, appointment.Track, start, end, &appointment.ID)
	if err != nil {
		uc.logger.Error("SyncServices: failed to find overlaps for appointment=%s: %v", appointment.ID, err)
	} else if len(warnings) > 0 {
		uc.logger.Warn("SyncServices: appointment=%s now overlaps %d appointment(s)", appointment.ID, len(warnings))
		resp.Warnings = warnings
	}

	uc.logger.Info("SyncServices: appointment=%s end=%s manual=%t",
		appointment.ID, resp.EndTime.Format("2006-01-02T15:04"), resp.EndTimeManual)

	return resp, nil
}

// ensureServicesExist проверяет, что все услуги существуют и активны
func (uc *UseCase) ensureServicesExist(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	services, err := uc.serviceRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: failed to get services: %w", ErrInternal, err)
	}

	active := make(map[int64]struct{}, len(services))
	for _, s := range services {
		if s.IsActive {
			active[s.ID] = struct{}{}
		}
	}

	for _, id := range ids {
		if _, ok := active[id]; !ok {
			return fmt.Errorf("%w: id=%d", ErrServiceNotFound, id)
		}
	}

	return nil
}
