package update_appointment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBooking/internal/service/scheduling"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

const flow = "update"

// UseCase use case для редактирования записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	serviceRepo     ServiceRepository
	resolver        EndTimeResolver
	detector        OverlapDetector
	locker          TrackLocker
	notifier        Notifier
	metrics         MetricsRecorder
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	resolver EndTimeResolver,
	detector OverlapDetector,
	locker TrackLocker,
	notifier Notifier,
	metrics MetricsRecorder,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		resolver:        resolver,
		detector:        detector,
		locker:          locker,
		notifier:        notifier,
		metrics:         metrics,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case редактирования записи
//
// Протокол тот же, что при создании: пересечения останавливают сохранение до
// повторного запроса с OverlapConfirmed=true. Сама запись в поиске не участвует
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateAppointment: id=%s, overlapConfirmed=%t", req.ID, req.OverlapConfirmed)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем запись, чтобы знать дорожку для блокировки
	current, err := uc.load(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Новые услуги должны существовать
	var serviceIDs []int64
	if req.ServiceIDs != nil {
		serviceIDs = scheduling.UniqueIDs(*req.ServiceIDs)
		if err := ensureServicesExist(ctx, uc.serviceRepo, serviceIDs); err != nil {
			uc.logger.Warn("UpdateAppointment: id=%s: %v", req.ID, err)
			return nil, err
		}
	}

	// 4. Блокируем целевую дорожку
	track := current.Track
	if req.Track != nil {
		track = domain.Track(*req.Track)
	}

	release, err := uc.locker.Acquire(ctx, track)
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			uc.logger.Warn("UpdateAppointment: track=%s is busy: %v", track, err)
			return nil, ErrTrackBusy
		}
		uc.logger.Error("UpdateAppointment: failed to lock track=%s: %v", track, err)
		return nil, fmt.Errorf("%w: failed to lock track: %w", ErrInternal, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("UpdateAppointment: failed to release lock for track=%s: %v", track, err)
		}
	}()

	var (
		updated   *domain.Appointment
		changes   changeSet
		conflicts []domain.OverlapSummary
	)

	// 5. Перечитываем запись под блокировкой строки, применяем изменения и сохраняем
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		updated, conflicts, changes = nil, nil, changeSet{}

		fresh, err := uc.appointmentRepo.GetByID(txCtx, req.ID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to reload appointment: %w", ErrInternal, err)
		}
		if err := ensureEditable(fresh); err != nil {
			return err
		}

		// 5.1. Применяем изменения
		candidate, merged, err := uc.merge(fresh, req, serviceIDs)
		if err != nil {
			return err
		}
		changes = merged

		// 5.2. Пересчитываем время окончания
		if err := uc.resolveEnd(txCtx, fresh, candidate, req, changes); err != nil {
			return err
		}

		// 5.3. Ищем пересечения, исключая саму запись
		if !req.OverlapConfirmed && candidate.Status != domain.StatusCancelled {
			start, end := candidate.Interval()
			found, err := uc.detector.FindOverlaps(txCtx, candidate.Track, start, end, &candidate.ID)
			if err != nil {
				return fmt.Errorf("%w: failed to find overlaps: %w", ErrInternal, err)
			}
			if len(found) > 0 {
				conflicts = found
				return nil
			}
		}

		// 5.4. Сохраняем
		if err := uc.appointmentRepo.Update(txCtx, candidate); err != nil {
			return fmt.Errorf("%w: failed to update appointment: %w", ErrInternal, err)
		}
		if changes.servicesChanged {
			if err := uc.appointmentRepo.ReplaceServices(txCtx, candidate.ID, candidate.ServiceIDs); err != nil {
				return fmt.Errorf("%w: failed to replace services: %w", ErrInternal, err)
			}
		}
		if changes.productsChanged {
			if err := uc.appointmentRepo.ReplaceProducts(txCtx, candidate.ID, candidate.Products); err != nil {
				return fmt.Errorf("%w: failed to replace products: %w", ErrInternal, err)
			}
		}

		updated = candidate
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound),
			errors.Is(err, ErrAppointmentCancelled),
			errors.Is(err, ErrInvalidTransition),
			errors.Is(err, ErrInvalidInput):
			uc.logger.Warn("UpdateAppointment: id=%s: %v", req.ID, err)
			return nil, err
		case errors.Is(err, txmanager.ErrSerialization):
			uc.logger.Warn("UpdateAppointment: concurrent write for id=%s: %v", req.ID, err)
			return nil, ErrTrackBusy
		case errors.Is(err, ErrInternal):
			uc.logger.Error("UpdateAppointment: id=%s: %v", req.ID, err)
			return nil, err
		default:
			uc.logger.Error("UpdateAppointment: id=%s: %v", req.ID, err)
			return nil, fmt.Errorf("%w: %w", ErrInternal, err)
		}
	}

	// 6. Пересечения найдены - останавливаемся до подтверждения
	if updated == nil {
		uc.logger.Warn("UpdateAppointment: halted, %d overlapping appointment(s) for id=%s", len(conflicts), req.ID)
		uc.metrics.IncOverlapHalt(flow)
		return &Response{Conflicts: conflicts}, nil
	}

	uc.logger.Info("UpdateAppointment: successfully updated appointment id=%s, status=%s, trackChanged=%t, startChanged=%t",
		updated.ID, updated.Status, changes.trackChanged, changes.startChanged)

	// 7. Смена статуса уведомляет клиента
	if changes.statusChanged {
		switch updated.Status {
		case domain.StatusConfirmed:
			uc.notifier.NotifyConfirmed(ctx, updated)
		case domain.StatusCancelled:
			uc.notifier.NotifyCancelled(ctx, updated)
		}
	}

	return &Response{Appointment: updated}, nil
}

// load получает запись вне транзакции и проверяет, что её можно редактировать
func (uc *UseCase) load(ctx context.Context, req *Request) (*domain.Appointment, error) {
	current, err := uc.appointmentRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("UpdateAppointment: appointment id=%s not found", req.ID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("UpdateAppointment: failed to get appointment id=%s: %v", req.ID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
	}

	if err := ensureEditable(current); err != nil {
		uc.logger.Warn("UpdateAppointment: id=%s: %v", req.ID, err)
		return nil, err
	}

	return current, nil
}

func ensureEditable(a *domain.Appointment) error {
	if a.IsCancelled() {
		return ErrAppointmentCancelled
	}
	if !a.CanBeUpdated() {
		return fmt.Errorf("%w: appointment in status %s cannot be edited", ErrInvalidTransition, a.Status)
	}
	return nil
}

// merge применяет частичные изменения к копии записи
func (uc *UseCase) merge(current *domain.Appointment, req *Request, serviceIDs []int64) (*domain.Appointment, changeSet, error) {
	candidate := *current
	var changes changeSet

	if req.CustomerName != nil {
		candidate.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		candidate.CustomerEmail = *req.CustomerEmail
	}
	if req.CustomerPhone != nil {
		candidate.CustomerPhone = *req.CustomerPhone
	}
	if req.Remarks != nil {
		candidate.Remarks = req.Remarks
	}

	if req.Track != nil && domain.Track(*req.Track) != current.Track {
		candidate.Track = domain.Track(*req.Track)
		changes.trackChanged = true
	}

	if req.StartTime != nil && !req.StartTime.Equal(current.StartTime) {
		candidate.StartTime = *req.StartTime
		changes.startChanged = true
	}

	if req.ServiceIDs != nil {
		if !sameSet(current.ServiceIDs, serviceIDs) {
			changes.servicesChanged = true
		}
		candidate.ServiceIDs = serviceIDs
	}

	if req.Products != nil {
		products := make([]domain.ProductItem, 0, len(*req.Products))
		for _, p := range *req.Products {
			products = append(products, domain.ProductItem{ProductID: p.ProductID, Quantity: p.Quantity})
		}
		candidate.Products = products
		changes.productsChanged = true
	}

	if req.Status != nil {
		next := domain.AppointmentStatus(*req.Status)
		if next != current.Status {
			if !current.Status.CanTransitionTo(next) {
				return nil, changes, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
			}
			candidate.Status = next
			changes.statusChanged = true

			if next == domain.StatusCancelled {
				candidate.CancelledAt = ptr.Ptr(uc.timeProvider.Now())
				candidate.CancellationReason = req.CancellationReason
			}
		}
	}

	return &candidate, changes, nil
}

// resolveEnd определяет время окончания отредактированной записи
//
// Ручное окончание из запроса сохраняется как есть. Если ручное окончание было
// задано раньше и не сброшено, оно остаётся. Автоматическое окончание
// пересчитывается при смене начала или услуг, при сбросе ручного и когда его нет
func (uc *UseCase) resolveEnd(ctx context.Context, current, candidate *domain.Appointment, req *Request, changes changeSet) error {
	var explicitEnd *time.Time

	switch {
	case req.EndTime != nil:
		explicitEnd = req.EndTime
		candidate.EndTimeManual = true
	case req.ClearEndTime:
		candidate.EndTimeManual = false
	case current.EndTimeManual && current.EndTime != nil:
		explicitEnd = current.EndTime
	default:
		if current.EndTime != nil && !changes.startChanged && !changes.servicesChanged {
			return nil
		}
		candidate.EndTimeManual = false
	}

	end, err := uc.resolver.ResolveEndTime(ctx, candidate.StartTime, candidate.ServiceIDs, explicitEnd)
	if err != nil {
		if errors.Is(err, scheduling.ErrEndBeforeStart) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return fmt.Errorf("%w: failed to resolve end time: %w", ErrInternal, err)
	}

	candidate.EndTime = &end
	return nil
}

func sameSet(a, b []int64) bool {
	x := scheduling.UniqueIDs(a)
	y := scheduling.UniqueIDs(b)
	if len(x) != len(y) {
		return false
	}
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
