package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/lock"
	"github.com/m04kA/SMC-SalonBooking/internal/service/scheduling"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

const flow = "create"

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	serviceRepo     ServiceRepository
	resolver        EndTimeResolver
	detector        OverlapDetector
	locker          TrackLocker
	notifier        Notifier
	metrics         MetricsRecorder
	txManager       TransactionManager
	logger          Logger
	newID           func() uuid.UUID
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
		logger:          logger,
		newID:           uuid.New,
	}
}

// Execute выполняет use case создания записи
//
// Двухшаговый протокол: если найдены пересечения и OverlapConfirmed=false,
// запись не сохраняется, а список пересечений возвращается вызывающему.
// Повторный запрос с OverlapConfirmed=true сохраняет запись без проверки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: track=%s, start=%s, services=%v, overlapConfirmed=%t",
		req.Track, req.StartTime.Format("2006-01-02T15:04"), req.ServiceIDs, req.OverlapConfirmed)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	track := domain.Track(req.Track)
	serviceIDs := scheduling.UniqueIDs(req.ServiceIDs)

	// 2. Проверяем, что прикрепляемые услуги существуют
	if err := ensureServicesExist(ctx, uc.serviceRepo, serviceIDs); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: %v", err)
		} else {
			uc.logger.Error("CreateAppointment: %v", err)
		}
		return nil, err
	}

	// 3. Вычисляем время окончания
	endTime, err := uc.resolver.ResolveEndTime(ctx, req.StartTime, serviceIDs, req.EndTime)
	if err != nil {
		if errors.Is(err, scheduling.ErrEndBeforeStart) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("CreateAppointment: failed to resolve end time: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve end time: %w", ErrInternal, err)
	}

	// 4. Блокируем дорожку на время проверки и сохранения
	release, err := uc.locker.Acquire(ctx, track)
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			uc.logger.Warn("CreateAppointment: track=%s is busy: %v", track, err)
			return nil, ErrTrackBusy
		}
		uc.logger.Error("CreateAppointment: failed to lock track=%s: %v", track, err)
		return nil, fmt.Errorf("%w: failed to lock track: %w", ErrInternal, err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("CreateAppointment: failed to release lock for track=%s: %v", track, err)
		}
	}()

	var (
		created   *domain.Appointment
		conflicts []domain.OverlapSummary
	)

	// 5. Проверка пересечений и сохранение в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, conflicts = nil, nil

		// 5.1. Ищем пересечения, если оператор их ещё не подтвердил
		if !req.OverlapConfirmed {
			found, err := uc.detector.FindOverlaps(txCtx, track, req.StartTime, endTime, nil)
			if err != nil {
				return fmt.Errorf("%w: failed to find overlaps: %w", ErrInternal, err)
			}
			if len(found) > 0 {
				conflicts = found
				return nil
			}
		}

		// 5.2. Сохраняем запись
		appointment := &domain.Appointment{
			ID:            uc.newID(),
			UserID:        req.UserID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Track:         track,
			StartTime:     req.StartTime,
			EndTime:       &endTime,
			EndTimeManual: req.EndTime != nil,
			Remarks:       req.Remarks,
			Status:        domain.StatusPending,
			ServiceIDs:    serviceIDs,
			Products:      toDomainProducts(req.Products),
		}

		result, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		created = result
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerialization) {
			uc.logger.Warn("CreateAppointment: concurrent write on track=%s: %v", track, err)
			return nil, ErrTrackBusy
		}
		uc.logger.Error("CreateAppointment: %v", err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	// 6. Пересечения найдены - останавливаемся до подтверждения
	if created == nil {
		uc.logger.Warn("CreateAppointment: halted, %d overlapping appointment(s) on track=%s", len(conflicts), track)
		uc.metrics.IncOverlapHalt(flow)
		return &Response{Conflicts: conflicts}, nil
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%s, end=%s",
		created.ID, endTime.Format("2006-01-02T15:04"))
	uc.metrics.IncAppointmentCreated(string(track), req.OverlapConfirmed)

	// 7. Уведомление не влияет на результат
	uc.notifier.NotifyCreated(ctx, created)

	return &Response{Appointment: created}, nil
}

func toDomainProducts(items []ProductItem) []domain.ProductItem {
	products := make([]domain.ProductItem, 0, len(items))
	for _, p := range items {
		products = append(products, domain.ProductItem{ProductID: p.ProductID, Quantity: p.Quantity})
	}
	return products
}
