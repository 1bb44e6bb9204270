package appointments

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
)

// Service сервис для чтения записей и смены их статуса
type Service struct {
	appointmentRepo AppointmentRepository
	detector        OverlapDetector
	notifier        Notifier
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	detector OverlapDetector,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		detector:        detector,
		notifier:        notifier,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s", id)

	var appointment *domain.Appointment
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		a, err := s.get(txCtx, "GetByID", id)
		if err != nil {
			return err
		}
		appointment = a
		return nil
	})
	if err != nil {
		return nil, s.txFailed("GetByID", err)
	}

	return models.FromDomainAppointment(appointment), nil
}

// List получает записи с фильтрацией по дорожке, статусу и периоду
// По умолчанию отменённые записи не возвращаются
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	logMsg := "List: fetching appointments"
	if req.Track != nil {
		logMsg += fmt.Sprintf(", track=%s", *req.Track)
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format("2006-01-02T15:04"), req.To.Format("2006-01-02T15:04"))
	}
	if req.IncludeCancelled {
		logMsg += ", includeCancelled=true"
	}
	s.logger.Info("%s", logMsg)

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		s.logger.Warn("List: invalid period")
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var appointments []*domain.Appointment
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.appointmentRepo.List(txCtx, filter)
		if err != nil {
			return fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
		}
		appointments = found
		return nil
	})
	if err != nil {
		return nil, s.txFailed("List", err)
	}

	s.logger.Info("List: successfully fetched %d appointments", len(appointments))
	return models.FromDomainAppointmentList(appointments), nil
}

// GetUserAppointments получает историю записей пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserAppointments(ctx context.Context, userID int64, status *string) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetUserAppointments: fetching appointments for user=%d, status=%v", userID, status)

	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user id", ErrInvalidInput)
	}

	var domainStatus *domain.AppointmentStatus
	if status != nil {
		st, err := models.ToDomainStatus(*status)
		if err != nil {
			s.logger.Warn("GetUserAppointments: invalid status=%s for user=%d", *status, userID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &st
	}

	var appointments []*domain.Appointment
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.appointmentRepo.GetByUserID(txCtx, userID, domainStatus)
		if err != nil {
			return fmt.Errorf("%w: GetUserAppointments - repository error: %w", ErrInternal, err)
		}
		appointments = found
		return nil
	})
	if err != nil {
		return nil, s.txFailed("GetUserAppointments", err)
	}

	s.logger.Info("GetUserAppointments: successfully fetched %d appointments for user=%d", len(appointments), userID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Confirm подтверждает запись (pending -> confirmed)
// Пересечения не проверяются повторно: они возвращаются как предупреждения,
// решение остаётся за администратором
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*models.ConfirmResponse, error) {
	s.logger.Info("Confirm: confirming appointment id=%s", id)

	// 1. Чтение с блокировкой строки, проверка и смена статуса в одной транзакции
	var appointment *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.get(txCtx, "Confirm", id)
		if err != nil {
			return err
		}
		if err := s.checkTransition("Confirm", a, domain.StatusConfirmed); err != nil {
			return err
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, id, domain.StatusConfirmed); err != nil {
			return s.transitionRejected(txCtx, "Confirm", id, domain.StatusConfirmed, err)
		}

		a.Status = domain.StatusConfirmed
		appointment = a
		return nil
	})
	if err != nil {
		return nil, s.txFailed("Confirm", err)
	}

	// 2. Ошибка поиска пересечений не отменяет подтверждение
	start, end := appointment.Interval()
	warnings, err := s.detector.FindOverlaps(ctx, appointment.Track, start, end, &appointment.ID)
	if err != nil {
		s.logger.Error("Confirm: failed to find overlaps for appointment id=%s: %v", id, err)
		warnings = nil
	} else if len(warnings) > 0 {
		s.logger.Warn("Confirm: appointment id=%s confirmed with %d overlapping appointment(s)", id, len(warnings))
	}

	// 3. Уведомление после фиксации транзакции
	s.notifier.NotifyConfirmed(ctx, appointment)

	s.logger.Info("Confirm: successfully confirmed appointment id=%s", id)
	return &models.ConfirmResponse{
		Appointment: models.FromDomainAppointment(appointment),
		Warnings:    models.FromDomainConflicts(warnings),
	}, nil
}

// Cancel мягко отменяет запись (pending|confirmed -> cancelled)
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%s", id)

	if utf8.RuneCountInString(ptr.Value(reason)) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: reason too long for appointment id=%s", id)
		return nil, fmt.Errorf("%w: cancellation reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := s.timeProvider.Now()

	var appointment *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.get(txCtx, "Cancel", id)
		if err != nil {
			return err
		}
		if err := s.checkTransition("Cancel", a, domain.StatusCancelled); err != nil {
			return err
		}

		if err := s.appointmentRepo.Cancel(txCtx, id, reason, now); err != nil {
			return s.transitionRejected(txCtx, "Cancel", id, domain.StatusCancelled, err)
		}

		a.Status = domain.StatusCancelled
		a.CancellationReason = reason
		a.CancelledAt = &now
		appointment = a
		return nil
	})
	if err != nil {
		return nil, s.txFailed("Cancel", err)
	}

	s.notifier.NotifyCancelled(ctx, appointment)

	s.logger.Info("Cancel: successfully cancelled appointment id=%s", id)
	return models.FromDomainAppointment(appointment), nil
}

func (s *Service) get(ctx context.Context, op string, id uuid.UUID) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%s not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return appointment, nil
}

// checkTransition отменённая запись даёт ErrAppointmentCancelled, прочие запреты ErrInvalidTransition
func (s *Service) checkTransition(op string, a *domain.Appointment, next domain.AppointmentStatus) error {
	if a.IsCancelled() {
		s.logger.Warn("%s: appointment id=%s is cancelled", op, a.ID)
		return ErrAppointmentCancelled
	}
	if !a.Status.CanTransitionTo(next) {
		s.logger.Warn("%s: appointment id=%s in status %s cannot move to %s", op, a.ID, a.Status, next)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	return nil
}

// transitionRejected разбирает ошибку смены статуса
// Если хранилище не обновило строку, статус изменился после чтения: перечитываем и сообщаем актуальную причину
func (s *Service) transitionRejected(ctx context.Context, op string, id uuid.UUID, next domain.AppointmentStatus, err error) error {
	if !errors.Is(err, appointmentRepo.ErrTransitionRejected) {
		s.logger.Error("%s: failed to update status for appointment id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %s - update status: %w", ErrInternal, op, err)
	}

	s.logger.Warn("%s: status of appointment id=%s changed concurrently", op, id)

	current, getErr := s.get(ctx, op, id)
	if getErr != nil {
		return getErr
	}
	if checkErr := s.checkTransition(op, current, next); checkErr != nil {
		return checkErr
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
}

// txFailed пропускает ошибки сервиса как есть, ошибки транзакции заворачивает в ErrInternal
func (s *Service) txFailed(op string, err error) error {
	switch {
	case errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, ErrAppointmentCancelled),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInternal):
		return err
	}
	s.logger.Error("%s: transaction error: %v", op, err)
	return fmt.Errorf("%w: %s - transaction: %w", ErrInternal, op, err)
}
