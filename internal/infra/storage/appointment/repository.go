package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
)

// Repository репозиторий для работы с записями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Create создает запись вместе со связями услуг и товаров
// Вызывается внутри транзакции, чтобы запись и связи сохранились атомарно
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableAppointments).
		Columns(
			"id",
			"user_id",
			"customer_name",
			"customer_email",
			"customer_phone",
			"track",
			"start_time",
			"end_time",
			"end_time_manual",
			"remarks",
			"status",
		).
		Values(
			a.ID,
			a.UserID,
			a.CustomerName,
			a.CustomerEmail,
			a.CustomerPhone,
			string(a.Track),
			a.StartTime,
			a.EndTime,
			a.EndTimeManual,
			a.Remarks,
			string(a.Status),
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	if err := r.ReplaceServices(ctx, a.ID, a.ServiceIDs); err != nil {
		return nil, err
	}
	if err := r.ReplaceProducts(ctx, a.ID, a.Products); err != nil {
		return nil, err
	}

	return a, nil
}

// GetByID получает запись по ID вместе со связанными услугами и товарами
// В транзакции на запись строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{"id": id.String()})

	if dbmetrics.CanLockRows(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	if err := r.loadRelations(ctx, executor, []*domain.Appointment{a}); err != nil {
		return nil, err
	}

	return a, nil
}

// FindByTrackExcluding возвращает активные записи дорожки для поиска пересечений
// excludeID исключает редактируемую запись
func (r *Repository) FindByTrackExcluding(ctx context.Context, track domain.Track, excludeID *uuid.UUID) ([]domain.OverlapSummary, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildFindByTrackQuery(track, excludeID, dbmetrics.CanLockRows(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: FindByTrackExcluding - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindByTrackExcluding - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	summaries := make([]domain.OverlapSummary, 0)
	for rows.Next() {
		var s domain.OverlapSummary
		if err := rows.Scan(&s.AppointmentID, &s.CustomerName, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("%w: FindByTrackExcluding - scan row: %w", ErrScanRow, err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindByTrackExcluding - rows error: %w", ErrScanRow, err)
	}

	return summaries, nil
}

// List получает записи по фильтру
//
// Примеры:
//
// 1. Все активные записи мужской дорожки:
//    filter := domain.AppointmentsFilter{Track: &male}
//
// 2. Записи за день включая отменённые:
//    filter := domain.AppointmentsFilter{From: &dayStart, To: &nextDayStart, IncludeCancelled: true}
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	return r.queryAppointments(ctx, executor, "List", query, args)
}

// GetByUserID получает историю записей пользователя, новые первыми
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_time DESC")

	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*status)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %w", ErrBuildQuery, err)
	}

	return r.queryAppointments(ctx, executor, "GetByUserID", query, args)
}

// Update сохраняет изменяемые поля записи
func (r *Repository) Update(ctx context.Context, a *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableAppointments).
		Set("customer_name", a.CustomerName).
		Set("customer_email", a.CustomerEmail).
		Set("customer_phone", a.CustomerPhone).
		Set("track", string(a.Track)).
		Set("start_time", a.StartTime).
		Set("end_time", a.EndTime).
		Set("end_time_manual", a.EndTimeManual).
		Set("remarks", a.Remarks).
		Set("status", string(a.Status)).
		Set("cancellation_reason", a.CancellationReason).
		Set("cancelled_at", a.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": a.ID.String()}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// UpdateEndTime сохраняет пересчитанное время окончания
func (r *Repository) UpdateEndTime(ctx context.Context, id uuid.UUID, endTime time.Time, manual bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableAppointments).
		Set("end_time", endTime).
		Set("end_time_manual", manual).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateEndTime - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffecting(ctx, executor, "UpdateEndTime", query, args)
}

// UpdateStatus переводит запись в статус status
// Возвращает ErrTransitionRejected, если текущий статус строки не допускает перехода
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildStatusUpdate(id, status)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет запись с указанием причины (мягкая отмена, строка не удаляется)
// Уже отменённая запись не перезаписывается: возвращается ErrTransitionRejected
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, reason *string, cancelledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildCancelUpdate(id, reason, cancelledAt)
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, "Cancel", query, args)
}

// ReplaceServices заменяет набор услуг записи
func (r *Repository) ReplaceServices(ctx context.Context, id uuid.UUID, serviceIDs []int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableServices).
		Where(squirrel.Eq{"appointment_id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceServices - build delete query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceServices - execute delete: %w", ErrExecQuery, err)
	}

	if len(serviceIDs) == 0 {
		return nil
	}

	query, args, err = buildServicesInsert(id, serviceIDs)
	if err != nil {
		return fmt.Errorf("%w: ReplaceServices - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceServices - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ReplaceProducts заменяет набор товаров записи
func (r *Repository) ReplaceProducts(ctx context.Context, id uuid.UUID, products []domain.ProductItem) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableProducts).
		Where(squirrel.Eq{"appointment_id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceProducts - build delete query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceProducts - execute delete: %w", ErrExecQuery, err)
	}

	if len(products) == 0 {
		return nil
	}

	query, args, err = buildProductsInsert(id, products)
	if err != nil {
		return fmt.Errorf("%w: ReplaceProducts - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceProducts - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) queryAppointments(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Appointment, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	if err := r.loadRelations(ctx, executor, appointments); err != nil {
		return nil, err
	}

	return appointments, nil
}

// loadRelations загружает услуги и товары пачкой для всех записей
func (r *Repository) loadRelations(ctx context.Context, executor DBExecutor, appointments []*domain.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Appointment, len(appointments))
	ids := make([]uuid.UUID, 0, len(appointments))
	for _, a := range appointments {
		a.ServiceIDs = make([]int64, 0)
		a.Products = make([]domain.ProductItem, 0)
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	query, args, err := psqlbuilder.Select("appointment_id", "service_id").
		From(tableServices).
		Where(anyID(ids)).
		OrderBy("service_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadRelations - build services query: %w", ErrBuildQuery, err)
	}

	if err := scanPairs(ctx, executor, query, args, func(rows *sql.Rows) error {
		var appointmentID uuid.UUID
		var serviceID int64
		if err := rows.Scan(&appointmentID, &serviceID); err != nil {
			return err
		}
		if a, ok := byID[appointmentID]; ok {
			a.ServiceIDs = append(a.ServiceIDs, serviceID)
		}
		return nil
	}); err != nil {
		return err
	}

	query, args, err = psqlbuilder.Select("appointment_id", "product_id", "quantity").
		From(tableProducts).
		Where(anyID(ids)).
		OrderBy("product_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadRelations - build products query: %w", ErrBuildQuery, err)
	}

	return scanPairs(ctx, executor, query, args, func(rows *sql.Rows) error {
		var appointmentID uuid.UUID
		var item domain.ProductItem
		if err := rows.Scan(&appointmentID, &item.ProductID, &item.Quantity); err != nil {
			return err
		}
		if a, ok := byID[appointmentID]; ok {
			a.Products = append(a.Products, item)
		}
		return nil
	})
}

func scanPairs(ctx context.Context, executor DBExecutor, query string, args []interface{}, scan func(rows *sql.Rows) error) error {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadRelations - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%w: loadRelations - scan row: %w", ErrScanRow, err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadRelations - rows error: %w", ErrScanRow, err)
	}

	return nil
}

// execTransition выполняет смену статуса с проверкой исходного статуса
func (r *Repository) execTransition(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	err := r.execAffecting(ctx, executor, op, query, args)
	if errors.Is(err, ErrAppointmentNotFound) {
		return ErrTransitionRejected
	}
	return err
}

func (r *Repository) execAffecting(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// scanAppointment сканирует строку с колонками appointmentColumns
func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var track, status string
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.CustomerName,
		&a.CustomerEmail,
		&a.CustomerPhone,
		&track,
		&a.StartTime,
		&a.EndTime,
		&a.EndTimeManual,
		&a.Remarks,
		&status,
		&a.CancellationReason,
		&a.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Track = domain.Track(track)
	a.Status = domain.AppointmentStatus(status)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}
