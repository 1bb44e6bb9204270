package appointment

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
)

const (
	tableAppointments = "appointments"
	tableServices     = "appointment_services"
	tableProducts     = "appointment_products"
)

// appointmentColumns порядок колонок совпадает с порядком сканирования в scanAppointment
var appointmentColumns = []string{
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
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// buildFindByTrackQuery запрос активных записей дорожки для поиска пересечений
// Время окончания NULL заменяется временем начала (запись нулевой длины)
func buildFindByTrackQuery(track domain.Track, excludeID *uuid.UUID, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(
		"id",
		"customer_name",
		"start_time",
		"COALESCE(end_time, start_time)",
	).
		From(tableAppointments).
		Where(squirrel.Eq{"track": string(track)}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)})

	if excludeID != nil {
		builder = builder.Where(squirrel.NotEq{"id": excludeID.String()})
	}

	builder = builder.OrderBy("start_time ASC")

	// В транзакции блокируем найденные строки до завершения записи
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	return builder.ToSql()
}

// buildListQuery запрос списка записей по фильтру
func buildListQuery(filter domain.AppointmentsFilter) (string, []interface{}, error) {
	builder := psqlbuilder.Select(appointmentColumns...).From(tableAppointments)

	if filter.Track != nil {
		builder = builder.Where(squirrel.Eq{"track": string(*filter.Track)})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_time": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_time": *filter.To})
	}

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeCancelled {
		builder = builder.Where(squirrel.NotEq{"status": string(domain.StatusCancelled)})
	}

	return builder.OrderBy("start_time ASC").ToSql()
}

// buildStatusUpdate смена статуса, строка обновляется только из допустимого исходного статуса
func buildStatusUpdate(id uuid.UUID, next domain.AppointmentStatus) (string, []interface{}, error) {
	return transitionUpdate(id, next).
		Set("updated_at", squirrel.Expr("NOW()")).
		ToSql()
}

// buildCancelUpdate мягкая отмена с той же проверкой исходного статуса
func buildCancelUpdate(id uuid.UUID, reason *string, cancelledAt time.Time) (string, []interface{}, error) {
	return transitionUpdate(id, domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		ToSql()
}

func transitionUpdate(id uuid.UUID, next domain.AppointmentStatus) squirrel.UpdateBuilder {
	sources := domain.TransitionSources(next)
	from := make([]string, len(sources))
	for i, st := range sources {
		from[i] = string(st)
	}

	return psqlbuilder.Update(tableAppointments).
		Set("status", string(next)).
		Where(squirrel.Eq{"id": id.String()}).
		Where(squirrel.Eq{"status": from})
}

// buildServicesInsert вставка связей запись-услуга одним запросом
func buildServicesInsert(id uuid.UUID, serviceIDs []int64) (string, []interface{}, error) {
	builder := psqlbuilder.Insert(tableServices).Columns("appointment_id", "service_id")
	for _, serviceID := range serviceIDs {
		builder = builder.Values(id, serviceID)
	}
	return builder.ToSql()
}

// buildProductsInsert вставка связей запись-товар одним запросом
func buildProductsInsert(id uuid.UUID, products []domain.ProductItem) (string, []interface{}, error) {
	builder := psqlbuilder.Insert(tableProducts).Columns("appointment_id", "product_id", "quantity")
	for _, p := range products {
		builder = builder.Values(id, p.ProductID, p.Quantity)
	}
	return builder.ToSql()
}

// anyID условие appointment_id = ANY($n) для пакетной загрузки связей
func anyID(ids []uuid.UUID) squirrel.Sqlizer {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return squirrel.Expr("appointment_id = ANY(?::uuid[])", pq.Array(values))
}
