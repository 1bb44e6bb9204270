package update_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// Request модель запроса на редактирование записи
// nil поле означает "не менять"
type Request struct {
	ID uuid.UUID

	CustomerName  *string `validate:"omitempty,max=255"`
	CustomerEmail *string `validate:"omitempty,email,max=255"`
	CustomerPhone *string `validate:"omitempty,max=32"`
	Track         *string `validate:"omitempty,oneof=male female"`
	StartTime     *time.Time

	// EndTime задаёт окончание вручную, ClearEndTime возвращает автоматический расчёт
	EndTime      *time.Time
	ClearEndTime bool

	ServiceIDs *[]int64
	Products   *[]ProductItem
	Remarks    *string `validate:"omitempty,max=1000"`

	Status             *string `validate:"omitempty,oneof=pending confirmed cancelled"`
	CancellationReason *string `validate:"omitempty,max=500"`

	// OverlapConfirmed оператор подтвердил изменение несмотря на пересечения
	OverlapConfirmed bool
}

// ProductItem товар в запросе
type ProductItem struct {
	ProductID int64 `validate:"gt=0"`
	Quantity  int   `validate:"gt=0,lte=100"`
}

// Response результат редактирования
// Если найдены пересечения, изменения не сохраняются: Appointment == nil, Conflicts не пуст
type Response struct {
	Appointment *domain.Appointment
	Conflicts   []domain.OverlapSummary
}

// Halted возвращает true, если редактирование остановлено до подтверждения оператором
func (r *Response) Halted() bool {
	return r.Appointment == nil && len(r.Conflicts) > 0
}

// changeSet что именно меняет запрос
type changeSet struct {
	startChanged    bool
	trackChanged    bool
	servicesChanged bool
	productsChanged bool
	statusChanged   bool
}
