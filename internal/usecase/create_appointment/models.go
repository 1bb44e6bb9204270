package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	UserID        *int64        // Владелец записи (опционально)
	CustomerName  string        `validate:"required,max=255"`
	CustomerEmail string        `validate:"required,email,max=255"`
	CustomerPhone string        `validate:"required,max=32"`
	Track         string        `validate:"required,oneof=male female"`
	StartTime     time.Time     // Время начала
	EndTime       *time.Time    // Время окончания вручную (опционально)
	ServiceIDs    []int64       `validate:"max=50,dive,gt=0"`
	Products      []ProductItem `validate:"max=50,dive"`
	Remarks       *string       `validate:"omitempty,max=1000"`

	// OverlapConfirmed оператор подтвердил запись несмотря на пересечения
	OverlapConfirmed bool
}

// ProductItem товар в запросе
type ProductItem struct {
	ProductID int64 `validate:"gt=0"`
	Quantity  int   `validate:"gt=0,lte=100"`
}

// Response результат создания записи
// Если найдены пересечения, запись не создаётся: Appointment == nil, Conflicts не пуст
type Response struct {
	Appointment *domain.Appointment
	Conflicts   []domain.OverlapSummary
}

// Halted возвращает true, если создание остановлено до подтверждения оператором
func (r *Response) Halted() bool {
	return r.Appointment == nil && len(r.Conflicts) > 0
}
