package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// Dispatcher отправляет уведомления о записях в фоне
// Ошибка доставки логируется и считается в метриках, но не возвращается вызывающему:
// переход статуса записи не зависит от успеха уведомления
type Dispatcher struct {
	publisher Publisher
	logger    Logger
	metrics   MetricsRecorder
	timeout   time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewDispatcher создает диспетчер уведомлений
// metrics может быть nil
func NewDispatcher(publisher Publisher, logger Logger, metrics MetricsRecorder, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		timeout:   timeout,
		now:       time.Now,
	}
}

// NotifyCreated уведомляет о создании записи
func (d *Dispatcher) NotifyCreated(ctx context.Context, a *domain.Appointment) {
	d.dispatch(ctx, EventCreated, a)
}

// NotifyConfirmed уведомляет о подтверждении записи
func (d *Dispatcher) NotifyConfirmed(ctx context.Context, a *domain.Appointment) {
	d.dispatch(ctx, EventConfirmed, a)
}

// NotifyCancelled уведомляет об отмене записи
func (d *Dispatcher) NotifyCancelled(ctx context.Context, a *domain.Appointment) {
	d.dispatch(ctx, EventCancelled, a)
}

// Wait дожидается отправки уже запущенных уведомлений (graceful shutdown)
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, eventType EventType, a *domain.Appointment) {
	event := NewEvent(eventType, a, d.now())

	// Запрос уже завершится к моменту отправки, поэтому отвязываемся от его отмены
	sendCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(sendCtx, d.timeout)
		defer cancel()

		if err := d.publisher.Publish(sendCtx, event); err != nil {
			d.logger.Error("Notify: failed to publish %s for appointment=%s: %v", event.Type, event.AppointmentID, err)
			if d.metrics != nil {
				d.metrics.IncNotificationFailed(string(event.Type))
			}
			return
		}

		d.logger.Info("Notify: published %s for appointment=%s", event.Type, event.AppointmentID)
	}()
}
