package notifier

import "context"

// LogPublisher только пишет событие в лог
// Используется, когда внешний сервис уведомлений не настроен
type LogPublisher struct {
	logger Logger
}

// NewLogPublisher создает издателя в лог
func NewLogPublisher(logger Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish пишет событие в лог
func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info("Notification %s: appointment=%s customer=%s email=%s start=%s",
		event.Type, event.AppointmentID, event.CustomerName, event.CustomerEmail, event.StartTime)
	return nil
}
