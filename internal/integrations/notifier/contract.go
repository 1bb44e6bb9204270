package notifier

import "context"

// Publisher доставляет событие о записи во внешнюю систему уведомлений
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsRecorder счётчик неудачных уведомлений
type MetricsRecorder interface {
	IncNotificationFailed(event string)
}
