package notifier

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifier: internal error")

	// ErrPublish возвращается, когда событие не удалось доставить
	ErrPublish = errors.New("notifier: failed to publish event")

	// ErrInvalidResponse возвращается при некорректном ответе сервиса уведомлений
	ErrInvalidResponse = errors.New("notifier: invalid response")
)
