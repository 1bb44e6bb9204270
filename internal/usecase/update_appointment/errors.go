package update_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_appointment: invalid input data")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("update_appointment: appointment not found")

	// ErrAppointmentCancelled возвращается при попытке изменить отменённую запись
	ErrAppointmentCancelled = errors.New("update_appointment: appointment is cancelled")

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	ErrInvalidTransition = errors.New("update_appointment: invalid status transition")

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("update_appointment: service not found")

	// ErrTrackBusy возвращается, когда дорожка занята параллельной записью
	ErrTrackBusy = errors.New("update_appointment: track is busy, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_appointment: internal error")
)
