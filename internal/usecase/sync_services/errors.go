package sync_services

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("sync_services: invalid input data")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("sync_services: appointment not found")

	// ErrAppointmentCancelled возвращается при попытке изменить отменённую запись
	ErrAppointmentCancelled = errors.New("sync_services: appointment is cancelled")

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("sync_services: service not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("sync_services: internal error")
)
