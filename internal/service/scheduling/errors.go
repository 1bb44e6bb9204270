package scheduling

import "errors"

var (
	// ErrEndBeforeStart возвращается, когда время окончания раньше времени начала
	ErrEndBeforeStart = errors.New("scheduling: end time is before start time")

	// ErrInvalidTrack возвращается для неизвестной дорожки
	ErrInvalidTrack = errors.New("scheduling: invalid track")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("scheduling: internal error")
)
