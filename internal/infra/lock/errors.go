package lock

import "errors"

var (
	// ErrLockTimeout возвращается, когда блокировку дорожки не удалось получить за отведённое время
	ErrLockTimeout = errors.New("lock: timeout waiting for track lock")

	// ErrRedis возвращается при ошибках Redis
	ErrRedis = errors.New("lock: redis error")
)
