package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

const (
	keyPrefix     = "lock:track:"
	retryInterval = 50 * time.Millisecond
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Release освобождает полученную блокировку
type Release func(ctx context.Context) error

// RedisClient команды Redis, нужные блокировке (*redis.Client)
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker блокировка дорожки на Redis (SET NX PX)
// Сериализует создание и редактирование записей одной дорожки между экземплярами сервиса
type RedisLocker struct {
	client RedisClient
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker создает блокировку
// ttl - время жизни ключа на случай падения владельца, wait - сколько ждать освобождения
func NewRedisLocker(client RedisClient, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait}
}

// Acquire получает блокировку дорожки, ожидая её освобождения не дольше wait
func (l *RedisLocker) Acquire(ctx context.Context, track domain.Track) (Release, error) {
	key := keyPrefix + string(track)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: Acquire - setnx %s: %v", ErrRedis, key, err)
		}
		if ok {
			return l.release(key, token), nil
		}

		if !time.Now().Add(retryInterval).Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *RedisLocker) release(key, token string) Release {
	return func(ctx context.Context) error {
		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("%w: Release - eval %s: %v", ErrRedis, key, err)
		}
		return nil
	}
}

// NoopLocker используется, когда Redis выключен
// Гонку в этом случае закрывает только SERIALIZABLE транзакция
type NoopLocker struct{}

// Acquire всегда успешен
func (NoopLocker) Acquire(context.Context, domain.Track) (Release, error) {
	return func(context.Context) error { return nil }, nil
}
