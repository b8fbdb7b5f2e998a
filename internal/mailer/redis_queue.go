// Package mailer hands confirmation codes to the out-of-process mail worker.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"reviewhub/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

// ConfirmationMessage is the queue payload consumed by the mail worker.
type ConfirmationMessage struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Code     string    `json:"confirmation_code"`
	IssuedAt time.Time `json:"issued_at"`
}

// listPusher is the part of the redis client the queue needs.
type listPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisQueue pushes confirmation messages onto a Redis list.
type RedisQueue struct {
	client listPusher
	key    string
	logger *slog.Logger
	now    func() time.Time
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(redisURL, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		// plain host:port
		opts = &redis.Options{Addr: redisURL}
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisQueue(client listPusher, key string, logger *slog.Logger) *RedisQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisQueue{client: client, key: key, logger: logger, now: time.Now}
}

func (q *RedisQueue) Send(ctx context.Context, user *models.User, code string) error {
	payload, err := json.Marshal(ConfirmationMessage{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Code:     code,
		IssuedAt: q.now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("queue confirmation for %s: %w", user.Username, err)
	}
	q.logger.Debug("confirmation_queued", "user_id", user.ID, "queue", q.key)
	return nil
}
