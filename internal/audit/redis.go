package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"solana-arb-adapter/internal/constants"
	"solana-arb-adapter/internal/models"
)

// RedisAudit keeps a capped list of recent swap outcomes and fans executed
// swaps out over Pub/Sub. Writes are best-effort from the orchestrator's
// point of view; a Redis outage never fails a swap.
type RedisAudit struct {
	client *redis.Client
	logger *logrus.Logger
}

type RedisConfig struct {
	Addr string
	DB   int
}

func NewRedisAudit(ctx context.Context, cfg RedisConfig) (*RedisAudit, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisAudit{client: client, logger: logrus.New()}, nil
}

// NewRedisAuditFromClient wraps an existing Redis client.
func NewRedisAuditFromClient(client *redis.Client, logger *logrus.Logger) *RedisAudit {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisAudit{client: client, logger: logger}
}

// AddRecentOutcome pushes the record onto the capped recent-outcomes list.
func (r *RedisAudit) AddRecentOutcome(ctx context.Context, rec *models.SwapRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentOutcomes, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentOutcomes, 0, constants.MaxRecentOutcomes-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store outcome: %w", err)
	}
	return nil
}

// GetRecentOutcomes returns up to limit most recent records, newest first.
func (r *RedisAudit) GetRecentOutcomes(ctx context.Context, limit int64) ([]*models.SwapRecord, error) {
	if limit <= 0 || limit > constants.MaxRecentOutcomes {
		limit = constants.MaxRecentOutcomes
	}

	raw, err := r.client.LRange(ctx, constants.RedisKeyRecentOutcomes, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}

	out := make([]*models.SwapRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.SwapRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			r.logger.WithError(err).Warn("skipping unreadable outcome record")
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

// PublishOutcome broadcasts the record on the executed-swaps channel and a
// pair-specific channel.
func (r *RedisAudit) PublishOutcome(ctx context.Context, rec *models.SwapRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	channels := []string{
		constants.PubSubChannelOutcomes,
		fmt.Sprintf("%s:%s-%s", constants.PubSubChannelOutcomes, rec.InputMint, rec.OutputMint),
	}

	pipe := r.client.Pipeline()
	for _, ch := range channels {
		pipe.Publish(ctx, ch, data)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Subscribe delivers executed-swap records until ctx is done.
func (r *RedisAudit) Subscribe(ctx context.Context, handler func(*models.SwapRecord)) error {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelOutcomes)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var rec models.SwapRecord
			if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
				r.logger.WithError(err).Warn("skipping unreadable outcome message")
				continue
			}
			handler(&rec)
		}
	}
}

func (r *RedisAudit) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisAudit) Close() error {
	return r.client.Close()
}
