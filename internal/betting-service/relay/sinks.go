package relay

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/betting-list/internal/shared/kafka"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

// RedisSink publica o envelope em um canal Redis Pub/Sub
type RedisSink struct {
	R       *redis.Client
	Channel string
}

func NewRedisSink(r *redis.Client, channel string) *RedisSink {
	return &RedisSink{R: r, Channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, _ string, env events.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.R.Publish(ctx, s.Channel, b).Err()
}

// KafkaSink escreve o envelope no tópico de seleções, com o item como chave
type KafkaSink struct {
	Writer *kafka.Writer
}

func NewKafkaSink(w *kafka.Writer) *KafkaSink { return &KafkaSink{Writer: w} }

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Send(ctx context.Context, key string, env events.Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, s.Writer, key, b)
}
