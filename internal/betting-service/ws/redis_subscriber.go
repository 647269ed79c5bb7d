package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/betting-list/pkg/contracts/events"
)

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub de seleções
// e repassa cada envelope para os clientes inscritos no feed global
//
// Funcionamento:
// - Recebe envelopes JSON publicados pelo relay (de qualquer instância)
// - Valida o tipo do evento
// - Chama hub.Broadcast(GlobalFeed, ...)
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				forward(hub, log, []byte(msg.Payload))
			}
		}
	}()
}

func forward(hub *Hub, log *zap.Logger, payload []byte) {
	var env events.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Warn("ws subscriber unmarshal error", zap.Error(err))
		return
	}
	if _, err := events.Unwrap(env); err != nil {
		log.Warn("ws subscriber unknown event", zap.Error(err))
		return
	}
	hub.Broadcast(GlobalFeed, env)
}
