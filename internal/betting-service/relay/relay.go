// Package relay repassa as seleções publicadas nos canais das sessões para fora
// do processo (Redis Pub/Sub e Kafka), sem bloquear o dispatch síncrono.
package relay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting/channel"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

// Sink é um destino externo das seleções
type Sink interface {
	Name() string
	Send(ctx context.Context, key string, env events.Envelope) error
}

type message struct {
	key string
	env events.Envelope
}

// Relay enfileira as seleções e um worker as envia para os sinks.
// Fila cheia descarta a mensagem (o canal nunca espera por I/O).
type Relay struct {
	Log   *zap.Logger
	Sinks []Sink

	OnForwarded func()       // métricas (counter++)
	OnDropped   func()       // métricas
	OnError     func(string) // métricas por sink

	queue chan message
}

func New(log *zap.Logger, size int, sinks ...Sink) *Relay {
	return &Relay{Log: log, Sinks: sinks, queue: make(chan message, size)}
}

// Attach inscreve o relay no canal de uma sessão
func (r *Relay) Attach(ch channel.Channel) func() {
	tok := ch.Subscribe(events.KindSelectBetChoice, r.enqueue)
	return func() { ch.Unsubscribe(tok) }
}

func (r *Relay) enqueue(e events.Event) {
	ev, ok := e.(events.ChoiceSelected)
	if !ok {
		return
	}
	env, err := events.Wrap(ev)
	if err != nil {
		r.Log.Warn("relay wrap failed", zap.Error(err))
		return
	}

	select {
	case r.queue <- message{key: ev.ItemID, env: env}:
	default:
		r.Log.Warn("relay queue full, dropping selection", zap.String("item_id", ev.ItemID))
		if r.OnDropped != nil {
			r.OnDropped()
		}
	}
}

// Run consome a fila até o contexto ser cancelado
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-r.queue:
			r.forward(ctx, m)
		}
	}
}

// forward envia para todos os sinks; conta como encaminhada se ao menos um aceitou
func (r *Relay) forward(ctx context.Context, m message) {
	delivered := 0
	for _, s := range r.Sinks {
		sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.Send(sctx, m.key, m.env)
		cancel()
		if err != nil {
			r.Log.Warn("relay send failed", zap.String("sink", s.Name()), zap.Error(err))
			if r.OnError != nil {
				r.OnError(s.Name())
			}
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return
	}
	if r.OnForwarded != nil {
		r.OnForwarded()
	}
	r.Log.Debug("selection relayed", zap.String("item_id", m.key), zap.Int("sinks", delivered))
}
