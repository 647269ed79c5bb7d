// Package consumer aplica as atualizações de odds do Kafka nas listas abertas
package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting-service/catalog"
	"github.com/radieske/betting-list/internal/betting/item"
	"github.com/radieske/betting-list/internal/shared/kafka"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

// Sessions re-renderiza os itens afetados por uma atualização
type Sessions interface {
	ApplyOdds(spec item.Spec) int
}

// Invalidator descarta o catálogo em cache
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Processor consome odds_updates, invalida o catálogo e atualiza as sessões.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log      *zap.Logger
	Read     func(ctx context.Context) (key, value []byte, err error)
	Catalog  Invalidator
	Sessions Sessions

	OnConsumed func()       // métricas (counter++)
	OnApplied  func(int)    // sessões re-renderizadas
	OnError    func(string) // métricas por fase
}

func NewProcessor(log *zap.Logger, r *kafka.Reader, cat Invalidator, s Sessions) *Processor {
	return &Processor{
		Log:      log,
		Read:     func(ctx context.Context) ([]byte, []byte, error) { return kafka.ReadNext(ctx, r) },
		Catalog:  cat,
		Sessions: s,
	}
}

// Run inicia o loop principal de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		_, value, err := p.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		p.Handle(ctx, value)
	}
}

// Handle processa uma mensagem de odds_updates
func (p *Processor) Handle(ctx context.Context, value []byte) {
	var ev events.OddsUpdate
	if err := json.Unmarshal(value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Error(err))
		p.fail("decode")
		return
	}
	if ev.Market != catalog.Market1x2 || ev.EventID == "" {
		p.Log.Debug("skipping odds update", zap.String("event_id", ev.EventID), zap.String("market", ev.Market))
		return
	}

	// catálogo em cache fica velho a cada atualização
	p.Catalog.Invalidate(ctx)

	n := p.Sessions.ApplyOdds(catalog.FromUpdate(ev).Spec())
	if p.OnApplied != nil {
		p.OnApplied(n)
	}
	p.Log.Debug("odds applied", zap.String("event_id", ev.EventID), zap.Int("version", ev.Version), zap.Int("sessions", n))
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
