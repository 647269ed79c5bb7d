// Package catalog carrega as partidas que viram itens da lista de apostas.
// Fonte de verdade é o Postgres; o Redis serve de cache de leitura.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting/item"
)

// Source é a origem persistente das partidas
type Source interface {
	ListMatches(ctx context.Context) ([]Match, error)
}

// Store é o cache do catálogo
type Store interface {
	Get(ctx context.Context) ([]Match, bool, error)
	Set(ctx context.Context, matches []Match) error
	Invalidate(ctx context.Context) error
}

type Catalog struct {
	log   *zap.Logger
	src   Source
	store Store
}

func New(log *zap.Logger, src Source, store Store) *Catalog {
	return &Catalog{log: log, src: src, store: store}
}

// Load retorna os specs dos itens, preferencialmente do cache.
// Falhas do cache não impedem a leitura do banco.
func (c *Catalog) Load(ctx context.Context) ([]item.Spec, error) {
	matches, ok, err := c.store.Get(ctx)
	if err != nil {
		c.log.Warn("catalog cache get failed", zap.Error(err))
	}
	if !ok {
		matches, err = c.src.ListMatches(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, matches); err != nil {
			c.log.Warn("catalog cache set failed", zap.Error(err))
		}
	}

	specs := make([]item.Spec, 0, len(matches))
	for _, m := range matches {
		specs = append(specs, m.Spec())
	}
	return specs, nil
}

// Invalidate descarta o cache (chamado a cada atualização de odds)
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.store.Invalidate(ctx); err != nil {
		c.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
