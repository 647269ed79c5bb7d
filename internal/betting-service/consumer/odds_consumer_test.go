package consumer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting/item"
)

type sessionsSpy struct{ specs []item.Spec }

func (s *sessionsSpy) ApplyOdds(spec item.Spec) int {
	s.specs = append(s.specs, spec)
	return 1
}

type invalidatorSpy struct{ calls int }

func (i *invalidatorSpy) Invalidate(context.Context) { i.calls++ }

const update = `{"event_id":"MATCH_001","home_team":"Flamengo","away_team":"Palmeiras","market":"1x2",
"odds":{"home":"1.85","draw":"3.40","away":"4.10"},"version":4}`

func TestHandleAppliesUpdate(t *testing.T) {
	s, inv := &sessionsSpy{}, &invalidatorSpy{}
	p := &Processor{Log: zap.NewNop(), Catalog: inv, Sessions: s}

	p.Handle(context.Background(), []byte(update))

	if len(s.specs) != 1 || inv.calls != 1 {
		t.Fatalf("expected one apply and one invalidate, got %d/%d", len(s.specs), inv.calls)
	}
	got := s.specs[0]
	if got.ID != "MATCH_001" || got.Title != "Flamengo x Palmeiras" || len(got.Choices) != 3 {
		t.Errorf("unexpected spec %+v", got)
	}
	if got.Choices[2].Odds.String() != "4.1" {
		t.Errorf("unexpected away odds %s", got.Choices[2].Odds)
	}
}

func TestHandleSkipsInvalidMessages(t *testing.T) {
	tests := []struct {
		name  string
		value string
		stage string
	}{
		{"bad json", `{`, "decode"},
		{"other market", `{"event_id":"MATCH_001","market":"over_under"}`, ""},
		{"missing event", `{"market":"1x2"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sessionsSpy{}
			var stages []string
			p := &Processor{Log: zap.NewNop(), Catalog: &invalidatorSpy{}, Sessions: s, OnError: func(st string) { stages = append(stages, st) }}

			p.Handle(context.Background(), []byte(tt.value))

			if len(s.specs) != 0 {
				t.Errorf("expected no apply, got %+v", s.specs)
			}
			if tt.stage != "" && (len(stages) != 1 || stages[0] != tt.stage) {
				t.Errorf("expected error stage %q, got %v", tt.stage, stages)
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &sessionsSpy{}
	msgs := [][]byte{[]byte(update)}
	consumed := 0

	p := &Processor{
		Log:        zap.NewNop(),
		Catalog:    &invalidatorSpy{},
		Sessions:   s,
		OnConsumed: func() { consumed++ },
		Read: func(ctx context.Context) ([]byte, []byte, error) {
			if len(msgs) == 0 {
				cancel()
				return nil, nil, errors.New("read kafka message: context canceled")
			}
			m := msgs[0]
			msgs = msgs[1:]
			return []byte("MATCH_001"), m, nil
		},
	}

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if consumed != 1 || len(s.specs) != 1 {
		t.Errorf("expected one consumed and applied message, got %d/%d", consumed, len(s.specs))
	}
}
