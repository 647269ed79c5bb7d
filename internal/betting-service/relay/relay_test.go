package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting/channel"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

type fakeSink struct {
	name string
	err  error

	mu   sync.Mutex
	keys []string
	envs []events.Envelope
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Send(_ context.Context, key string, env events.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.envs = append(f.envs, env)
	return f.err
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.envs)
}

func TestRelayForwardsSelections(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	bad := &fakeSink{name: "bad", err: errors.New("broker down")}

	var mu sync.Mutex
	forwarded, failed := 0, map[string]int{}
	r := New(zap.NewNop(), 4, ok, bad)
	r.OnForwarded = func() { mu.Lock(); forwarded++; mu.Unlock() }
	r.OnError = func(s string) { mu.Lock(); failed[s]++; mu.Unlock() }

	bus := channel.NewBus(nil)
	detach := r.Attach(bus)

	bus.Publish(events.ChoiceSelected{ItemID: "MATCH_001", ChoiceID: 0})
	bus.Publish(events.ItemMounted{ItemID: "MATCH_001"}) // ignorado
	bus.Publish(events.ChoiceSelected{ItemID: "MATCH_002", ChoiceID: 2})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for ok.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if ok.count() != 2 {
		t.Fatalf("expected 2 forwarded envelopes, got %d", ok.count())
	}
	if ok.keys[0] != "MATCH_001" || ok.envs[1].Type != events.KindSelectBetChoice {
		t.Errorf("unexpected forwarded data %v %+v", ok.keys, ok.envs)
	}
	mu.Lock()
	if forwarded != 2 || failed["bad"] != 2 {
		t.Errorf("unexpected metrics forwarded=%d failed=%v", forwarded, failed)
	}
	mu.Unlock()

	detach()
	if n := bus.Subscribers(events.KindSelectBetChoice); n != 0 {
		t.Errorf("detach left %d subscribers", n)
	}
}

func TestRelayDropsWhenQueueFull(t *testing.T) {
	dropped := 0
	r := New(zap.NewNop(), 1)
	r.OnDropped = func() { dropped++ }

	bus := channel.NewBus(nil)
	r.Attach(bus)
	for i := 0; i < 3; i++ {
		bus.Publish(events.ChoiceSelected{ItemID: "MATCH_001", ChoiceID: i})
	}

	if dropped != 2 {
		t.Fatalf("expected 2 dropped selections, got %d", dropped)
	}
}

func TestRelayDoesNotCountWhenEverySinkFails(t *testing.T) {
	redis := &fakeSink{name: "redis", err: errors.New("connection refused")}
	kafka := &fakeSink{name: "kafka", err: errors.New("broker down")}

	forwarded, failed := 0, 0
	r := New(zap.NewNop(), 4, redis, kafka)
	r.OnForwarded = func() { forwarded++ }
	r.OnError = func(string) { failed++ }

	env, _ := events.Wrap(events.ChoiceSelected{ItemID: "MATCH_001"})
	r.forward(context.Background(), message{key: "MATCH_001", env: env})

	if forwarded != 0 || failed != 2 {
		t.Fatalf("expected forwarded=0 failed=2, got forwarded=%d failed=%d", forwarded, failed)
	}

	redis.err = nil
	r.forward(context.Background(), message{key: "MATCH_001", env: env})
	if forwarded != 1 || failed != 3 {
		t.Errorf("expected forwarded=1 failed=3, got forwarded=%d failed=%d", forwarded, failed)
	}
}
