// Package channel implementa o canal de eventos compartilhado entre itens e listas.
// A entrega é síncrona, na ordem de inscrição, sem buffer e sem replay.
package channel

import (
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/betting-list/pkg/contracts/events"
)

// Handler recebe um evento publicado no canal
type Handler func(events.Event)

// Token identifica uma inscrição; usado para cancelá-la
type Token struct {
	kind events.Kind
	id   uint64
}

// Channel é o mediador injetado nos componentes no Mount
type Channel interface {
	Publish(e events.Event)
	Subscribe(kind events.Kind, h Handler) Token
	Unsubscribe(t Token) bool
}

type subscription struct {
	id     uint64
	h      Handler
	active bool
}

// Bus é a implementação padrão de Channel
type Bus struct {
	log *zap.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[events.Kind][]*subscription
	depth  int // publicações em andamento (detecta publish aninhado)
}

// NewBus cria um canal vazio. log pode ser nil.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		log:  log,
		subs: make(map[events.Kind][]*subscription),
	}
}

// Subscribe registra h para eventos do tipo kind.
// Inscrições feitas durante um dispatch não recebem o evento em curso.
func (b *Bus) Subscribe(kind events.Kind, h Handler) Token {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[kind] = append(b.subs[kind], &subscription{id: b.nextID, h: h, active: true})
	return Token{kind: kind, id: b.nextID}
}

// Unsubscribe remove a inscrição. Idempotente: retorna false se o token não existe mais.
func (b *Bus) Unsubscribe(t Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[t.kind]
	for i, s := range list {
		if s.id != t.id {
			continue
		}
		s.active = false
		b.subs[t.kind] = append(list[:i:i], list[i+1:]...)
		if len(b.subs[t.kind]) == 0 {
			delete(b.subs, t.kind)
		}
		return true
	}
	return false
}

// Publish entrega e a todos os inscritos atuais do seu tipo, em ordem de inscrição
func (b *Bus) Publish(e events.Event) {
	b.mu.Lock()
	snapshot := append([]*subscription(nil), b.subs[e.Kind()]...)
	b.depth++
	nested := b.depth > 1
	b.mu.Unlock()

	if nested {
		b.log.Warn("nested publish during dispatch", zap.String("kind", string(e.Kind())))
	}

	defer func() {
		b.mu.Lock()
		b.depth--
		b.mu.Unlock()
	}()

	for _, s := range snapshot {
		// handler removido durante o dispatch não deve mais agir
		b.mu.Lock()
		active := s.active
		b.mu.Unlock()
		if !active {
			continue
		}
		s.h(e)
	}
}

// Subscribers retorna quantos handlers estão inscritos em kind
func (b *Bus) Subscribers(kind events.Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[kind])
}
