// Package list compõe itens de aposta e reage às seleções publicadas no canal.
package list

import (
	"errors"

	"github.com/radieske/betting-list/internal/betting/channel"
	"github.com/radieske/betting-list/internal/betting/item"
	"github.com/radieske/betting-list/internal/betting/view"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

var ErrDuplicateItem = errors.New("item already in list")

// List compõe N itens. Não é segura para uso concorrente.
type List struct {
	id      string
	heading string
	items   []*item.Item
	policy  Policy

	ch      channel.Channel
	tokens  []channel.Token
	mounted bool
}

type Option func(*List)

// WithPolicy troca a política de lista (padrão: PassThrough)
func WithPolicy(p Policy) Option {
	return func(l *List) { l.policy = p }
}

// WithHeading define o título renderizado no topo da lista
func WithHeading(h string) Option {
	return func(l *List) { l.heading = h }
}

func New(id string, items []*item.Item, opts ...Option) *List {
	l := &List{id: id, policy: PassThrough{}}
	for _, o := range opts {
		o(l)
	}
	for _, it := range items {
		it.SetListID(id)
		l.items = append(l.items, it)
	}
	return l
}

func (l *List) ID() string     { return l.id }
func (l *List) Mounted() bool  { return l.mounted }
func (l *List) Policy() Policy { return l.policy }
func (l *List) Len() int       { return len(l.items) }

// Items retorna os itens na ordem de renderização
func (l *List) Items() []*item.Item {
	return append([]*item.Item(nil), l.items...)
}

// Item busca um item pelo id
func (l *List) Item(id string) (*item.Item, bool) {
	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	return nil, false
}

func (l *List) index(id string) int {
	for i, it := range l.items {
		if it.ID() == id {
			return i
		}
	}
	return -1
}

// Mount inscreve a lista no canal e só depois monta os itens
func (l *List) Mount(ch channel.Channel) {
	if l.mounted {
		return
	}
	l.ch = ch
	l.tokens = []channel.Token{
		ch.Subscribe(events.KindSelectBetChoice, l.onEvent),
		ch.Subscribe(events.KindItemMounted, l.onEvent),
		ch.Subscribe(events.KindItemUnmounted, l.onEvent),
	}
	l.mounted = true
	for _, it := range l.items {
		it.Mount(ch)
	}
}

// Unmount desmonta os itens e cancela as inscrições
func (l *List) Unmount() {
	if !l.mounted {
		return
	}
	for _, it := range l.items {
		it.Unmount()
	}
	for _, t := range l.tokens {
		l.ch.Unsubscribe(t)
	}
	l.tokens = nil
	l.ch = nil
	l.mounted = false
}

// Add inclui um item ao final; se a lista estiver montada o item é montado também
func (l *List) Add(it *item.Item) error {
	if l.index(it.ID()) >= 0 {
		return ErrDuplicateItem
	}
	it.SetListID(l.id)
	l.items = append(l.items, it)
	if l.mounted {
		it.Mount(l.ch)
	}
	return nil
}

// Remove tira o item da lista (desmontando-o); false se não existir
func (l *List) Remove(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	it := l.items[i]
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	if it.Mounted() {
		it.Unmount()
	} else {
		l.policy.OnItemGone(l, id)
	}
	return true
}

// Owns indica se o item pertence a esta lista
func (l *List) Owns(itemID string) bool {
	return l.index(itemID) >= 0
}

// onEvent é o ponto de extensão da lista; eventos chegam antes mesmo de
// todos os itens estarem montados e de emissores fora da lista
func (l *List) onEvent(e events.Event) {
	switch ev := e.(type) {
	case events.ChoiceSelected:
		l.policy.OnSelect(l, ev)
	case events.ItemMounted:
		l.policy.OnItemMounted(l, ev.ItemID)
	case events.ItemUnmounted:
		l.policy.OnItemGone(l, ev.ItemID)
	}
}

// Render projeta a lista e seus itens
func (l *List) Render() view.Node {
	root := view.El("div", "betting-list")
	root.Attrs = map[string]string{"data-list-id": l.id}

	if l.heading != "" {
		h := view.El("h3")
		h.Text = l.heading
		root.Children = append(root.Children, h)
	}
	for _, it := range l.items {
		root.Children = append(root.Children, it.Render())
	}
	return root
}
