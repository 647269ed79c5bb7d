// Package item implementa o item de aposta: um conjunto de odds mutuamente
// exclusivas com no máximo uma selecionada.
package item

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/radieske/betting-list/internal/betting/channel"
	"github.com/radieske/betting-list/internal/betting/view"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

var (
	ErrInvalidChoiceIndex = errors.New("invalid choice index")
	ErrNotMounted         = errors.New("betting item not mounted")
)

// Choice é uma odd selecionável; ID é a posição dentro do item
type Choice struct {
	ID    int             `json:"id"`
	Label string          `json:"label"`
	Odds  decimal.Decimal `json:"odds"`
}

// ChoiceState é a projeção de uma Choice com o marcador de seleção
type ChoiceState struct {
	Choice
	Selected bool `json:"selected"`
}

// Spec descreve um item antes de ser montado
type Spec struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Choices []Choice `json:"choices"`
}

// selection é NoSelection (zero value) ou Selected(index)
type selection struct {
	index int
	ok    bool
}

// Item é um item de aposta. Não é seguro para uso concorrente.
type Item struct {
	id      string
	listID  string
	title   string
	choices []Choice

	sel     selection
	ch      channel.Channel
	mounted bool
}

// New cria o item a partir do spec; as posições das odds são renumeradas em ordem
func New(s Spec) *Item {
	it := &Item{id: s.ID, title: s.Title}
	it.choices = normalize(s.Choices)
	return it
}

func normalize(in []Choice) []Choice {
	out := make([]Choice, len(in))
	for i, c := range in {
		c.ID = i
		out[i] = c
	}
	return out
}

func (it *Item) ID() string    { return it.id }
func (it *Item) Title() string { return it.title }
func (it *Item) Len() int      { return len(it.choices) }
func (it *Item) Mounted() bool { return it.mounted }

// SetListID define a lista dona do item (vai no payload dos eventos)
func (it *Item) SetListID(id string) { it.listID = id }

// Mount conecta o item ao canal; o estado de seleção começa vazio
func (it *Item) Mount(ch channel.Channel) {
	it.ch = ch
	it.sel = selection{}
	it.mounted = true
	ch.Publish(events.ItemMounted{ItemID: it.id})
}

// Unmount descarta a seleção e desconecta o item do canal
func (it *Item) Unmount() {
	if !it.mounted {
		return
	}
	ch := it.ch
	it.sel = selection{}
	it.mounted = false
	it.ch = nil
	ch.Publish(events.ItemUnmounted{ItemID: it.id})
}

// Activate seleciona a odd i e publica SELECT_BET_CHOICE.
// Reativar a odd já selecionada publica de novo (sem deduplicação).
func (it *Item) Activate(i int) error {
	if i < 0 || i >= len(it.choices) {
		return fmt.Errorf("%w: %d (item %s has %d choices)", ErrInvalidChoiceIndex, i, it.id, len(it.choices))
	}
	if !it.mounted {
		return ErrNotMounted
	}

	// troca atômica: a seleção anterior some no mesmo passo em que a nova entra
	it.sel = selection{index: i, ok: true}

	c := it.choices[i]
	it.ch.Publish(events.ChoiceSelected{
		ListID:   it.listID,
		ItemID:   it.id,
		ChoiceID: c.ID,
		Label:    c.Label,
		Odds:     c.Odds,
	})
	return nil
}

// Selected retorna o índice selecionado, se houver
func (it *Item) Selected() (int, bool) {
	return it.sel.index, it.sel.ok
}

// Choices retorna as odds com o marcador calculado a partir do estado
func (it *Item) Choices() []ChoiceState {
	out := make([]ChoiceState, len(it.choices))
	for i, c := range it.choices {
		out[i] = ChoiceState{Choice: c, Selected: it.sel.ok && it.sel.index == i}
	}
	return out
}

// Replace troca as odds (re-render). A seleção é mantida se o índice ainda existir.
func (it *Item) Replace(title string, choices []Choice) {
	if title != "" {
		it.title = title
	}
	it.choices = normalize(choices)
	if it.sel.ok && it.sel.index >= len(it.choices) {
		it.sel = selection{}
	}
}

// Render projeta o estado atual na árvore de visualização
func (it *Item) Render() view.Node {
	root := view.El("div", "betting-item")
	root.Attrs = map[string]string{"data-item-id": it.id}

	title := view.El("h4", "betting-item__title")
	title.Text = it.title

	odds := view.El("div", "betting-item__odds")
	for _, c := range it.Choices() {
		b := view.El("button")
		if c.Selected {
			b.Class = []string{"selected"}
		}
		b.Attrs = map[string]string{
			"data-choice": strconv.Itoa(c.ID),
			"data-odds":   c.Odds.String(),
		}
		b.Text = c.Label + " " + c.Odds.StringFixed(2)
		odds.Children = append(odds.Children, b)
	}

	root.Children = []view.Node{title, odds}
	return root
}
