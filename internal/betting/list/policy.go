package list

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/betting-list/pkg/contracts/events"
)

// Policy é a regra de nível de lista aplicada a cada seleção e mudança de ciclo de vida
type Policy interface {
	OnSelect(l *List, e events.ChoiceSelected)
	OnItemMounted(l *List, itemID string)
	OnItemGone(l *List, itemID string)
}

// PassThrough não faz nada; é o comportamento padrão da lista
type PassThrough struct{}

func (PassThrough) OnSelect(*List, events.ChoiceSelected) {}
func (PassThrough) OnItemMounted(*List, string)           {}
func (PassThrough) OnItemGone(*List, string)              {}

// Pick é a última escolha registrada para um item
type Pick struct {
	ItemID   string          `json:"itemId"`
	ChoiceID int             `json:"choiceId"`
	Label    string          `json:"label"`
	Odds     decimal.Decimal `json:"odds"`
}

// Slip agrega a última escolha de cada item da lista (cupom de apostas).
// Eventos de itens que não pertencem à lista são ignorados.
type Slip struct {
	order []string
	picks map[string]Pick
}

func NewSlip() *Slip {
	return &Slip{picks: make(map[string]Pick)}
}

func (s *Slip) OnSelect(l *List, e events.ChoiceSelected) {
	if !l.Owns(e.ItemID) {
		return
	}
	if _, ok := s.picks[e.ItemID]; !ok {
		s.order = append(s.order, e.ItemID)
	}
	s.picks[e.ItemID] = Pick{ItemID: e.ItemID, ChoiceID: e.ChoiceID, Label: e.Label, Odds: e.Odds}
}

// OnItemMounted descarta uma escolha antiga: item recém-montado não tem seleção
func (s *Slip) OnItemMounted(l *List, itemID string) {
	if l.Owns(itemID) {
		s.OnItemGone(l, itemID)
	}
}

func (s *Slip) OnItemGone(_ *List, itemID string) {
	if _, ok := s.picks[itemID]; !ok {
		return
	}
	delete(s.picks, itemID)
	for i, id := range s.order {
		if id == itemID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

// Picks retorna as escolhas na ordem em que cada item foi escolhido pela primeira vez
func (s *Slip) Picks() []Pick {
	out := make([]Pick, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.picks[id])
	}
	return out
}

// TotalOdds é o produto das odds escolhidas (zero quando o cupom está vazio)
func (s *Slip) TotalOdds() decimal.Decimal {
	if len(s.order) == 0 {
		return decimal.Zero
	}
	total := decimal.NewFromInt(1)
	for _, id := range s.order {
		total = total.Mul(s.picks[id].Odds)
	}
	return total
}
