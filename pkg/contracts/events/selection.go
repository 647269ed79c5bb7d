package events

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifica o tipo de evento trafegado no canal de seleção
type Kind string

const (
	KindSelectBetChoice Kind = "SELECT_BET_CHOICE"
	KindItemMounted     Kind = "BET_ITEM_MOUNTED"
	KindItemUnmounted   Kind = "BET_ITEM_UNMOUNTED"
)

// Event é a variante fechada de eventos do canal.
// Somente os tipos deste pacote implementam a interface (método sealed).
type Event interface {
	Kind() Kind
	sealed()
}

// ChoiceSelected é publicado toda vez que o usuário ativa uma odd de um item,
// inclusive quando a odd já estava selecionada
type ChoiceSelected struct {
	ListID   string          `json:"listId,omitempty"`
	ItemID   string          `json:"itemId"`
	ChoiceID int             `json:"choiceId"` // posição da odd no item
	Label    string          `json:"label"`    // "1" | "X" | "2"
	Odds     decimal.Decimal `json:"odds"`
}

// ItemMounted sinaliza que um item entrou na árvore e está sem seleção
type ItemMounted struct {
	ItemID string `json:"itemId"`
}

// ItemUnmounted sinaliza que um item saiu da árvore (seleção descartada)
type ItemUnmounted struct {
	ItemID string `json:"itemId"`
}

func (ChoiceSelected) Kind() Kind { return KindSelectBetChoice }
func (ItemMounted) Kind() Kind    { return KindItemMounted }
func (ItemUnmounted) Kind() Kind  { return KindItemUnmounted }

func (ChoiceSelected) sealed() {}
func (ItemMounted) sealed()    {}
func (ItemUnmounted) sealed()  {}

// Envelope é o formato externo {type, detail} usado em Redis, Kafka e WebSocket
type Envelope struct {
	Type   Kind            `json:"type"`
	Detail json.RawMessage `json:"detail"`
}

// Wrap serializa o evento dentro de um Envelope
func Wrap(e Event) (Envelope, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", e.Kind(), err)
	}
	return Envelope{Type: e.Kind(), Detail: b}, nil
}

// Unwrap reconstrói o evento tipado a partir do Envelope
func Unwrap(env Envelope) (Event, error) {
	switch env.Type {
	case KindSelectBetChoice:
		var e ChoiceSelected
		if err := json.Unmarshal(env.Detail, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindItemMounted:
		var e ItemMounted
		if err := json.Unmarshal(env.Detail, &e); err != nil {
			return nil, err
		}
		return e, nil
	case KindItemUnmounted:
		var e ItemUnmounted
		if err := json.Unmarshal(env.Detail, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}
