package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/betting-list/internal/betting/item"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

// Market1x2 é o único mercado exibido na lista
const Market1x2 = "1x2"

// Match é uma partida com as odds atuais do mercado 1x2
type Match struct {
	EventID  string          `json:"eventId"`
	HomeTeam string          `json:"homeTeam"`
	AwayTeam string          `json:"awayTeam"`
	HomeOdd  decimal.Decimal `json:"homeOdd"`
	DrawOdd  decimal.Decimal `json:"drawOdd"`
	AwayOdd  decimal.Decimal `json:"awayOdd"`
	Version  int             `json:"version"`
}

// FromUpdate converte uma atualização de odds do Kafka
func FromUpdate(u events.OddsUpdate) Match {
	return Match{
		EventID:  u.EventID,
		HomeTeam: u.HomeTeam,
		AwayTeam: u.AwayTeam,
		HomeOdd:  u.Odds.Home,
		DrawOdd:  u.Odds.Draw,
		AwayOdd:  u.Odds.Away,
		Version:  u.Version,
	}
}

func (m Match) Title() string {
	return m.HomeTeam + " x " + m.AwayTeam
}

// Choices retorna as odds na ordem 1, X, 2
func (m Match) Choices() []item.Choice {
	return []item.Choice{
		{ID: 0, Label: "1", Odds: m.HomeOdd},
		{ID: 1, Label: "X", Odds: m.DrawOdd},
		{ID: 2, Label: "2", Odds: m.AwayOdd},
	}
}

// Spec monta o item de aposta da partida
func (m Match) Spec() item.Spec {
	return item.Spec{ID: m.EventID, Title: m.Title(), Choices: m.Choices()}
}
