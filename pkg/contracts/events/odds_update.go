package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Odds de um mercado 1x2
type Odds struct {
	Home decimal.Decimal `json:"home"`
	Draw decimal.Decimal `json:"draw"`
	Away decimal.Decimal `json:"away"`
}

// Evento consumido do tópico "odds_updates"; dispara a re-renderização dos itens
type OddsUpdate struct {
	EventID   string    `json:"event_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Market    string    `json:"market"` // "1x2"
	Odds      Odds      `json:"odds"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`
	Version   int       `json:"version"`
}
