package topics

const (
	// Odds
	OddsUpdates = "odds_updates"

	// Seleções
	BetChoiceSelected = "bet_choice_selected"

	// Redis Pub/Sub
	ChoiceBroadcast = "bet_choice_broadcast"
)
