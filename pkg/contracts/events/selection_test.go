package events

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWrapUnwrapChoiceSelected(t *testing.T) {
	in := ChoiceSelected{ItemID: "MATCH_001", ChoiceID: 2, Label: "2", Odds: decimal.RequireFromString("3.10")}

	env, err := Wrap(in)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if env.Type != KindSelectBetChoice {
		t.Fatalf("expected type %s, got %s", KindSelectBetChoice, env.Type)
	}

	out, err := Unwrap(env)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	got, ok := out.(ChoiceSelected)
	if !ok {
		t.Fatalf("expected ChoiceSelected, got %T", out)
	}
	if got.ItemID != in.ItemID || got.ChoiceID != in.ChoiceID || !got.Odds.Equal(in.Odds) {
		t.Errorf("payload mismatch: %+v vs %+v", got, in)
	}
}

func TestUnwrapUnknownType(t *testing.T) {
	if _, err := Unwrap(Envelope{Type: "NOPE", Detail: []byte(`{}`)}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
