package item

import (
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/radieske/betting-list/internal/betting/channel"
	"github.com/radieske/betting-list/internal/betting/view"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

func newItem(labels ...string) *Item {
	s := Spec{ID: "MATCH_001", Title: "Flamengo x Palmeiras"}
	for i, l := range labels {
		s.Choices = append(s.Choices, Choice{Label: l, Odds: decimal.NewFromFloat(1.5 + float64(i))})
	}
	return New(s)
}

// recorder guarda os SELECT_BET_CHOICE recebidos
type recorder struct{ got []events.ChoiceSelected }

func (r *recorder) handle(e events.Event) { r.got = append(r.got, e.(events.ChoiceSelected)) }

func mounted(t *testing.T, labels ...string) (*Item, *recorder) {
	t.Helper()
	bus := channel.NewBus(nil)
	rec := &recorder{}
	bus.Subscribe(events.KindSelectBetChoice, rec.handle)
	it := newItem(labels...)
	it.Mount(bus)
	return it, rec
}

func selectedButtons(n view.Node) []view.Node {
	return n.FindAll(func(n view.Node) bool { return n.Tag == "button" && n.HasClass("selected") })
}

func assertOnlySelected(t *testing.T, it *Item, want int) {
	t.Helper()
	for _, c := range it.Choices() {
		if c.Selected != (c.ID == want) {
			t.Fatalf("choice %d selected=%v, want only %d selected", c.ID, c.Selected, want)
		}
	}
	sel := selectedButtons(it.Render())
	if len(sel) != 1 || sel[0].Attr("data-choice") != strconv.Itoa(want) {
		t.Fatalf("rendered selection mismatch: %+v", sel)
	}
}

func TestInitialRenderHasNoSelection(t *testing.T) {
	it, _ := mounted(t, "1", "X", "2")

	if n := len(selectedButtons(it.Render())); n != 0 {
		t.Fatalf("expected 0 selected buttons, got %d", n)
	}
	buttons := it.Render().FindAll(func(n view.Node) bool { return n.Tag == "button" })
	if len(buttons) != 3 {
		t.Fatalf("expected 3 buttons, got %d", len(buttons))
	}
	if _, ok := it.Selected(); ok {
		t.Error("expected NoSelection after mount")
	}
}

func TestActivateSelectsOnlyThatChoice(t *testing.T) {
	for i := 0; i < 3; i++ {
		it, rec := mounted(t, "1", "X", "2")
		if err := it.Activate(i); err != nil {
			t.Fatalf("activate %d: %v", i, err)
		}
		assertOnlySelected(t, it, i)
		if len(rec.got) != 1 || rec.got[0].ChoiceID != i {
			t.Fatalf("expected one event for choice %d, got %+v", i, rec.got)
		}
	}
}

func TestTwoChoiceScenario(t *testing.T) {
	it, rec := mounted(t, "A", "B")

	steps := []struct {
		click    int
		want     []bool
		payload  string
		received int
	}{
		{0, []bool{true, false}, "A", 1},
		{1, []bool{false, true}, "B", 2},
		{1, []bool{false, true}, "B", 3}, // reclique publica de novo
	}

	for _, s := range steps {
		if err := it.Activate(s.click); err != nil {
			t.Fatalf("activate %d: %v", s.click, err)
		}
		for i, c := range it.Choices() {
			if c.Selected != s.want[i] {
				t.Fatalf("after click %d: selected=%v at %d, want %v", s.click, c.Selected, i, s.want[i])
			}
		}
		if len(rec.got) != s.received {
			t.Fatalf("expected %d events, got %d", s.received, len(rec.got))
		}
		last := rec.got[len(rec.got)-1]
		if last.Label != s.payload || last.ItemID != "MATCH_001" {
			t.Errorf("unexpected payload %+v", last)
		}
	}
}

func TestActivationSequenceKeepsSingleSelection(t *testing.T) {
	it, rec := mounted(t, "1", "X", "2")
	seq := []int{2, 0, 0, 1, 2, 2, 1}

	for n, i := range seq {
		if err := it.Activate(i); err != nil {
			t.Fatalf("activate %d: %v", i, err)
		}
		if got := len(selectedButtons(it.Render())); got != 1 {
			t.Fatalf("step %d: %d selected buttons", n, got)
		}
	}
	if len(rec.got) != len(seq) {
		t.Fatalf("expected %d events, got %d", len(seq), len(rec.got))
	}
	for n, e := range rec.got {
		if e.ChoiceID != seq[n] {
			t.Errorf("event %d: choice %d, want %d", n, e.ChoiceID, seq[n])
		}
	}
	if last := rec.got[len(rec.got)-1]; !last.Odds.Equal(it.Choices()[1].Odds) {
		t.Errorf("last payload odds %s, want %s", last.Odds, it.Choices()[1].Odds)
	}
}

func TestActivateInvalidIndex(t *testing.T) {
	it, rec := mounted(t, "1", "X")
	_ = it.Activate(0)

	for _, i := range []int{-1, 2, 99} {
		err := it.Activate(i)
		if !errors.Is(err, ErrInvalidChoiceIndex) {
			t.Fatalf("activate %d: expected ErrInvalidChoiceIndex, got %v", i, err)
		}
	}
	if idx, ok := it.Selected(); !ok || idx != 0 {
		t.Errorf("invalid activation mutated state: %d %v", idx, ok)
	}
	if len(rec.got) != 1 {
		t.Errorf("invalid activation published: %d events", len(rec.got))
	}
}

func TestActivateBeforeMount(t *testing.T) {
	it := newItem("1", "X")
	if err := it.Activate(0); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
}

func TestUnmountDiscardsSelection(t *testing.T) {
	bus := channel.NewBus(nil)
	var lifecycle []events.Kind
	bus.Subscribe(events.KindItemMounted, func(e events.Event) { lifecycle = append(lifecycle, e.Kind()) })
	bus.Subscribe(events.KindItemUnmounted, func(e events.Event) { lifecycle = append(lifecycle, e.Kind()) })

	it := newItem("1", "X")
	it.Mount(bus)
	_ = it.Activate(1)
	it.Unmount()
	it.Unmount()

	if _, ok := it.Selected(); ok {
		t.Error("selection survived unmount")
	}
	if len(lifecycle) != 2 || lifecycle[0] != events.KindItemMounted || lifecycle[1] != events.KindItemUnmounted {
		t.Errorf("unexpected lifecycle events %v", lifecycle)
	}

	it.Mount(bus)
	if _, ok := it.Selected(); ok {
		t.Error("remount must start without selection")
	}
}

func TestReplaceRecomputesMarker(t *testing.T) {
	it, _ := mounted(t, "1", "X", "2")
	_ = it.Activate(2)

	it.Replace("", []Choice{{Label: "1", Odds: decimal.NewFromInt(2)}, {Label: "X", Odds: decimal.NewFromInt(3)}, {Label: "2", Odds: decimal.NewFromInt(4)}})
	if idx, ok := it.Selected(); !ok || idx != 2 {
		t.Fatalf("selection should survive same-size re-render, got %d %v", idx, ok)
	}
	if sel := selectedButtons(it.Render()); len(sel) != 1 || sel[0].Attr("data-odds") != "4" {
		t.Fatalf("marker not recomputed: %+v", sel)
	}

	it.Replace("", []Choice{{Label: "Yes"}, {Label: "No"}})
	if _, ok := it.Selected(); ok {
		t.Fatal("out of range selection should reset on re-render")
	}
	if n := len(selectedButtons(it.Render())); n != 0 {
		t.Errorf("expected no marker, got %d", n)
	}
}
