package model

import "testing"

func TestStatusRankOrder(t *testing.T) {
	for i := 1; i < len(Statuses); i++ {
		if Statuses[i-1].Rank() >= Statuses[i].Rank() {
			t.Errorf("%s does not rank before %s", Statuses[i-1], Statuses[i])
		}
	}
	if Status("bogus").Valid() {
		t.Error("bogus status reported valid")
	}
}

func TestParseStatusLabel(t *testing.T) {
	tests := map[string]Status{
		"":          StatusTodo,
		"À faire":   StatusTodo,
		"En cours":  StatusInProgress,
		"À revoir":  StatusReview,
		"Terminé":   StatusDone,
		"done":      StatusDone,
		"gibberish": StatusTodo,
	}
	for in, want := range tests {
		if got := ParseStatusLabel(in); got != want {
			t.Errorf("ParseStatusLabel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestStatusLabelsParseBack(t *testing.T) {
	for _, s := range Statuses {
		if got := ParseStatusLabel(s.Label()); got != s {
			t.Errorf("label %q parsed to %s, want %s", s.Label(), got, s)
		}
	}
	for _, p := range Priorities {
		if got := ParsePriorityLabel(p.Label()); got != p {
			t.Errorf("label %q parsed to %s, want %s", p.Label(), got, p)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityUrgent.Rank() >= PriorityLow.Rank() {
		t.Error("urgent should sort before low")
	}
	if got := ParsePriorityLabel("whatever"); got != PriorityMedium {
		t.Errorf("unknown priority label = %s", got)
	}
}

func TestRecurrence(t *testing.T) {
	if !Recurrence("none").Valid() || Recurrence("none").Repeats() {
		t.Error(`"none" should be a valid non-repeating alias`)
	}
	if !RecurrenceWeekly.Repeats() || RecurrenceNone.Repeats() {
		t.Error("Repeats mismatch")
	}
	if Recurrence("yearly").Valid() {
		t.Error("yearly reported valid")
	}
}
