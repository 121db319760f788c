package motionlite

import "testing"

func TestNewHumanLaterPartWins(t *testing.T) {
	human := NewHuman([]BodyPart{
		{Part: Nose, X: 0.1, Y: 0.1, Score: 0.2},
		{Part: Nose, X: 0.5, Y: 0.5, Score: 0.9},
	})

	if len(human.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(human.Parts))
	}

	if nose := human.Parts[Nose]; nose.Score != 0.9 {
		t.Errorf("expected later part to win, got %+v", nose)
	}
}

func TestHumanHas(t *testing.T) {
	human := NewHuman([]BodyPart{
		{Part: Neck, X: 0.3, Y: 0.5, Score: 0.8},
	})

	if !human.Has(Neck) {
		t.Error("expected neck to be present")
	}

	if human.Has(Nose) {
		t.Error("expected nose to be absent")
	}
}

func TestHumanCloneIndependent(t *testing.T) {
	human := NewHuman([]BodyPart{
		{Part: Neck, X: 0.3, Y: 0.5, Score: 0.8},
	})

	clone := human.Clone()

	clone.Parts[Nose] = BodyPart{Part: Nose, X: 0.1, Y: 0.5, Score: 0.9}

	if human.Has(Nose) {
		t.Error("modifying the clone changed the original")
	}

	if !clone.Has(Neck) {
		t.Error("expected clone to carry the original parts")
	}
}

func TestPartIndexString(t *testing.T) {
	tests := []struct {
		part PartIndex
		name string
	}{
		{Nose, "nose"},
		{ShoulderL, "shoulder_l"},
		{EarL, "ear_l"},
		{PartIndexEnd, "end"},
		{PartIndex(-1), "end"},
	}

	for _, tc := range tests {
		if got := tc.part.String(); got != tc.name {
			t.Errorf("expected %q, got %q", tc.name, got)
		}
	}
}
