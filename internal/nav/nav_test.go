package nav

import "testing"

func TestNext(t *testing.T) {
	seqs := []int64{1, 2, 3, 5}

	tests := []struct {
		name    string
		current int64
		action  Action
		want    int64
	}{
		{"advance in range", 1, Advance, 2},
		{"retreat in range", 3, Retreat, 2},
		{"stay", 2, Stay, 2},
		{"advance at last clamps to max", 5, Advance, 5},
		{"retreat at first clamps to min", 1, Retreat, 1},
		{"advance into gap clamps to max", 3, Advance, 5},
		{"retreat into gap clamps to min", 5, Retreat, 1},
		{"unknown action stays", 2, Action("sideways"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(seqs, tt.current, tt.action)
			if got != tt.want {
				t.Errorf("Next(%d, %q) = %d, want %d", tt.current, tt.action, got, tt.want)
			}
		})
	}
}

func TestNextEmptySet(t *testing.T) {
	for _, action := range []Action{Advance, Retreat, Stay} {
		if got := Next(nil, 4, action); got != 4 {
			t.Errorf("Next(nil, 4, %q) = %d, want 4", action, got)
		}
	}
}

func TestNextAfterShrink(t *testing.T) {
	// The item set shrank underneath the current position: current itself
	// no longer exists, and staying keeps the stale number while moving
	// clamps into the new range.
	seqs := []int64{10, 11, 12}
	if got := Next(seqs, 40, Advance); got != 12 {
		t.Errorf("advance from stale position = %d, want 12", got)
	}
	if got := Next(seqs, 40, Retreat); got != 10 {
		t.Errorf("retreat from stale position = %d, want 10", got)
	}
	if got := Next(seqs, 40, Stay); got != 40 {
		t.Errorf("stay from stale position = %d, want 40", got)
	}
}
