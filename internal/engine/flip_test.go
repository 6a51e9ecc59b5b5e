package engine

import "testing"

func TestRequiredCopies(t *testing.T) {
	cases := []struct {
		maxRank int
		want    int
	}{
		{0, 1},
		{1, 3},
		{2, 6},
		{3, 10},
		{5, 21},
	}
	for _, c := range cases {
		if got := RequiredCopies(c.maxRank); got != c.want {
			t.Errorf("RequiredCopies(%d) = %d, want %d", c.maxRank, got, c.want)
		}
	}
}

func TestFlipMargin(t *testing.T) {
	// 21 rank-0 copies at 10p vs one rank-5 at 150p.
	if got := FlipMargin(5, 10, 150); got != 60.0 {
		t.Fatalf("FlipMargin = %v, want 60.0", got)
	}
}

func TestFlipMargin_UndefinedEndpoints(t *testing.T) {
	cases := []struct {
		name       string
		rank0, max float64
	}{
		{"zero rank0", 0, 150},
		{"zero max", 10, 0},
		{"negative rank0", -1, 150},
		{"sentinel max", 10, PriceNotFound},
		{"both zero", 0, 0},
	}
	for _, c := range cases {
		if got := FlipMargin(5, c.rank0, c.max); got != 0 {
			t.Errorf("%s: FlipMargin = %v, want 0", c.name, got)
		}
	}
}
