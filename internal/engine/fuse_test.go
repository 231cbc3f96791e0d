package engine

import (
	"math"
	"testing"
	"time"
)

func TestRRFFuseHandComputed(t *testing.T) {
	lexical := []string{"a", "b", "c"}
	vector := []string{"b", "a", "d"}

	scores := rrfFuse(60, lexical, vector)

	want := map[string]float64{
		"a": 1.0/61 + 1.0/62,
		"b": 1.0/62 + 1.0/61,
		"c": 1.0 / 63,
		"d": 1.0 / 63,
	}
	if len(scores) != len(want) {
		t.Fatalf("got %d fused chunks, want %d", len(scores), len(want))
	}
	for id, w := range want {
		if got := scores[id]; math.Abs(got-w) > 1e-12 {
			t.Errorf("score[%s] = %.12f, want %.12f", id, got, w)
		}
	}
}

func TestRRFFuseSingleList(t *testing.T) {
	scores := rrfFuse(60, []string{"x", "y"})
	if scores["x"] <= scores["y"] {
		t.Errorf("rank 1 (%f) not above rank 2 (%f)", scores["x"], scores["y"])
	}
}

func TestRRFFuseEmpty(t *testing.T) {
	if scores := rrfFuse(60); len(scores) != 0 {
		t.Errorf("expected no scores, got %v", scores)
	}
}

func TestTimeDecayMonotonic(t *testing.T) {
	const halfLife = 30.0

	prev := timeDecay(0, halfLife)
	if prev != 1 {
		t.Errorf("decay at age 0 = %f, want 1", prev)
	}

	for days := 1; days <= 3650; days *= 2 {
		d := timeDecay(time.Duration(days)*24*time.Hour, halfLife)
		if d >= prev {
			t.Errorf("decay not strictly decreasing at %d days: %f >= %f", days, d, prev)
		}
		if d <= 0 {
			t.Errorf("decay reached zero at %d days", days)
		}
		prev = d
	}
}

func TestTimeDecayHalfLife(t *testing.T) {
	d := timeDecay(30*24*time.Hour, 30)
	if math.Abs(d-0.5) > 1e-9 {
		t.Errorf("decay at one half-life = %f, want 0.5", d)
	}
}
