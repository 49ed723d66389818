package trends_test

import (
	"testing"

	"jobpulse/trends-service/internal/model"
	"jobpulse/trends-service/internal/trends"
)

// ── WeightedMedian ─────────────────────────────────────────────────────────

func TestWeightedMedian_CrossesHalfTotal(t *testing.T) {
	// Total weight 4, half is 2; cumulative weight reaches 2 only at the
	// last pair, so the weighted median is 300.
	pairs := []trends.WeightedValue{
		{Value: 100, Weight: 1},
		{Value: 200, Weight: 1},
		{Value: 300, Weight: 2},
	}
	got, ok := trends.WeightedMedian(pairs)
	if !ok {
		t.Fatal("WeightedMedian returned not-ok")
	}
	if got != 300 {
		t.Errorf("WeightedMedian = %v, want 300", got)
	}
}

func TestWeightedMedian_EvenSplitTakesUpper(t *testing.T) {
	// Cumulative weight exactly at half does not count as crossing it.
	pairs := []trends.WeightedValue{
		{Value: 100, Weight: 1},
		{Value: 200, Weight: 1},
	}
	got, ok := trends.WeightedMedian(pairs)
	if !ok || got != 200 {
		t.Errorf("WeightedMedian = %v ok=%v, want 200 true", got, ok)
	}
}

func TestWeightedMedian_SinglePair(t *testing.T) {
	got, ok := trends.WeightedMedian([]trends.WeightedValue{{Value: 120000, Weight: 7}})
	if !ok || got != 120000 {
		t.Errorf("WeightedMedian = %v ok=%v, want 120000 true", got, ok)
	}
}

func TestWeightedMedian_UnsortedInput(t *testing.T) {
	pairs := []trends.WeightedValue{
		{Value: 300, Weight: 1},
		{Value: 100, Weight: 1},
		{Value: 200, Weight: 1},
	}
	got, ok := trends.WeightedMedian(pairs)
	if !ok || got != 200 {
		t.Errorf("WeightedMedian = %v ok=%v, want 200 true", got, ok)
	}
}

func TestWeightedMedian_NoWeight(t *testing.T) {
	if _, ok := trends.WeightedMedian(nil); ok {
		t.Error("WeightedMedian(nil) should return ok=false")
	}
	if _, ok := trends.WeightedMedian([]trends.WeightedValue{{Value: 100, Weight: 0}}); ok {
		t.Error("zero-weight pairs should return ok=false")
	}
}

// ── Momentum classification ────────────────────────────────────────────────

func TestSignalFor_Thresholds(t *testing.T) {
	cases := []struct {
		delta float64
		want  model.TrendSignal
	}{
		{0.25, model.SignalRising},
		{0.20, model.SignalRising},
		{0.05, model.SignalSteady},
		{-0.05, model.SignalSteady},
		{-0.20, model.SignalFalling},
		{-0.25, model.SignalFalling},
	}
	for _, c := range cases {
		d := c.delta
		if got := trends.SignalFor(&d); got != c.want {
			t.Errorf("SignalFor(%v) = %q, want %q", c.delta, got, c.want)
		}
	}
}

func TestSignalFor_NilIsSteady(t *testing.T) {
	if got := trends.SignalFor(nil); got != model.SignalSteady {
		t.Errorf("SignalFor(nil) = %q, want steady", got)
	}
}

func TestChangePct(t *testing.T) {
	if got, ok := trends.ChangePct(125, 100); !ok || got != 0.25 {
		t.Errorf("ChangePct(125, 100) = %v ok=%v, want 0.25 true", got, ok)
	}
	if _, ok := trends.ChangePct(10, 0); ok {
		t.Error("ChangePct with zero previous should return ok=false")
	}
}

// ── CountMap ───────────────────────────────────────────────────────────────

func TestCountMap_TopNOrderAndTieBreak(t *testing.T) {
	m := trends.NewCountMap()
	m.Add("react", 1)
	m.Add("go", 1)
	m.Add("python", 3)
	m.Add("go", 1)

	got := m.TopN(2)
	if len(got) != 2 {
		t.Fatalf("TopN(2) returned %d entries", len(got))
	}
	if got[0].Key != "python" || got[0].Count != 3 {
		t.Errorf("TopN[0] = %+v, want python/3", got[0])
	}
	if got[1].Key != "go" || got[1].Count != 2 {
		t.Errorf("TopN[1] = %+v, want go/2", got[1])
	}
}

func TestCountMap_TiesBreakByFirstSeen(t *testing.T) {
	m := trends.NewCountMap()
	m.Add("b", 1)
	m.Add("a", 1)
	m.Add("c", 1)

	got := m.TopN(3)
	want := []string{"b", "a", "c"}
	for i, e := range got {
		if e.Key != want[i] {
			t.Errorf("TopN[%d] = %q, want %q (first-seen tie break)", i, e.Key, want[i])
		}
	}
}

func TestCountMap_Merge(t *testing.T) {
	a := trends.NewCountMap()
	a.Add("go", 2)
	b := trends.NewCountMap()
	b.Add("go", 1)
	b.Add("rust", 1)

	a.Merge(b)
	got := a.TopN(0)
	if len(got) != 2 || got[0].Key != "go" || got[0].Count != 3 {
		t.Errorf("merged TopN = %v, want go/3 first", got)
	}
}

// ── DescRank ───────────────────────────────────────────────────────────────

func TestDescRank_OrdersDescending(t *testing.T) {
	if !(trends.DescRank(100) < trends.DescRank(50)) {
		t.Error("DescRank(100) should sort before DescRank(50)")
	}
	if len(trends.DescRank(1)) != len(trends.DescRank(999999)) {
		t.Error("DescRank must be fixed width")
	}
}
