package consensus

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	if s.Count != 0 {
		t.Fatalf("count=%d want 0", s.Count)
	}
	if s.Median != nil || s.Mean != nil || s.StdDeviation != nil {
		t.Fatalf("expected nil statistics for empty set: %+v", s)
	}
	if s.Probability() != nil {
		t.Fatalf("expected nil probability for empty set")
	}
}

func TestAggregate_SingleValue(t *testing.T) {
	s := Aggregate([]PredictionInput{{Value: 42, Confidence: "high"}})
	if s.Count != 1 {
		t.Fatalf("count=%d want 1", s.Count)
	}
	if s.Median == nil || *s.Median != 42 {
		t.Fatalf("median=%v want 42", s.Median)
	}
	if s.Mean == nil || *s.Mean != 42 {
		t.Fatalf("mean=%v want 42", s.Mean)
	}
	if s.StdDeviation != nil {
		t.Fatalf("std deviation should be nil with a single prediction")
	}
	if s.Confidence.High != 1 {
		t.Fatalf("high=%d want 1", s.Confidence.High)
	}
}

func TestAggregate_MedianOddCount(t *testing.T) {
	s := Aggregate([]PredictionInput{{Value: 30}, {Value: 50}, {Value: 70}})
	if s.Median == nil || *s.Median != 50 {
		t.Fatalf("median=%v want 50", s.Median)
	}
	if s.Mean == nil || *s.Mean != 50 {
		t.Fatalf("mean=%v want 50", s.Mean)
	}
	if s.StdDeviation == nil || *s.StdDeviation <= 0 {
		t.Fatalf("std deviation=%v want > 0", s.StdDeviation)
	}
}

func TestAggregate_MedianInterpolatesEvenCount(t *testing.T) {
	s := Aggregate([]PredictionInput{{Value: 10}, {Value: 20}, {Value: 60}, {Value: 80}})
	if s.Median == nil || !almostEqual(*s.Median, 40) {
		t.Fatalf("median=%v want 40", s.Median)
	}
}

func TestAggregate_MedianInterpolationNotNearestRank(t *testing.T) {
	// 0.5 percentile over [10 20 30 40] sits exactly between ranks 1 and 2.
	s := Aggregate([]PredictionInput{{Value: 10}, {Value: 40}, {Value: 20}, {Value: 30}})
	if s.Median == nil || !almostEqual(*s.Median, 25) {
		t.Fatalf("median=%v want 25", s.Median)
	}
}

func TestAggregate_MedianWithinRange(t *testing.T) {
	sets := [][]PredictionInput{
		{{Value: 0}, {Value: 0}},
		{{Value: 100}, {Value: 100}, {Value: 100}},
		{{Value: 0}, {Value: 100}},
		{{Value: 13.5}, {Value: 87.2}, {Value: 44.4}, {Value: 61.9}},
	}
	for _, preds := range sets {
		s := Aggregate(preds)
		if s.Median == nil {
			t.Fatalf("median nil for %v", preds)
		}
		if *s.Median < 0 || *s.Median > 100 {
			t.Fatalf("median=%v out of [0,100] for %v", *s.Median, preds)
		}
	}
}

func TestAggregate_ConfidenceCounts(t *testing.T) {
	s := Aggregate([]PredictionInput{
		{Value: 10, Confidence: "high"},
		{Value: 20, Confidence: "high"},
		{Value: 30, Confidence: "medium"},
		{Value: 40, Confidence: "low"},
		{Value: 50},
	})
	if s.Confidence.High != 2 || s.Confidence.Medium != 1 || s.Confidence.Low != 1 {
		t.Fatalf("confidence=%+v want 2/1/1", s.Confidence)
	}
}

func TestAggregate_Distribution(t *testing.T) {
	s := Aggregate([]PredictionInput{
		{Value: 0}, {Value: 24.9},
		{Value: 25}, {Value: 49},
		{Value: 50}, {Value: 74.5},
		{Value: 75}, {Value: 100},
	})
	d := s.Distribution
	if d.Range0To25 != 2 || d.Range25To50 != 2 || d.Range50To75 != 2 || d.Range75To100 != 2 {
		t.Fatalf("distribution=%+v want 2/2/2/2", d)
	}
}

func TestAggregate_SampleStdDev(t *testing.T) {
	// Values 2,4,4,4,5,5,7,9: mean 5, sample variance 32/7.
	s := Aggregate([]PredictionInput{
		{Value: 2}, {Value: 4}, {Value: 4}, {Value: 4},
		{Value: 5}, {Value: 5}, {Value: 7}, {Value: 9},
	})
	want := math.Sqrt(32.0 / 7.0)
	if s.StdDeviation == nil || !almostEqual(*s.StdDeviation, want) {
		t.Fatalf("std=%v want %v", s.StdDeviation, want)
	}
}
