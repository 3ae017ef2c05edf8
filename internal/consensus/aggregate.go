package consensus

import (
	"math"
	"sort"
)

// PredictionInput is one live prediction as seen by the aggregator.
type PredictionInput struct {
	Value      float64
	Confidence string
}

// ConfidenceCounts buckets predictions by their qualitative confidence tag.
type ConfidenceCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Distribution buckets prediction values into four ranges. Bucket bounds are
// half-open except the last: [0,25), [25,50), [50,75), [75,100].
type Distribution struct {
	Range0To25   int `json:"range_0_25"`
	Range25To50  int `json:"range_25_50"`
	Range50To75  int `json:"range_50_75"`
	Range75To100 int `json:"range_75_100"`
}

// Summary is the consensus view over a market's live prediction set. With zero
// predictions every statistic is nil and Count is 0; callers treat that as
// "no consensus yet", not an error. StdDeviation is nil when Count < 2.
type Summary struct {
	Count        int              `json:"count"`
	Median       *float64         `json:"median"`
	Mean         *float64         `json:"mean"`
	StdDeviation *float64         `json:"std_deviation"`
	Confidence   ConfidenceCounts `json:"confidence"`
	Distribution Distribution     `json:"distribution"`
}

// Probability is the consensus probability: the interpolated median of the
// live prediction values. Nil when there are no predictions.
func (s Summary) Probability() *float64 {
	return s.Median
}

// Aggregate reduces a market's live predictions to summary statistics.
func Aggregate(preds []PredictionInput) Summary {
	out := Summary{Count: len(preds)}
	if len(preds) == 0 {
		return out
	}

	values := make([]float64, 0, len(preds))
	for _, p := range preds {
		values = append(values, p.Value)
		switch p.Confidence {
		case "high":
			out.Confidence.High++
		case "medium":
			out.Confidence.Medium++
		case "low":
			out.Confidence.Low++
		}
		switch {
		case p.Value < 25:
			out.Distribution.Range0To25++
		case p.Value < 50:
			out.Distribution.Range25To50++
		case p.Value < 75:
			out.Distribution.Range50To75++
		default:
			out.Distribution.Range75To100++
		}
	}
	sort.Float64s(values)

	median := percentile(values, 0.5)
	mean := meanOf(values)
	out.Median = &median
	out.Mean = &mean

	if len(values) >= 2 {
		sd := stdDev(values, mean)
		out.StdDeviation = &sd
	}
	return out
}

// percentile applies linear interpolation between the two closest ranks
// (the continuous variant, matching percentile_cont). values must be sorted.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 1 {
		return values[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return values[lo]
	}
	frac := pos - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo])
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation (n-1 denominator). Callers guard
// against len < 2.
func stdDev(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
