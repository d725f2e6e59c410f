package vectorstore

import (
	"fmt"
	"strings"
)

// Metric selects how the distance between two vectors is measured.
// Smaller distances always mean more similar vectors.
type Metric string

const (
	// MetricL2 is the squared Euclidean distance.
	MetricL2 Metric = "l2"
	// MetricCosine is one minus the cosine similarity.
	MetricCosine Metric = "cosine"
)

// NoLabel fills result slots that have no stored vector behind them, which
// happens whenever k exceeds the number of stored vectors.
const NoLabel int64 = -1

// ParseMetric maps a config value to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricL2, "":
		return MetricL2, nil
	case MetricCosine:
		return MetricCosine, nil
	default:
		return "", fmt.Errorf("unknown distance metric: %s", s)
	}
}

// DimensionMismatchError reports a vector whose width differs from the
// width fixed for the index.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: index has %d, got %d", e.Want, e.Got)
}

// Index is an exact nearest-neighbor index addressed by insertion position.
// Search always returns exactly k slots ordered by non-decreasing distance;
// slots beyond the stored vectors carry NoLabel.
type Index interface {
	Dimension() int
	Len() int
	Metric() Metric
	Add(vectors [][]float32) error
	Search(query []float32, k int) (distances []float32, labels []int64, err error)
}
