package flat

import (
	"errors"
	"math"
	"sort"

	"researcher/internal/vectorstore"
)

// Index is a brute-force exact index. Vectors are kept row-major in one
// slice; label i is the i-th added vector.
type Index struct {
	dim    int
	metric vectorstore.Metric
	data   []float32
}

var _ vectorstore.Index = (*Index)(nil)

// New creates an empty index for vectors of width dim.
func New(dim int, metric vectorstore.Metric) (*Index, error) {
	if dim <= 0 {
		return nil, errors.New("invalid dimension")
	}
	if metric == "" {
		metric = vectorstore.MetricL2
	}
	if metric != vectorstore.MetricL2 && metric != vectorstore.MetricCosine {
		return nil, errors.New("unsupported metric " + string(metric))
	}
	return &Index{dim: dim, metric: metric}, nil
}

func (x *Index) Dimension() int { return x.dim }
func (x *Index) Metric() vectorstore.Metric { return x.metric }
func (x *Index) Len() int { return len(x.data) / x.dim }

// Add appends vectors. Either every vector is added or none is.
func (x *Index) Add(vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != x.dim {
			return &vectorstore.DimensionMismatchError{Want: x.dim, Got: len(v)}
		}
	}
	for _, v := range vectors {
		x.data = append(x.data, v...)
	}
	return nil
}

// Search returns the k nearest labels by ascending distance, ties broken
// by insertion order. Missing slots are padded with NoLabel and +Inf, so
// the result is sized by k; callers bound k.
func (x *Index) Search(query []float32, k int) ([]float32, []int64, error) {
	if len(query) != x.dim {
		return nil, nil, &vectorstore.DimensionMismatchError{Want: x.dim, Got: len(query)}
	}
	if k <= 0 {
		return nil, nil, nil
	}
	n := x.Len()
	dists := make([]float32, n)
	for i := 0; i < n; i++ {
		dists[i] = x.distance(query, x.data[i*x.dim:(i+1)*x.dim])
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })

	distances := make([]float32, k)
	labels := make([]int64, k)
	for i := 0; i < k; i++ {
		if i < n {
			distances[i] = dists[order[i]]
			labels[i] = int64(order[i])
			continue
		}
		distances[i] = float32(math.Inf(1))
		labels[i] = vectorstore.NoLabel
	}
	return distances, labels, nil
}

func (x *Index) distance(a, b []float32) float32 {
	if x.metric == vectorstore.MetricCosine {
		return cosineDistance(a, b)
	}
	return squaredL2(a, b)
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
