package analytics

import (
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"SectorVol/internal/domain/models"
)

const eulerGamma = 0.5772156649015329

// DetectorConfig is the immutable configuration of the isolation forest.
type DetectorConfig struct {
	Contamination float64 // expected outlier fraction, in (0, 0.5]
	Seed          uint64
	Trees         int
	MaxSamples    int // per-tree subsample cap
}

// DefaultDetectorConfig returns 10% contamination, seed 42, 100 trees of
// up to 256 samples.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{Contamination: 0.10, Seed: 42, Trees: 100, MaxSamples: 256}
}

// FitPredict fits an isolation forest on data (one vector per row) and labels
// every row. The result depends only on data and cfg. Empty input gives an
// empty result; input the forest cannot partition is labelled all normal.
func FitPredict(data [][]float64, cfg DetectorConfig) []models.Label {
	labels := make([]models.Label, len(data))
	for i := range labels {
		labels[i] = models.LabelNormal
	}
	if degenerate(data) || cfg.Contamination <= 0 || cfg.Trees <= 0 {
		return labels
	}

	scores := AnomalyScores(data, cfg)
	// Lower is more abnormal; the contamination quantile is the cut.
	neg := make([]float64, len(scores))
	for i, s := range scores {
		neg[i] = -s
	}
	offset := percentile(neg, 100*cfg.Contamination)
	for i, v := range neg {
		if v < offset {
			labels[i] = models.LabelOutlier
		}
	}
	return labels
}

// AnomalyScores returns the isolation score 2^(-E[h(x)]/c(psi)) of every row.
// Scores close to 1 are easy to isolate. Rows are an unordered set: a row's
// score does not depend on where it sits in data.
func AnomalyScores(data [][]float64, cfg DetectorConfig) []float64 {
	n := len(data)
	psi := cfg.MaxSamples
	if psi <= 0 || psi > n {
		psi = n
	}
	limit := int(math.Ceil(math.Log2(math.Max(float64(psi), 2))))
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	// Subsamples are drawn over rows in value order, so equal inputs in any
	// order grow the same trees. Equal rows are interchangeable.
	canonical := make([]int, n)
	for i := range canonical {
		canonical[i] = i
	}
	slices.SortStableFunc(canonical, func(a, b int) int {
		return slices.Compare(data[a], data[b])
	})

	depths := make([]float64, n)
	idx := make([]int, n)
	for t := 0; t < cfg.Trees; t++ {
		copy(idx, canonical)
		// partial Fisher-Yates: first psi entries are a sample without replacement
		for i := 0; i < psi; i++ {
			j := i + rng.IntN(n-i)
			idx[i], idx[j] = idx[j], idx[i]
		}
		sample := append([]int(nil), idx[:psi]...)
		root := grow(data, sample, 0, limit, rng)
		for i, x := range data {
			depths[i] += root.pathLength(x, 0)
		}
	}

	norm := averagePathLength(psi)
	scores := make([]float64, n)
	for i, d := range depths {
		scores[i] = math.Pow(2, -(d/float64(cfg.Trees))/norm)
	}
	return scores
}

type node struct {
	feature     int
	split       float64
	left, right *node
	size        int
}

func (nd *node) leaf() bool { return nd.left == nil }

func grow(data [][]float64, rows []int, depth, limit int, rng *rand.Rand) *node {
	if depth >= limit || len(rows) <= 1 {
		return &node{size: len(rows)}
	}

	width := len(data[rows[0]])
	var candidates []int
	lo := make([]float64, width)
	hi := make([]float64, width)
	for f := 0; f < width; f++ {
		lo[f], hi[f] = math.Inf(1), math.Inf(-1)
		for _, r := range rows {
			v := data[r][f]
			lo[f] = math.Min(lo[f], v)
			hi[f] = math.Max(hi[f], v)
		}
		if hi[f] > lo[f] {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return &node{size: len(rows)}
	}

	f := candidates[rng.IntN(len(candidates))]
	split := lo[f] + rng.Float64()*(hi[f]-lo[f])
	if split >= hi[f] {
		split = lo[f]
	}

	var left, right []int
	for _, r := range rows {
		if data[r][f] <= split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &node{
		feature: f,
		split:   split,
		left:    grow(data, left, depth+1, limit, rng),
		right:   grow(data, right, depth+1, limit, rng),
	}
}

func (nd *node) pathLength(x []float64, depth int) float64 {
	if nd.leaf() {
		return float64(depth) + averagePathLength(nd.size)
	}
	if x[nd.feature] <= nd.split {
		return nd.left.pathLength(x, depth+1)
	}
	return nd.right.pathLength(x, depth+1)
}

// averagePathLength is c(n), the mean path length of an unsuccessful BST search.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// degenerate reports input on which no outlier can be claimed: fewer than two
// rows, ragged or non-finite values, or no column that varies.
func degenerate(data [][]float64) bool {
	if len(data) < 2 || len(data[0]) == 0 {
		return true
	}
	width := len(data[0])
	varies := false
	for _, row := range data {
		if len(row) != width {
			return true
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
			if v != data[0][j] {
				varies = true
			}
		}
	}
	return !varies
}

// percentile matches numpy's default linear interpolation between order statistics.
func percentile(xs []float64, p float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}
