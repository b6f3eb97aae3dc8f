package anomaly

import (
	"math"
	"math/rand"
	"sort"

	"TrendPulse/internal/domain/models"
	domsvc "TrendPulse/internal/domain/service"
)

// EnsembleDetector scores each observation with a seeded isolation forest
// over the 1-dimensional value space and flags the top contamination
// fraction of the series. The seed makes runs exactly reproducible, which
// the report assembler relies on.
type EnsembleDetector struct {
	Contamination float64
	Seed          int64
	Trees         int
	SampleSize    int
}

func (d EnsembleDetector) Name() string { return "ensemble" }

func (d EnsembleDetector) Detect(s models.Series) []models.Day {
	n := s.Len()
	if n == 0 {
		return nil
	}
	lo, hi := s.Values[0], s.Values[0]
	for _, v := range s.Values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		// constant series: no point is more isolated than any other
		return nil
	}

	trees := d.Trees
	if trees <= 0 {
		trees = 100
	}
	sample := d.SampleSize
	if sample <= 0 || sample > n {
		sample = 256
	}
	if sample > n {
		sample = n
	}

	rng := rand.New(rand.NewSource(d.Seed))
	maxDepth := int(math.Ceil(math.Log2(float64(sample))))

	depths := make([]float64, n)
	for t := 0; t < trees; t++ {
		idx := rng.Perm(n)[:sample]
		vals := make([]float64, sample)
		for i, j := range idx {
			vals[i] = s.Values[j]
		}
		root := buildIsoTree(rng, vals, 0, maxDepth)
		for i, v := range s.Values {
			depths[i] += pathLength(root, v, 0)
		}
	}

	norm := avgPathLength(sample)
	scored := make([]struct {
		idx   int
		score float64
	}, n)
	for i := range depths {
		avg := depths[i] / float64(trees)
		scored[i] = struct {
			idx   int
			score float64
		}{i, math.Pow(2, -avg/norm)}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].score != scored[b].score {
			return scored[a].score > scored[b].score
		}
		return scored[a].idx < scored[b].idx
	})

	k := int(math.Ceil(d.Contamination * float64(n)))
	if k > n {
		k = n
	}

	flagged := make([]int, 0, k)
	for _, sc := range scored[:k] {
		flagged = append(flagged, sc.idx)
	}
	sort.Ints(flagged)

	out := make([]models.Day, 0, k)
	for _, i := range flagged {
		out = append(out, s.Dates[i])
	}
	return out
}

type isoNode struct {
	split       float64
	left, right *isoNode
	size        int
}

func buildIsoTree(rng *rand.Rand, vals []float64, depth, maxDepth int) *isoNode {
	if len(vals) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(vals)}
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isoNode{size: len(vals)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range vals {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	return &isoNode{
		split: split,
		left:  buildIsoTree(rng, left, depth+1, maxDepth),
		right: buildIsoTree(rng, right, depth+1, maxDepth),
	}
}

func pathLength(node *isoNode, v float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if v < node.split {
		return pathLength(node.left, v, depth+1)
	}
	return pathLength(node.right, v, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST search
// among n points, the standard isolation forest normalizer.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	const euler = 0.5772156649
	h := math.Log(float64(n-1)) + euler
	return 2*h - 2*float64(n-1)/float64(n)
}

var _ domsvc.Detector = EnsembleDetector{}
