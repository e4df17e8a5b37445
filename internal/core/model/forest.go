package model

import (
	"math/rand"
	"slices"
)

// node is either a split (left/right set) or a leaf carrying value.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	value     float64
}

func (n *node) leaf() bool {
	return n.left == nil
}

type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// forest is a bootstrap-aggregated ensemble of regression trees.
type forest struct {
	trees []*node
}

func fitForest(x [][]float64, y []float64, trees int, cfg treeConfig, rng *rand.Rand) *forest {
	f := &forest{trees: make([]*node, 0, trees)}
	n := len(y)
	for range trees {
		sample := make([]int, n)
		for i := range sample {
			// #nosec G404 -- seeded RNG for reproducible bootstrap samples
			sample[i] = rng.Intn(n)
		}
		f.trees = append(f.trees, growTree(x, y, sample, 0, cfg))
	}
	return f
}

func (f *forest) predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += predictTree(t, x)
	}
	return sum / float64(len(f.trees))
}

func predictTree(n *node, x []float64) float64 {
	for !n.leaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func growTree(x [][]float64, y []float64, idx []int, depth int, cfg treeConfig) *node {
	mean, sse := meanSSE(y, idx)
	leaf := &node{value: mean}
	if len(idx) < cfg.minSamplesSplit || sse == 0 {
		return leaf
	}
	if cfg.maxDepth > 0 && depth >= cfg.maxDepth {
		return leaf
	}

	feature, threshold, ok := bestSplit(x, y, idx, sse, cfg.minSamplesLeaf)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      growTree(x, y, left, depth+1, cfg),
		right:     growTree(x, y, right, depth+1, cfg),
		value:     mean,
	}
}

// bestSplit scans every feature for the threshold with the lowest summed
// squared error of the two children.
func bestSplit(x [][]float64, y []float64, idx []int, parentSSE float64, minLeaf int) (int, float64, bool) {
	if minLeaf < 1 {
		minLeaf = 1
	}
	n := len(idx)
	bestFeature, bestThreshold := -1, 0.0
	bestSSE := parentSSE

	sorted := make([]int, n)
	for f := range len(x[idx[0]]) {
		copy(sorted, idx)
		slices.SortStableFunc(sorted, func(a, b int) int {
			switch {
			case x[a][f] < x[b][f]:
				return -1
			case x[a][f] > x[b][f]:
				return 1
			}
			return 0
		})

		totalSum, totalSq := 0.0, 0.0
		for _, i := range sorted {
			totalSum += y[i]
			totalSq += y[i] * y[i]
		}

		leftSum, leftSq := 0.0, 0.0
		for k := 1; k < n; k++ {
			prev := sorted[k-1]
			leftSum += y[prev]
			leftSq += y[prev] * y[prev]
			if k < minLeaf || n-k < minLeaf {
				continue
			}
			lo, hi := x[prev][f], x[sorted[k]][f]
			if lo == hi {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func meanSSE(y []float64, idx []int) (float64, float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	mean := sum / float64(len(idx))
	sse := 0.0
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}
