package forest

import (
	"math/rand/v2"
	"sort"
)

const leaf = -1

type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

type tree struct {
	nodes []node
}

func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.feature == leaf {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

type builder struct {
	x               [][]float64
	y               []float64
	nFeatures       int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	rng             *rand.Rand

	// accumulated squared-error decrease per feature for the tree being grown
	importance []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// grow appends the subtree for idx to t and returns its node index.
func (b *builder) grow(t *tree, idx []int, depth int) int {
	sum, sse := b.moments(idx)
	self := len(t.nodes)
	t.nodes = append(t.nodes, node{feature: leaf, value: sum / float64(len(idx))})

	if len(idx) < b.minSamplesSplit || sse <= 1e-12 || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return self
	}

	best, ok := b.bestSplit(idx, sse)
	if !ok {
		return self
	}
	b.importance[best.feature] += best.gain

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.x[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(t, left, depth+1)
	r := b.grow(t, right, depth+1)
	t.nodes[self] = node{feature: best.feature, threshold: best.threshold, left: l, right: r}
	return self
}

func (b *builder) moments(idx []int) (sum, sse float64) {
	for _, i := range idx {
		sum += b.y[i]
	}
	mean := sum / float64(len(idx))
	for _, i := range idx {
		d := b.y[i] - mean
		sse += d * d
	}
	return sum, sse
}

// bestSplit scans every feature in random order and keeps the first split
// with the largest squared-error decrease.
func (b *builder) bestSplit(idx []int, parentSSE float64) (split, bool) {
	var (
		best  split
		found bool
	)
	sorted := make([]int, len(idx))
	n := len(idx)

	for _, f := range b.rng.Perm(b.nFeatures) {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool {
			return b.x[sorted[a]][f] < b.x[sorted[c]][f]
		})

		var totalSum, totalSq float64
		for _, i := range sorted {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			v := b.y[sorted[k]]
			leftSum += v
			leftSq += v * v

			nl := k + 1
			nr := n - nl
			if nl < b.minSamplesLeaf || nr < b.minSamplesLeaf {
				continue
			}
			lo, hi := b.x[sorted[k]][f], b.x[sorted[k+1]][f]
			if lo >= hi {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			childSSE := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			gain := parentSSE - childSSE

			if !found || gain > best.gain {
				thr := lo + (hi-lo)/2
				if thr >= hi {
					thr = lo
				}
				best = split{feature: f, threshold: thr, gain: gain}
				found = true
			}
		}
	}

	if found && best.gain < 0 {
		best.gain = 0
	}
	return best, found
}
