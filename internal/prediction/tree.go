package prediction

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a CART regression tree. Leaves carry the mean
// label of their partition; internal nodes split on feature <= threshold.
type treeNode struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *treeNode `json:"l,omitempty"`
	Right     *treeNode `json:"r,omitempty"`
	Value     float64   `json:"v"`
	Leaf      bool      `json:"leaf,omitempty"`
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// treeBuilder grows variance-reducing regression trees and accumulates
// impurity decreases per feature for importance reporting.
type treeBuilder struct {
	rows       [][]float64
	labels     []float64
	maxDepth   int
	minLeaf    int
	importance []float64
}

func newTreeBuilder(rows [][]float64, labels []float64, maxDepth, minLeaf int) *treeBuilder {
	return &treeBuilder{
		rows:       rows,
		labels:     labels,
		maxDepth:   maxDepth,
		minLeaf:    minLeaf,
		importance: make([]float64, len(rows[0])),
	}
}

func (b *treeBuilder) build(idx []int, depth int) *treeNode {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.labels[i]
		sumSq += b.labels[i] * b.labels[i]
	}
	n := float64(len(idx))
	mean := sum / n
	sse := sumSq - sum*sum/n

	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf || sse <= 0 {
		return &treeNode{Leaf: true, Value: mean}
	}

	feature, threshold, gain := b.bestSplit(idx, sse)
	if gain <= 0 {
		return &treeNode{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if b.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.importance[feature] += gain

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
		Value:     mean,
	}
}

// bestSplit scans every feature for the threshold with the largest
// reduction in sum of squared errors
func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (feature int, threshold, gain float64) {
	feature = -1
	order := make([]int, len(idx))

	for f := range b.rows[0] {
		copy(order, idx)
		sort.Slice(order, func(i, j int) bool {
			return b.rows[order[i]][f] < b.rows[order[j]][f]
		})

		leftSum, leftSq := 0.0, 0.0
		totalSum, totalSq := 0.0, 0.0
		for _, i := range order {
			totalSum += b.labels[i]
			totalSq += b.labels[i] * b.labels[i]
		}

		for k := 0; k < len(order)-1; k++ {
			y := b.labels[order[k]]
			leftSum += y
			leftSq += y * y

			// Only split between distinct feature values
			if b.rows[order[k]][f] == b.rows[order[k+1]][f] {
				continue
			}

			nLeft := float64(k + 1)
			nRight := float64(len(order) - k - 1)
			if int(nLeft) < b.minLeaf || int(nRight) < b.minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq

			leftSSE := leftSq - leftSum*leftSum/nLeft
			rightSSE := rightSq - rightSum*rightSum/nRight
			g := parentSSE - leftSSE - rightSSE

			if g > gain {
				gain = g
				feature = f
				threshold = (b.rows[order[k]][f] + b.rows[order[k+1]][f]) / 2
			}
		}
	}

	return feature, threshold, gain
}

const (
	forestTrees    = 100
	forestMaxDepth = 10
	boostingTrees  = 100
	boostingDepth  = 3
	boostingRate   = 0.1
)

// forestModel is a bootstrap ensemble of regression trees
type forestModel struct {
	Trees         []*treeNode `json:"trees"`
	ImportanceRaw []float64   `json:"importance"`
}

func (m *forestModel) fit(rows [][]float64, labels []float64, rng *rand.Rand) error {
	n := len(rows)
	m.Trees = make([]*treeNode, 0, forestTrees)
	m.ImportanceRaw = make([]float64, len(rows[0]))

	for t := 0; t < forestTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}

		b := newTreeBuilder(rows, labels, forestMaxDepth, 1)
		m.Trees = append(m.Trees, b.build(idx, 0))
		for j, v := range b.importance {
			m.ImportanceRaw[j] += v
		}
	}
	return nil
}

func (m *forestModel) predictRow(row []float64) float64 {
	sum := 0.0
	for _, t := range m.Trees {
		sum += t.predict(row)
	}
	return sum / float64(len(m.Trees))
}

func (m *forestModel) importance() []float64 {
	return normalizeImportance(m.ImportanceRaw)
}

// boostingModel is least-squares gradient boosting over shallow trees
type boostingModel struct {
	Init          float64     `json:"init"`
	LearningRate  float64     `json:"learning_rate"`
	Trees         []*treeNode `json:"trees"`
	ImportanceRaw []float64   `json:"importance"`
}

func (m *boostingModel) fit(rows [][]float64, labels []float64, _ *rand.Rand) error {
	n := len(rows)
	m.LearningRate = boostingRate
	m.ImportanceRaw = make([]float64, len(rows[0]))
	m.Trees = make([]*treeNode, 0, boostingTrees)

	sum := 0.0
	for _, y := range labels {
		sum += y
	}
	m.Init = sum / float64(n)

	residual := make([]float64, n)
	for i, y := range labels {
		residual[i] = y - m.Init
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	for t := 0; t < boostingTrees; t++ {
		b := newTreeBuilder(rows, residual, boostingDepth, 1)
		tree := b.build(idx, 0)
		m.Trees = append(m.Trees, tree)
		for j, v := range b.importance {
			m.ImportanceRaw[j] += v
		}

		for i := range residual {
			residual[i] -= m.LearningRate * tree.predict(rows[i])
		}
	}
	return nil
}

func (m *boostingModel) predictRow(row []float64) float64 {
	v := m.Init
	for _, t := range m.Trees {
		v += m.LearningRate * t.predict(row)
	}
	return v
}

func (m *boostingModel) importance() []float64 {
	return normalizeImportance(m.ImportanceRaw)
}

// normalizeImportance scales raw impurity decreases to sum to 1. A model
// that never split (constant labels) reports a uniform vector.
func normalizeImportance(raw []float64) []float64 {
	total := 0.0
	for _, v := range raw {
		total += v
	}

	out := make([]float64, len(raw))
	if total == 0 {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	for i, v := range raw {
		out[i] = v / total
	}
	return out
}
