package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Skufu/heartcheck/internal/heartrisk"
)

type Weights string

const (
	WeightsUniform  Weights = "uniform"
	WeightsDistance Weights = "distance"
)

type Metric string

const (
	MetricEuclidean Metric = "euclidean"
	MetricManhattan Metric = "manhattan"
)

// KNN is a fitted k-nearest-neighbors classifier. Fit rows are already scaled.
type KNN struct {
	k       int
	weights Weights
	metric  Metric
	fitX    [][]float64
	fitY    []int
	width   int
}

type KNNConfig struct {
	K       int
	Weights Weights
	Metric  Metric
	FitX    [][]float64
	FitY    []int
}

func NewKNN(cfg KNNConfig) (*KNN, error) {
	if len(cfg.FitX) == 0 {
		return nil, errors.New("knn: no fit rows")
	}
	if len(cfg.FitX) != len(cfg.FitY) {
		return nil, fmt.Errorf("knn: %d fit rows but %d labels", len(cfg.FitX), len(cfg.FitY))
	}
	if cfg.K <= 0 {
		cfg.K = 5
	}
	if cfg.K > len(cfg.FitX) {
		return nil, fmt.Errorf("knn: k=%d exceeds %d fit rows", cfg.K, len(cfg.FitX))
	}
	if cfg.Weights == "" {
		cfg.Weights = WeightsUniform
	}
	if cfg.Weights != WeightsUniform && cfg.Weights != WeightsDistance {
		return nil, fmt.Errorf("knn: unknown weights %q", cfg.Weights)
	}
	if cfg.Metric == "" {
		cfg.Metric = MetricEuclidean
	}
	if cfg.Metric != MetricEuclidean && cfg.Metric != MetricManhattan {
		return nil, fmt.Errorf("knn: unknown metric %q", cfg.Metric)
	}

	width := len(cfg.FitX[0])
	if width == 0 {
		return nil, errors.New("knn: fit rows are empty")
	}
	rows := make([][]float64, len(cfg.FitX))
	for i, row := range cfg.FitX {
		if len(row) != width {
			return nil, fmt.Errorf("knn: fit row %d has %d values, want %d", i, len(row), width)
		}
		rows[i] = append([]float64(nil), row...)
	}
	for i, label := range cfg.FitY {
		if label != int(heartrisk.LowRisk) && label != int(heartrisk.HighRisk) {
			return nil, fmt.Errorf("knn: fit label %d is %d, want 0 or 1", i, label)
		}
	}

	return &KNN{
		k:       cfg.K,
		weights: cfg.Weights,
		metric:  cfg.Metric,
		fitX:    rows,
		fitY:    append([]int(nil), cfg.FitY...),
		width:   width,
	}, nil
}

func (m *KNN) Width() int {
	return m.width
}

type neighbor struct {
	index    int
	distance float64
}

func (m *KNN) Predict(vec []float64) (int, error) {
	if err := heartrisk.CheckWidth("classifier", m.width, len(vec)); err != nil {
		return 0, err
	}

	neighbors := make([]neighbor, len(m.fitX))
	for i, row := range m.fitX {
		neighbors[i] = neighbor{index: i, distance: m.distance(row, vec)}
	}
	// stable so equidistant rows keep fit order
	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].distance < neighbors[b].distance
	})
	nearest := neighbors[:m.k]

	votes := map[int]float64{}
	if m.weights == WeightsDistance && nearest[0].distance == 0 {
		// exact matches take the whole vote
		for _, n := range nearest {
			if n.distance == 0 {
				votes[m.fitY[n.index]]++
			}
		}
	} else {
		for _, n := range nearest {
			w := 1.0
			if m.weights == WeightsDistance {
				w = 1 / n.distance
			}
			votes[m.fitY[n.index]] += w
		}
	}

	// ties go to the smaller label
	best, bestVote := 0, -1.0
	for _, label := range []int{int(heartrisk.LowRisk), int(heartrisk.HighRisk)} {
		if v, ok := votes[label]; ok && v > bestVote {
			best, bestVote = label, v
		}
	}
	return best, nil
}

func (m *KNN) distance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		if m.metric == MetricManhattan {
			sum += math.Abs(d)
			continue
		}
		sum += d * d
	}
	if m.metric == MetricManhattan {
		return sum
	}
	return math.Sqrt(sum)
}
