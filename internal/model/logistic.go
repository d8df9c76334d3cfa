package model

import (
	"errors"
	"math"

	"github.com/Skufu/heartcheck/internal/heartrisk"
)

// Logistic is a fitted binary logistic-regression classifier.
type Logistic struct {
	coef      []float64
	intercept float64
	threshold float64
}

func NewLogistic(coef []float64, intercept, threshold float64) (*Logistic, error) {
	if len(coef) == 0 {
		return nil, errors.New("logistic: coef is empty")
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}
	return &Logistic{
		coef:      append([]float64(nil), coef...),
		intercept: intercept,
		threshold: threshold,
	}, nil
}

func (m *Logistic) Width() int {
	return len(m.coef)
}

// Probability is the sigmoid of the decision function.
func (m *Logistic) Probability(vec []float64) (float64, error) {
	if err := heartrisk.CheckWidth("classifier", len(m.coef), len(vec)); err != nil {
		return 0, err
	}
	z := m.intercept
	for i, v := range vec {
		z += m.coef[i] * v
	}
	return sigmoid(z), nil
}

func (m *Logistic) Predict(vec []float64) (int, error) {
	p, err := m.Probability(vec)
	if err != nil {
		return 0, err
	}
	if p > m.threshold {
		return int(heartrisk.HighRisk), nil
	}
	return int(heartrisk.LowRisk), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
