package model

import (
	"errors"
	"fmt"

	"github.com/Skufu/heartcheck/internal/heartrisk"
)

// StandardScaler applies (x - mean) / scale per column.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, errors.New("standard scaler: mean is empty")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("standard scaler: %d means but %d scales", len(mean), len(scale))
	}
	s := &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: make([]float64, len(scale)),
	}
	for i, v := range scale {
		// a constant training column has zero variance and is left unscaled
		if v == 0 {
			v = 1
		}
		s.scale[i] = v
	}
	return s, nil
}

func (s *StandardScaler) Width() int {
	return len(s.mean)
}

func (s *StandardScaler) Transform(vec []float64) ([]float64, error) {
	if err := heartrisk.CheckWidth("scaler", len(s.mean), len(vec)); err != nil {
		return nil, err
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// MinMaxScaler applies x*scale + min per column.
type MinMaxScaler struct {
	min   []float64
	scale []float64
}

func NewMinMaxScaler(min, scale []float64) (*MinMaxScaler, error) {
	if len(scale) == 0 {
		return nil, errors.New("minmax scaler: scale is empty")
	}
	if len(min) != len(scale) {
		return nil, fmt.Errorf("minmax scaler: %d offsets but %d scales", len(min), len(scale))
	}
	return &MinMaxScaler{
		min:   append([]float64(nil), min...),
		scale: append([]float64(nil), scale...),
	}, nil
}

func (s *MinMaxScaler) Width() int {
	return len(s.scale)
}

func (s *MinMaxScaler) Transform(vec []float64) ([]float64, error) {
	if err := heartrisk.CheckWidth("scaler", len(s.scale), len(vec)); err != nil {
		return nil, err
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v*s.scale[i] + s.min[i]
	}
	return out, nil
}
