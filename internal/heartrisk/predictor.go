package heartrisk

import (
	"errors"
	"fmt"
)

type Scaler interface {
	Transform(vec []float64) ([]float64, error)
}

type Classifier interface {
	Predict(vec []float64) (int, error)
}

type Label int

const (
	LowRisk  Label = 0
	HighRisk Label = 1
)

func (l Label) RiskLevel() string {
	if l == HighRisk {
		return "HIGH"
	}
	return "LOW"
}

func (l Label) Message() string {
	if l == HighRisk {
		return "High Risk of Heart Disease"
	}
	return "Low Risk of Heart Disease"
}

// Predict scales vec and classifies it. Width disagreements from either stage
// come back as ErrShapeMismatch; nothing is padded or truncated.
func Predict(vec FeatureVector, scaler Scaler, model Classifier) (Label, error) {
	scaled, err := scaler.Transform(vec)
	if err != nil {
		return 0, fmt.Errorf("scale features: %w", err)
	}
	if err := CheckWidth("scaler output", len(vec), len(scaled)); err != nil {
		return 0, err
	}
	raw, err := model.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("classify features: %w", err)
	}
	switch label := Label(raw); label {
	case LowRisk, HighRisk:
		return label, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedLabel, raw)
	}
}

// Assessment is the outcome of one form submission.
type Assessment struct {
	Input     RawPatientInput
	Vector    FeatureVector
	Label     Label
	Unmatched []string
}

// Predictor holds the read-only artifacts loaded at startup. It is safe for
// concurrent use.
type Predictor struct {
	builder *Builder
	scaler  Scaler
	model   Classifier
}

func NewPredictor(schema *Schema, scaler Scaler, model Classifier) (*Predictor, error) {
	if schema == nil {
		return nil, errors.New("schema is required")
	}
	if scaler == nil {
		return nil, errors.New("scaler is required")
	}
	if model == nil {
		return nil, errors.New("classifier is required")
	}
	return &Predictor{
		builder: NewBuilder(schema),
		scaler:  scaler,
		model:   model,
	}, nil
}

func (p *Predictor) Schema() *Schema {
	return p.builder.Schema()
}

func (p *Predictor) Builder() *Builder {
	return p.builder
}

func (p *Predictor) Assess(raw RawPatientInput) (Assessment, error) {
	vec := p.builder.Build(raw)
	label, err := Predict(vec, p.scaler, p.model)
	if err != nil {
		return Assessment{}, err
	}
	return Assessment{
		Input:     raw,
		Vector:    vec,
		Label:     label,
		Unmatched: p.builder.Unmatched(raw),
	}, nil
}
