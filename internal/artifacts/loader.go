// Package artifacts loads the pre-trained classifier, scaler and expected
// column list from disk. The files are YAML; JSON documents are accepted as
// they are valid YAML.
package artifacts

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/heartcheck/internal/heartrisk"
	"github.com/Skufu/heartcheck/internal/model"
)

const (
	ArtifactModel   = "model"
	ArtifactScaler  = "scaler"
	ArtifactColumns = "columns"
)

// LoadError is returned when an artifact is missing, unreadable or invalid.
// The process must not serve requests after one.
type LoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s artifact %q: %v", e.Artifact, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type Paths struct {
	Model   string
	Scaler  string
	Columns string
}

// Widther is implemented by every scaler and classifier this package builds.
type Widther interface {
	Width() int
}

type Scaler interface {
	heartrisk.Scaler
	Widther
}

type Classifier interface {
	heartrisk.Classifier
	Widther
}

// Bundle is the set of read-only artifacts a Predictor is built from.
type Bundle struct {
	Schema    *heartrisk.Schema
	Scaler    Scaler
	Model     Classifier
	ModelKind string
	Paths     Paths
}

type scalerFile struct {
	Kind  string    `yaml:"kind"`
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
	Min   []float64 `yaml:"min"`
}

type modelFile struct {
	Kind       string      `yaml:"kind"`
	NNeighbors int         `yaml:"n_neighbors"`
	Weights    string      `yaml:"weights"`
	Metric     string      `yaml:"metric"`
	Classes    []int       `yaml:"classes"`
	FitX       [][]float64 `yaml:"fit_x"`
	FitY       []int       `yaml:"fit_y"`
	Coef       []float64   `yaml:"coef"`
	Intercept  float64     `yaml:"intercept"`
	Threshold  float64     `yaml:"threshold"`
}

// Load reads all three artifacts. The first failure is returned as a
// *LoadError.
func Load(paths Paths) (*Bundle, error) {
	columns, err := LoadColumns(paths.Columns)
	if err != nil {
		return nil, err
	}
	scaler, err := LoadScaler(paths.Scaler)
	if err != nil {
		return nil, err
	}
	classifier, kind, err := LoadModel(paths.Model)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Schema:    columns,
		Scaler:    scaler,
		Model:     classifier,
		ModelKind: kind,
		Paths:     paths,
	}, nil
}

func LoadColumns(path string) (*heartrisk.Schema, error) {
	var names []string
	if err := decodeFile(path, &names); err != nil {
		return nil, &LoadError{Artifact: ArtifactColumns, Path: path, Err: err}
	}
	schema, err := heartrisk.NewSchema(names)
	if err != nil {
		return nil, &LoadError{Artifact: ArtifactColumns, Path: path, Err: err}
	}
	return schema, nil
}

func LoadScaler(path string) (Scaler, error) {
	var doc scalerFile
	if err := decodeFile(path, &doc); err != nil {
		return nil, &LoadError{Artifact: ArtifactScaler, Path: path, Err: err}
	}

	var (
		scaler Scaler
		err    error
	)
	switch doc.Kind {
	case "", "standard":
		scaler, err = model.NewStandardScaler(doc.Mean, doc.Scale)
	case "minmax":
		scaler, err = model.NewMinMaxScaler(doc.Min, doc.Scale)
	default:
		err = fmt.Errorf("unsupported scaler kind %q", doc.Kind)
	}
	if err != nil {
		return nil, &LoadError{Artifact: ArtifactScaler, Path: path, Err: err}
	}
	return scaler, nil
}

func LoadModel(path string) (Classifier, string, error) {
	var doc modelFile
	if err := decodeFile(path, &doc); err != nil {
		return nil, "", &LoadError{Artifact: ArtifactModel, Path: path, Err: err}
	}
	if err := checkClasses(doc.Classes); err != nil {
		return nil, "", &LoadError{Artifact: ArtifactModel, Path: path, Err: err}
	}

	var (
		classifier Classifier
		err        error
	)
	switch doc.Kind {
	case "knn":
		classifier, err = model.NewKNN(model.KNNConfig{
			K:       doc.NNeighbors,
			Weights: model.Weights(doc.Weights),
			Metric:  model.Metric(doc.Metric),
			FitX:    doc.FitX,
			FitY:    doc.FitY,
		})
	case "logistic":
		classifier, err = model.NewLogistic(doc.Coef, doc.Intercept, doc.Threshold)
	case "":
		err = errors.New("model kind is required")
	default:
		err = fmt.Errorf("unsupported model kind %q", doc.Kind)
	}
	if err != nil {
		return nil, "", &LoadError{Artifact: ArtifactModel, Path: path, Err: err}
	}
	return classifier, doc.Kind, nil
}

// checkClasses requires the fitted classes to be exactly [0, 1].
func checkClasses(classes []int) error {
	if len(classes) != 2 || classes[0] != int(heartrisk.LowRisk) || classes[1] != int(heartrisk.HighRisk) {
		return fmt.Errorf("classes must be [0, 1], got %v", classes)
	}
	return nil
}

func decodeFile(path string, out any) error {
	if path == "" {
		return errors.New("path is empty")
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return errors.New("file is empty")
	}
	if err := yaml.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Check reports width disagreements between the artifacts. Such a bundle still
// loads; every prediction made with it fails with heartrisk.ErrShapeMismatch.
func (b *Bundle) Check() error {
	var errs []error
	if w := b.Scaler.Width(); w != b.Schema.Len() {
		errs = append(errs, fmt.Errorf("scaler expects %d columns, schema has %d", w, b.Schema.Len()))
	}
	if w := b.Model.Width(); w != b.Schema.Len() {
		errs = append(errs, fmt.Errorf("model expects %d columns, schema has %d", w, b.Schema.Len()))
	}
	return errors.Join(errs...)
}

func (b *Bundle) Predictor() (*heartrisk.Predictor, error) {
	return heartrisk.NewPredictor(b.Schema, b.Scaler, b.Model)
}
