package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/heartcheck/internal/heartrisk"
)

type fakePrompter struct {
	answers map[string]string
	asked   []string
}

func (f *fakePrompter) Input(message, def string, validate func(string) error) (string, error) {
	f.asked = append(f.asked, message)
	ans, ok := f.answers[message]
	if !ok {
		ans = def
	}
	if validate != nil {
		if err := validate(ans); err != nil {
			return "", err
		}
	}
	return ans, nil
}

func (f *fakePrompter) Select(message string, options []string, def string) (string, error) {
	f.asked = append(f.asked, message)
	if ans, ok := f.answers[message]; ok {
		return ans, nil
	}
	return def, nil
}

func shippedArgs() []string {
	root := filepath.Join("..", "..", "artifacts")
	return []string{
		"-model", filepath.Join(root, "knn_heart_model.json"),
		"-scaler", filepath.Join(root, "heart_scaler.json"),
		"-columns", filepath.Join(root, "heart_columns.json"),
	}
}

func TestAskPatientDefaults(t *testing.T) {
	p := &fakePrompter{}
	raw, err := askPatient(p)
	require.NoError(t, err)

	if diff := cmp.Diff(heartrisk.DefaultPatientInput(), raw); diff != "" {
		t.Fatalf("unexpected input (-want +got):\n%s", diff)
	}
	assert.Len(t, p.asked, len(heartrisk.FormFields()))
	assert.Equal(t, "Age", p.asked[0])
}

func TestRunInteractiveHighRisk(t *testing.T) {
	p := &fakePrompter{answers: map[string]string{
		"Age":                             "65",
		"Sex":                             "M",
		"Chest Pain Type":                 "ASY",
		"Resting Blood Pressure (mm Hg)":  "160",
		"Cholesterol (mg/dL)":             "280",
		"Fasting Blood Sugar > 120 mg/dL": "1",
		"Resting ECG":                     "ST",
		"Max Heart Rate":                  "110",
		"Exercise-Induced Angina":         "Y",
		"Oldpeak (ST Depression)":         "2.5",
		"ST Slope":                        "Flat",
	}}
	var out bytes.Buffer

	require.NoError(t, run(shippedArgs(), &out, p))

	assert.Contains(t, out.String(), "Prediction: HIGH (label 1)")
	assert.Contains(t, out.String(), "High Risk of Heart Disease")
	assert.Contains(t, out.String(), "note: model has no column for ChestPainType_ASY")
}

func TestRunInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patient.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
age: 30
sex: F
chestPainType: NAP
restingBP: 115
cholesterol: 190
fastingBS: 0
restingECG: Normal
maxHR: 180
exerciseAngina: N
oldpeak: 0
stSlope: Up
`), 0o644))
	var out bytes.Buffer

	args := append(shippedArgs(), "-input", path, "-vector")
	require.NoError(t, run(args, &out, &fakePrompter{}))

	assert.Contains(t, out.String(), "Prediction: LOW (label 0)")
	assert.Contains(t, out.String(), "ST_Slope_Up")
	assert.Contains(t, out.String(), "note: model has no column for Sex_F")
}

func TestRunMissingArtifacts(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-model", filepath.Join(t.TempDir(), "nope.json")}, &out, &fakePrompter{})
	assert.Error(t, err)
}

func TestReadPatient(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "patient.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"age": 52, "oldpeak": 0.5}`), 0o644))
		raw, err := readPatient(path)
		require.NoError(t, err)
		assert.Equal(t, 52, raw.Age)
		assert.Equal(t, 0.5, raw.Oldpeak)
		assert.Equal(t, "M", raw.Sex)
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("agee: 52\n"), 0o644))
		_, err := readPatient(path)
		assert.Error(t, err)
	})

	t.Run("nan oldpeak", func(t *testing.T) {
		path := filepath.Join(dir, "nan.yaml")
		require.NoError(t, os.WriteFile(path, []byte("oldpeak: .nan\n"), 0o644))
		_, err := readPatient(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Oldpeak (ST Depression) must be a number")
	})

	t.Run("out of range", func(t *testing.T) {
		path := filepath.Join(dir, "range.yaml")
		require.NoError(t, os.WriteFile(path, []byte("restingBP: 20\nstSlope: Sideways\n"), 0o644))
		_, err := readPatient(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Resting Blood Pressure (mm Hg) must be between 80 and 200")
		assert.Contains(t, err.Error(), "ST Slope must be one of: Up, Flat, Down")
	})
}

func TestRangeValidator(t *testing.T) {
	var age, oldpeak heartrisk.FormField
	for _, f := range heartrisk.FormFields() {
		switch f.Name {
		case "age":
			age = f
		case "oldpeak":
			oldpeak = f
		}
	}

	assert.NoError(t, rangeValidator(age)("18"))
	assert.NoError(t, rangeValidator(age)(" 100 "))
	assert.Error(t, rangeValidator(age)("17"))
	assert.Error(t, rangeValidator(age)("40.5"))
	assert.Error(t, rangeValidator(age)("forty"))
	assert.NoError(t, rangeValidator(oldpeak)("0"))
	assert.NoError(t, rangeValidator(oldpeak)("2.3"))
	assert.Error(t, rangeValidator(oldpeak)("6.1"))
	assert.Error(t, rangeValidator(oldpeak)("NaN"))
	assert.Error(t, rangeValidator(oldpeak)("+Inf"))
	assert.Error(t, rangeValidator(age)("40.0"))
}

func TestAskPatientRejectsFractionalIntegerAtPrompt(t *testing.T) {
	p := &fakePrompter{answers: map[string]string{"Age": "40.0"}}
	_, err := askPatient(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Age must be a whole number")
	assert.Equal(t, []string{"Age"}, p.asked)
}

func TestPatientFromAnswersReportsEveryBadNumber(t *testing.T) {
	_, err := patientFromAnswers(map[string]string{
		"age":     "x",
		"maxHR":   "y",
		"oldpeak": "z",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age")
	assert.Contains(t, err.Error(), "maxHR")
	assert.Contains(t, err.Error(), "oldpeak")
}
