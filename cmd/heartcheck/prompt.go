package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/heartcheck/internal/heartrisk"
)

// prompter abstracts the terminal so the form flow can be tested without one.
type prompter interface {
	Input(message, def string, validate func(string) error) (string, error)
	Select(message string, options []string, def string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, validate func(string) error) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Default: def}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", err
	}
	return out, nil
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	prompt := &survey.Select{Message: message, Options: options}
	if indexOf(options, def) >= 0 {
		prompt.Default = def
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", err
	}
	return out, nil
}

// askPatient walks the form fields in display order.
func askPatient(p prompter) (heartrisk.RawPatientInput, error) {
	answers := make(map[string]string)
	for _, field := range heartrisk.FormFields() {
		def := fmt.Sprint(field.Default)
		var (
			ans string
			err error
		)
		if field.Kind == heartrisk.FieldSelect {
			ans, err = p.Select(field.Label, field.Options, def)
		} else {
			ans, err = p.Input(field.Label, def, rangeValidator(field))
		}
		if err != nil {
			return heartrisk.RawPatientInput{}, err
		}
		answers[field.Name] = strings.TrimSpace(ans)
	}
	return patientFromAnswers(answers)
}

func rangeValidator(field heartrisk.FormField) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		var v float64
		if field.Kind == heartrisk.FieldInteger {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s must be a whole number", field.Label)
			}
			v = float64(n)
		} else {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%s must be a number", field.Label)
			}
			v = f
		}
		if v < field.Min || v > field.Max {
			return fmt.Errorf("%s must be between %g and %g", field.Label, field.Min, field.Max)
		}
		return nil
	}
}

func patientFromAnswers(answers map[string]string) (heartrisk.RawPatientInput, error) {
	var (
		raw  heartrisk.RawPatientInput
		errs []error
	)
	atoi := func(name string, dst *int) {
		n, err := strconv.Atoi(answers[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, answers[name]))
			return
		}
		*dst = n
	}

	atoi("age", &raw.Age)
	atoi("restingBP", &raw.RestingBP)
	atoi("cholesterol", &raw.Cholesterol)
	atoi("fastingBS", &raw.FastingBS)
	atoi("maxHR", &raw.MaxHR)
	if v, err := strconv.ParseFloat(answers["oldpeak"], 64); err != nil {
		errs = append(errs, fmt.Errorf("oldpeak: %q is not a number", answers["oldpeak"]))
	} else {
		raw.Oldpeak = v
	}
	raw.Sex = answers["sex"]
	raw.ChestPainType = answers["chestPainType"]
	raw.RestingECG = answers["restingECG"]
	raw.ExerciseAngina = answers["exerciseAngina"]
	raw.STSlope = answers["stSlope"]

	if len(errs) > 0 {
		return heartrisk.RawPatientInput{}, errors.Join(errs...)
	}
	if err := checkPatient(raw); err != nil {
		return heartrisk.RawPatientInput{}, err
	}
	return raw, nil
}

// readPatient decodes a patient file. JSON is valid YAML, so both work.
func readPatient(path string) (heartrisk.RawPatientInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return heartrisk.RawPatientInput{}, err
	}
	defer f.Close()

	raw := heartrisk.DefaultPatientInput()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return heartrisk.RawPatientInput{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := checkPatient(raw); err != nil {
		return heartrisk.RawPatientInput{}, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// checkPatient applies the form's ranges and choices.
func checkPatient(raw heartrisk.RawPatientInput) error {
	values := map[string]string{
		"age":            strconv.Itoa(raw.Age),
		"sex":            raw.Sex,
		"chestPainType":  raw.ChestPainType,
		"restingBP":      strconv.Itoa(raw.RestingBP),
		"cholesterol":    strconv.Itoa(raw.Cholesterol),
		"fastingBS":      strconv.Itoa(raw.FastingBS),
		"restingECG":     raw.RestingECG,
		"maxHR":          strconv.Itoa(raw.MaxHR),
		"exerciseAngina": raw.ExerciseAngina,
		"oldpeak":        strconv.FormatFloat(raw.Oldpeak, 'f', -1, 64),
		"stSlope":        raw.STSlope,
	}

	var errs []error
	for _, field := range heartrisk.FormFields() {
		v := values[field.Name]
		if field.Kind == heartrisk.FieldSelect {
			if indexOf(field.Options, v) < 0 {
				errs = append(errs, fmt.Errorf("%s must be one of: %s", field.Label, strings.Join(field.Options, ", ")))
			}
			continue
		}
		if err := rangeValidator(field)(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
