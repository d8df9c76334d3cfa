package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/Skufu/heartcheck/internal/artifacts"
	"github.com/Skufu/heartcheck/internal/heartrisk"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, surveyPrompter{}); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			os.Exit(130)
		}
		log.Fatalf("heartcheck: %v", err)
	}
}

func run(args []string, out io.Writer, p prompter) error {
	fs := flag.NewFlagSet("heartcheck", flag.ContinueOnError)
	modelPath := fs.String("model", "artifacts/knn_heart_model.json", "fitted classifier artifact")
	scalerPath := fs.String("scaler", "artifacts/heart_scaler.json", "fitted scaler artifact")
	columnsPath := fs.String("columns", "artifacts/heart_columns.json", "expected column list")
	inputPath := fs.String("input", "", "YAML or JSON patient file (prompts interactively if empty)")
	showVector := fs.Bool("vector", false, "print the encoded feature vector")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bundle, err := artifacts.Load(artifacts.Paths{
		Model:   *modelPath,
		Scaler:  *scalerPath,
		Columns: *columnsPath,
	})
	if err != nil {
		return err
	}
	predictor, err := bundle.Predictor()
	if err != nil {
		return err
	}

	var raw heartrisk.RawPatientInput
	if *inputPath != "" {
		raw, err = readPatient(*inputPath)
	} else {
		raw, err = askPatient(p)
	}
	if err != nil {
		return err
	}

	assessment, err := predictor.Assess(raw)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if *showVector {
		printVector(out, predictor.Schema(), assessment.Vector)
	}
	for _, col := range assessment.Unmatched {
		fmt.Fprintf(out, "note: model has no column for %s\n", col)
	}
	fmt.Fprintf(out, "Prediction: %s (label %d)\n", assessment.Label.RiskLevel(), assessment.Label)
	fmt.Fprintln(out, assessment.Label.Message())
	return nil
}

func printVector(out io.Writer, schema *heartrisk.Schema, vec heartrisk.FeatureVector) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, col := range schema.Columns() {
		fmt.Fprintf(tw, "%s\t%g\n", col, vec[i])
	}
	_ = tw.Flush()
}
