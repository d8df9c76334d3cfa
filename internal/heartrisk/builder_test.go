package heartrisk

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boundaryColumns = []string{
	"Age", "RestingBP", "Cholesterol", "FastingBS", "MaxHR", "Oldpeak",
	"Sex_M", "Sex_F", "ChestPainType_ATA", "ChestPainType_ASY",
	"RestingECG_Normal", "ExerciseAngina_N", "ST_Slope_Up",
}

func boundaryInput() RawPatientInput {
	return RawPatientInput{
		Age:            40,
		Sex:            "M",
		ChestPainType:  "ATA",
		RestingBP:      120,
		Cholesterol:    200,
		FastingBS:      0,
		RestingECG:     "Normal",
		MaxHR:          150,
		ExerciseAngina: "N",
		Oldpeak:        1.0,
		STSlope:        "Up",
	}
}

func mustSchema(t *testing.T, columns []string) *Schema {
	t.Helper()
	schema, err := NewSchema(columns)
	require.NoError(t, err)
	return schema
}

// trainedColumns is the drop-first one-hot layout the shipped model uses.
var trainedColumns = []string{
	"Age", "RestingBP", "Cholesterol", "FastingBS", "MaxHR", "Oldpeak",
	"Sex_M", "ChestPainType_ATA", "ChestPainType_NAP", "ChestPainType_TA",
	"RestingECG_Normal", "RestingECG_ST", "ExerciseAngina_Y",
	"ST_Slope_Flat", "ST_Slope_Up",
}

func TestBuild_BoundaryScenario(t *testing.T) {
	schema := mustSchema(t, boundaryColumns)

	got := BuildFeatureVector(boundaryInput(), schema)

	want := FeatureVector{40, 120, 200, 0, 150, 1.0, 1, 0, 1, 0, 1, 1, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("feature vector mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_UnselectedIndicatorsAreZero(t *testing.T) {
	schema := mustSchema(t, boundaryColumns)

	labeled := BuildFeatureVector(boundaryInput(), schema).Labeled(schema)

	assert.Equal(t, 0.0, labeled["Sex_F"])
	assert.Equal(t, 0.0, labeled["ChestPainType_ASY"])
}

func TestBuild_MissingSchemaColumnIsDropped(t *testing.T) {
	schema := mustSchema(t, boundaryColumns)
	input := boundaryInput()
	input.ChestPainType = "TA"
	builder := NewBuilder(schema)

	vec := builder.Build(input)

	require.Len(t, vec, len(boundaryColumns))
	labeled := vec.Labeled(schema)
	assert.Equal(t, 0.0, labeled["ChestPainType_ATA"])
	assert.Equal(t, 0.0, labeled["ChestPainType_ASY"])
	assert.Equal(t, []string{"ChestPainType_TA"}, builder.Unmatched(input))
}

func TestBuild_UnknownCategoryIsSilent(t *testing.T) {
	schema := mustSchema(t, trainedColumns)
	input := DefaultPatientInput()
	input.RestingECG = "Abnormal"

	vec := BuildFeatureVector(input, schema)

	labeled := vec.Labeled(schema)
	assert.Equal(t, 0.0, labeled["RestingECG_Normal"])
	assert.Equal(t, 0.0, labeled["RestingECG_ST"])
	assert.Len(t, vec, len(trainedColumns))
}

func TestBuild_LengthAndOrderForEveryOption(t *testing.T) {
	schema := mustSchema(t, trainedColumns)
	builder := NewBuilder(schema)

	for _, sex := range SexOptions {
		for _, cp := range ChestPainTypeOptions {
			for _, ecg := range RestingECGOptions {
				for _, angina := range ExerciseAnginaOptions {
					for _, slope := range STSlopeOptions {
						input := DefaultPatientInput()
						input.Sex, input.ChestPainType, input.RestingECG = sex, cp, ecg
						input.ExerciseAngina, input.STSlope = angina, slope

						vec := builder.Build(input)
						require.Len(t, vec, schema.Len())
						assert.Equal(t, float64(input.Age), vec[0])
						assert.Equal(t, input.Oldpeak, vec[5])

						for _, rule := range categoricalRules {
							assertFamily(t, schema, vec, rule.prefix, rule.value(input))
						}
					}
				}
			}
		}
	}
}

// assertFamily checks that at most the selected indicator of a family is set.
func assertFamily(t *testing.T, schema *Schema, vec FeatureVector, prefix, selected string) {
	t.Helper()
	ones := 0
	for i, col := range schema.Columns() {
		if len(col) <= len(prefix)+1 || col[:len(prefix)+1] != prefix+"_" {
			continue
		}
		switch vec[i] {
		case 1:
			ones++
			assert.Equal(t, IndicatorColumn(prefix, selected), col)
		case 0:
		default:
			t.Fatalf("indicator %s has value %v", col, vec[i])
		}
	}
	_, present := schema.Position(IndicatorColumn(prefix, selected))
	if present {
		assert.Equal(t, 1, ones, "family %s", prefix)
	} else {
		assert.Equal(t, 0, ones, "family %s", prefix)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	schema := mustSchema(t, trainedColumns)
	before := schema.Columns()
	builder := NewBuilder(schema)
	input := DefaultPatientInput()

	first := builder.Build(input)
	second := builder.Build(input)

	assert.Equal(t, first, second)
	assert.Equal(t, before, schema.Columns())
}

func TestBuild_NumericNotClamped(t *testing.T) {
	schema := mustSchema(t, trainedColumns)
	input := DefaultPatientInput()
	input.Cholesterol = 9000
	input.Oldpeak = -2.5

	labeled := BuildFeatureVector(input, schema).Labeled(schema)

	assert.Equal(t, 9000.0, labeled["Cholesterol"])
	assert.Equal(t, -2.5, labeled["Oldpeak"])
}

func TestBuild_SchemaWithoutNumericColumns(t *testing.T) {
	schema := mustSchema(t, []string{"ST_Slope_Up", "Sex_M"})

	vec := BuildFeatureVector(DefaultPatientInput(), schema)

	assert.Equal(t, FeatureVector{1, 1}, vec)
}

func TestNewSchema_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{name: "empty", columns: nil},
		{name: "blank column", columns: []string{"Age", " "}},
		{name: "duplicate", columns: []string{"Age", "Sex_M", "Age"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.columns)
			assert.Error(t, err)
		})
	}
}

func TestSchema_ColumnsIsACopy(t *testing.T) {
	schema := mustSchema(t, []string{"Age", "MaxHR"})

	cols := schema.Columns()
	cols[0] = "Mutated"

	assert.Equal(t, []string{"Age", "MaxHR"}, schema.Columns())
}
