package heartrisk

// FeatureVector holds one value per schema column, in schema order.
type FeatureVector []float64

type numericRule struct {
	column string
	value  func(RawPatientInput) float64
}

type categoricalRule struct {
	prefix string
	value  func(RawPatientInput) string
}

var numericRules = []numericRule{
	{column: "Age", value: func(p RawPatientInput) float64 { return float64(p.Age) }},
	{column: "RestingBP", value: func(p RawPatientInput) float64 { return float64(p.RestingBP) }},
	{column: "Cholesterol", value: func(p RawPatientInput) float64 { return float64(p.Cholesterol) }},
	{column: "FastingBS", value: func(p RawPatientInput) float64 { return float64(p.FastingBS) }},
	{column: "MaxHR", value: func(p RawPatientInput) float64 { return float64(p.MaxHR) }},
	{column: "Oldpeak", value: func(p RawPatientInput) float64 { return p.Oldpeak }},
}

var categoricalRules = []categoricalRule{
	{prefix: "Sex", value: func(p RawPatientInput) string { return p.Sex }},
	{prefix: "ChestPainType", value: func(p RawPatientInput) string { return p.ChestPainType }},
	{prefix: "RestingECG", value: func(p RawPatientInput) string { return p.RestingECG }},
	{prefix: "ExerciseAngina", value: func(p RawPatientInput) string { return p.ExerciseAngina }},
	{prefix: "ST_Slope", value: func(p RawPatientInput) string { return p.STSlope }},
}

// IndicatorColumn names the one-hot column a categorical selection sets.
func IndicatorColumn(prefix, value string) string {
	return prefix + "_" + value
}

// Builder turns raw form input into the vector a Schema describes. The rule
// table is resolved against the schema once, so Build only writes positions.
type Builder struct {
	schema     *Schema
	numericPos []int
}

func NewBuilder(schema *Schema) *Builder {
	b := &Builder{
		schema:     schema,
		numericPos: make([]int, len(numericRules)),
	}
	for i, rule := range numericRules {
		pos, ok := schema.Position(rule.column)
		if !ok {
			pos = -1
		}
		b.numericPos[i] = pos
	}
	return b
}

func (b *Builder) Schema() *Schema {
	return b.schema
}

// Build never fails: columns the input does not produce stay 0, and a
// categorical selection without a schema column contributes nothing.
func (b *Builder) Build(raw RawPatientInput) FeatureVector {
	vec := make(FeatureVector, b.schema.Len())
	for i, rule := range numericRules {
		if pos := b.numericPos[i]; pos >= 0 {
			vec[pos] = rule.value(raw)
		}
	}
	for _, rule := range categoricalRules {
		if pos, ok := b.schema.Position(IndicatorColumn(rule.prefix, rule.value(raw))); ok {
			vec[pos] = 1
		}
	}
	return vec
}

// Unmatched lists the indicator columns raw selects that the schema lacks.
func (b *Builder) Unmatched(raw RawPatientInput) []string {
	var missing []string
	for _, rule := range categoricalRules {
		col := IndicatorColumn(rule.prefix, rule.value(raw))
		if _, ok := b.schema.Position(col); !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// BuildFeatureVector is Build for callers that hold only a schema.
func BuildFeatureVector(raw RawPatientInput, schema *Schema) FeatureVector {
	return NewBuilder(schema).Build(raw)
}

// Labeled pairs every value with its column name.
func (v FeatureVector) Labeled(schema *Schema) map[string]float64 {
	out := make(map[string]float64, len(v))
	for i, col := range schema.columns {
		if i < len(v) {
			out[col] = v[i]
		}
	}
	return out
}
