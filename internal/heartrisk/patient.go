package heartrisk

// RawPatientInput is one form submission. Categorical fields carry the form's
// option strings verbatim; FastingBS is 0 or 1.
type RawPatientInput struct {
	Age            int     `json:"age" yaml:"age"`
	Sex            string  `json:"sex" yaml:"sex"`
	ChestPainType  string  `json:"chestPainType" yaml:"chestPainType"`
	RestingBP      int     `json:"restingBP" yaml:"restingBP"`
	Cholesterol    int     `json:"cholesterol" yaml:"cholesterol"`
	FastingBS      int     `json:"fastingBS" yaml:"fastingBS"`
	RestingECG     string  `json:"restingECG" yaml:"restingECG"`
	MaxHR          int     `json:"maxHR" yaml:"maxHR"`
	ExerciseAngina string  `json:"exerciseAngina" yaml:"exerciseAngina"`
	Oldpeak        float64 `json:"oldpeak" yaml:"oldpeak"`
	STSlope        string  `json:"stSlope" yaml:"stSlope"`
}

var (
	SexOptions            = []string{"M", "F"}
	ChestPainTypeOptions  = []string{"ATA", "NAP", "TA", "ASY"}
	FastingBSOptions      = []int{0, 1}
	RestingECGOptions     = []string{"Normal", "ST", "LVH"}
	ExerciseAnginaOptions = []string{"Y", "N"}
	STSlopeOptions        = []string{"Up", "Flat", "Down"}
)

// DefaultPatientInput returns the values the form starts with.
func DefaultPatientInput() RawPatientInput {
	return RawPatientInput{
		Age:            40,
		Sex:            "M",
		ChestPainType:  "ATA",
		RestingBP:      120,
		Cholesterol:    200,
		FastingBS:      0,
		RestingECG:     "Normal",
		MaxHR:          150,
		ExerciseAngina: "Y",
		Oldpeak:        1.0,
		STSlope:        "Up",
	}
}

type FieldKind string

const (
	FieldInteger FieldKind = "integer"
	FieldNumber  FieldKind = "number"
	FieldSelect  FieldKind = "select"
)

// FormField describes one input widget of the patient form.
type FormField struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Min     float64   `json:"min,omitempty"`
	Max     float64   `json:"max,omitempty"`
	Step    float64   `json:"step,omitempty"`
	Default any       `json:"default"`
}

// FormFields lists the form widgets in display order: the left column first,
// then the right one.
func FormFields() []FormField {
	d := DefaultPatientInput()
	return []FormField{
		{Name: "age", Label: "Age", Kind: FieldInteger, Min: 18, Max: 100, Step: 1, Default: d.Age},
		{Name: "sex", Label: "Sex", Kind: FieldSelect, Options: SexOptions, Default: d.Sex},
		{Name: "chestPainType", Label: "Chest Pain Type", Kind: FieldSelect, Options: ChestPainTypeOptions, Default: d.ChestPainType},
		{Name: "restingBP", Label: "Resting Blood Pressure (mm Hg)", Kind: FieldInteger, Min: 80, Max: 200, Step: 1, Default: d.RestingBP},
		{Name: "cholesterol", Label: "Cholesterol (mg/dL)", Kind: FieldInteger, Min: 100, Max: 600, Step: 1, Default: d.Cholesterol},
		{Name: "fastingBS", Label: "Fasting Blood Sugar > 120 mg/dL", Kind: FieldSelect, Options: []string{"0", "1"}, Default: d.FastingBS},
		{Name: "restingECG", Label: "Resting ECG", Kind: FieldSelect, Options: RestingECGOptions, Default: d.RestingECG},
		{Name: "maxHR", Label: "Max Heart Rate", Kind: FieldInteger, Min: 60, Max: 220, Step: 1, Default: d.MaxHR},
		{Name: "exerciseAngina", Label: "Exercise-Induced Angina", Kind: FieldSelect, Options: ExerciseAnginaOptions, Default: d.ExerciseAngina},
		{Name: "oldpeak", Label: "Oldpeak (ST Depression)", Kind: FieldNumber, Min: 0, Max: 6, Step: 0.1, Default: d.Oldpeak},
		{Name: "stSlope", Label: "ST Slope", Kind: FieldSelect, Options: STSlopeOptions, Default: d.STSlope},
	}
}
