package domain

// UserSettings is the persisted preference record. It is written wholesale
// on every change; callers spread prior state before writing, there is no
// partial merge.
type UserSettings struct {
	Sex        string       `json:"sex" validate:"oneof=male female"`
	Conditions []string     `json:"conditions" validate:"dive,required"`
	Age        AgeRange     `json:"age"`
	Language   Language     `json:"language"`
	Clarity    ClarityLevel `json:"clarity"`
}

// AgeRange is one selectable age bracket.
type AgeRange struct {
	ID    string `json:"id"`
	Range string `json:"range"`
}

// Language is one selectable output language.
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClarityLevel controls how technical the generated explanation should be.
type ClarityLevel struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Condition is one selectable medical condition.
type Condition struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// AgeRanges lists the selectable age brackets.
var AgeRanges = []AgeRange{
	{ID: "under-18", Range: "Under 18"},
	{ID: "18-30", Range: "18-30"},
	{ID: "31-45", Range: "31-45"},
	{ID: "46-60", Range: "46-60"},
	{ID: "over-60", Range: "Over 60"},
}

// Languages lists the selectable output languages.
var Languages = []Language{
	{ID: "en", Name: "English"},
	{ID: "es", Name: "Spanish"},
	{ID: "fr", Name: "French"},
	{ID: "de", Name: "German"},
	{ID: "ar", Name: "Arabic"},
	{ID: "hi", Name: "Hindi"},
	{ID: "zh", Name: "Chinese"},
}

// ClarityLevels lists the selectable clarity levels, plainest first.
var ClarityLevels = []ClarityLevel{
	{ID: "simple", Label: "Simple - everyday language"},
	{ID: "standard", Label: "Standard - some medical terms"},
	{ID: "detailed", Label: "Detailed - full medical terminology"},
}

// SharedConditions apply regardless of sex; SexConditions are appended per
// the selected sex. Changing sex drops conditions outside the shared set.
var SharedConditions = []Condition{
	{ID: "diabetes", Label: "Diabetes"},
	{ID: "hypertension", Label: "High Blood Pressure"},
	{ID: "asthma", Label: "Asthma"},
	{ID: "heart-disease", Label: "Heart Disease"},
	{ID: "kidney-disease", Label: "Kidney Disease"},
	{ID: "liver-disease", Label: "Liver Disease"},
}

var SexConditions = map[string][]Condition{
	"female": {
		{ID: "pregnancy", Label: "Pregnancy"},
		{ID: "breastfeeding", Label: "Breastfeeding"},
	},
	"male": {
		{ID: "prostate", Label: "Prostate Condition"},
	},
}

// ConditionsFor returns the selectable conditions for a sex: the shared set
// plus the sex-specific additions.
func ConditionsFor(sex string) []Condition {
	conditions := append([]Condition{}, SharedConditions...)
	return append(conditions, SexConditions[sex]...)
}

// SanitizeConditions drops any selected condition ID that is not selectable
// for the current sex. Called on every write so a sex change cannot leave a
// sex-specific condition behind. Conditions are stored by ID, matching what
// the client persists.
func (s *UserSettings) SanitizeConditions() {
	allowed := make(map[string]bool)
	for _, c := range ConditionsFor(s.Sex) {
		allowed[c.ID] = true
	}

	kept := make([]string, 0, len(s.Conditions))
	for _, id := range s.Conditions {
		if allowed[id] {
			kept = append(kept, id)
		}
	}
	s.Conditions = kept
}

// ConditionLabel resolves a condition ID to its display label. Unknown IDs
// come back unchanged so a stale stored value still reads as something.
func ConditionLabel(id string) string {
	for _, c := range SharedConditions {
		if c.ID == id {
			return c.Label
		}
	}
	for _, group := range SexConditions {
		for _, c := range group {
			if c.ID == id {
				return c.Label
			}
		}
	}
	return id
}

// DefaultSettings returns the built-in defaults used on first load and when
// the stored record is missing or unparseable.
func DefaultSettings() UserSettings {
	return UserSettings{
		Sex:        "female",
		Conditions: []string{},
		Age:        AgeRanges[1],
		Language:   Languages[0],
		Clarity:    ClarityLevels[0],
	}
}
