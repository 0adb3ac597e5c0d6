package catalog

// FrameworkID identifier type
type FrameworkID string

// ControlID identifier type
type ControlID string

// Framework is a named catalog of compliance controls, tagged with the
// domain it applies to (e.g. "Cloud", "ISMS", "AI"). Immutable reference data.
type Framework struct {
	ID   FrameworkID `json:"id"`
	Name string      `json:"name"`
	Type string      `json:"type"`
}

// Question is one questionnaire item of a control. Options maps option keys
// to their display labels.
type Question struct {
	Text    string            `json:"question_text"`
	Options map[string]string `json:"options"`
}

// Control is an individual compliance requirement belonging to exactly one
// framework, with an ordered questionnaire. Immutable reference data.
type Control struct {
	ID          ControlID   `json:"id"`
	FrameworkID FrameworkID `json:"framework_id"`
	Code        string      `json:"code"`
	Objective   string      `json:"objective"`
	Questions   []Question  `json:"questionnaires"`
}
