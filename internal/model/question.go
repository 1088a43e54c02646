package model

// Mode is the interview depth a party receives
type Mode string

const (
	ModeFull        Mode = "full"
	ModeAbbreviated Mode = "abbreviated"
	ModeFastTrack   Mode = "fast-track"
)

// Valid reports whether m is one of the three known modes
func (m Mode) Valid() bool {
	switch m {
	case ModeFull, ModeAbbreviated, ModeFastTrack:
		return true
	}
	return false
}

// Category groups strategic questions
type Category string

const (
	CategoryBATNA        Category = "batna"
	CategoryRedLines     Category = "red-lines"
	CategoryRisk         Category = "risk"
	CategoryInternal     Category = "internal"
	CategoryRelationship Category = "relationship"
	CategoryTendering    Category = "tendering"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryBATNA,
	CategoryRedLines,
	CategoryRisk,
	CategoryInternal,
	CategoryRelationship,
	CategoryTendering,
}

// Priority tiers questions. Core questions are asked in every mode.
type Priority string

const (
	PriorityCore     Priority = "core"
	PriorityExtended Priority = "extended"
)

// InputKind defines how a question is answered
type InputKind string

const (
	InputText   InputKind = "text"   // Free text
	InputScale  InputKind = "scale"  // Integer 1-10
	InputChoice InputKind = "choice" // One of Options
)

const (
	ScaleMin = 1
	ScaleMax = 10
)

// ContextFunc produces an optional prefix for a prompt from deal context
type ContextFunc func(req Requirements) string

// StrategicQuestion is one entry of the static question catalog
type StrategicQuestion struct {
	Key         string    `json:"key"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	Input       InputKind `json:"input"`
	Prompt      string    `json:"prompt"`
	ShortPrompt string    `json:"shortPrompt,omitempty"`
	Options     []string  `json:"options,omitempty"` // InputChoice only

	Context ContextFunc `json:"-"`
}

// QuestionView is a question rendered for one session
type QuestionView struct {
	Index    int       `json:"index"`
	Total    int       `json:"total"`
	Key      string    `json:"key"`
	Category Category  `json:"category"`
	Input    InputKind `json:"input"`
	Prompt   string    `json:"prompt"`
	Context  string    `json:"context,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Answer   *Answer   `json:"answer,omitempty"`
}
