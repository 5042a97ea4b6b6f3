package entity

// QuestionType is the closed set of supported question kinds.
// Validation and rendering dispatch exhaustively on this tag.
type QuestionType string

const (
	QuestionText        QuestionType = "text"
	QuestionChoice      QuestionType = "choice"
	QuestionMultiSelect QuestionType = "multiselect"
	QuestionSlider      QuestionType = "slider"
	QuestionRating      QuestionType = "rating"
	QuestionAllocation  QuestionType = "allocation"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionChoice, QuestionMultiSelect,
		QuestionSlider, QuestionRating, QuestionAllocation:
		return true
	}
	return false
}

// Option is a selectable answer for choice-like questions.
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	// Next overrides the question's next link when this option is chosen
	// (single-choice branching only).
	Next string `yaml:"next,omitempty" json:"next,omitempty"`
}

// RatingItem is one entry of a rating-set question. Each item is rated
// independently within [Min, Max].
type RatingItem struct {
	Name  string `yaml:"name" json:"name"`
	Label string `yaml:"label" json:"label"`
	Min   int    `yaml:"min" json:"min"`
	Max   int    `yaml:"max" json:"max"`
}

// AllocationArea is one category of a point-allocation question.
type AllocationArea struct {
	Name  string `yaml:"name" json:"name"`
	Label string `yaml:"label" json:"label"`
}

// Question is an immutable catalog entry, loaded once at startup and
// shared read-only across all sessions.
type Question struct {
	ID   string       `yaml:"id" json:"id"`
	Text string       `yaml:"text" json:"text"`
	Type QuestionType `yaml:"type" json:"type"`

	// Options is required for choice and multiselect questions.
	Options []Option `yaml:"options,omitempty" json:"options,omitempty"`

	// Free-text constraints.
	MinLength int `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength int `yaml:"max_length,omitempty" json:"max_length,omitempty"`

	// Multiselect constraints.
	MinChoices int `yaml:"min_choices,omitempty" json:"min_choices,omitempty"`
	MaxChoices int `yaml:"max_choices,omitempty" json:"max_choices,omitempty"`

	// Slider bounds.
	Min int `yaml:"min,omitempty" json:"min,omitempty"`
	Max int `yaml:"max,omitempty" json:"max,omitempty"`

	// Rating-set items.
	Items []RatingItem `yaml:"items,omitempty" json:"items,omitempty"`

	// Point-allocation categories and the exact required sum.
	Areas       []AllocationArea `yaml:"areas,omitempty" json:"areas,omitempty"`
	TotalPoints int              `yaml:"total_points,omitempty" json:"total_points,omitempty"`
	Step        int              `yaml:"step,omitempty" json:"step,omitempty"`

	// Next links to the following question by id. Empty means "next in
	// catalog order".
	Next string `yaml:"next,omitempty" json:"next,omitempty"`
}

// Answer holds a submitted answer value. The populated field depends on
// the question type: Text for free-text, Choice for single-choice,
// Choices for multiselect, Value for slider, Scores for rating-set and
// point-allocation.
type Answer struct {
	Type    QuestionType   `json:"type"`
	Text    string         `json:"text,omitempty"`
	Choice  string         `json:"choice,omitempty"`
	Choices []string       `json:"choices,omitempty"`
	Value   int            `json:"value,omitempty"`
	Scores  map[string]int `json:"scores,omitempty"`
}

func (a Answer) clone() Answer {
	c := a
	c.Choices = append([]string(nil), a.Choices...)
	if a.Scores != nil {
		c.Scores = make(map[string]int, len(a.Scores))
		for k, v := range a.Scores {
			c.Scores[k] = v
		}
	}
	return c
}
