package entity

import "time"

// ConversationState is the session's position in the dialogue state machine.
type ConversationState string

const (
	StateStart      ConversationState = "START"
	StateAnswering  ConversationState = "ANSWERING"
	StateGenerating ConversationState = "GENERATING"
	StateBrowsing   ConversationState = "RESULT_BROWSING"
	StateDone       ConversationState = "DONE"
)

// Pending accumulates in-progress input for multi-step question types
// (multiselect toggles, slider position, per-item ratings, point
// allocation). Reset every time the session moves to a new question.
type Pending struct {
	Selected []string       `json:"selected,omitempty"`
	Value    int            `json:"value,omitempty"`
	HasValue bool           `json:"has_value,omitempty"`
	Scores   map[string]int `json:"scores,omitempty"`
}

// Results holds everything produced for a completed questionnaire.
type Results struct {
	Suggestions   []SuggestionRecord `json:"suggestions"`
	SelectedIndex int                `json:"selected_index"`
	// Plans maps suggestion id to its generated detailed plan text.
	Plans map[string]string `json:"plans,omitempty"`
	// PreviousNames are suggestion names from earlier generations; passed
	// back to the model on regeneration so it avoids repeats.
	PreviousNames []string `json:"previous_names,omitempty"`
	// Analysis is the generated psychological profile text. Written once
	// per generation round.
	Analysis string `json:"analysis,omitempty"`
}

// Session is the per-user mutable record of questionnaire progress.
// One session per user id; created on first interaction.
type Session struct {
	UserID int64 `json:"user_id"`
	ChatID int64 `json:"chat_id"`

	State        ConversationState `json:"state"`
	CurrentIndex int               `json:"current_index"`
	Answers      map[string]Answer `json:"answers"`
	Pending      Pending           `json:"pending"`
	Completed    bool              `json:"completed"`
	Results      *Results          `json:"results,omitempty"`

	// LastMessageID is the message edited in place for interactive
	// keyboards (sliders, allocation counters).
	LastMessageID int `json:"last_message_id,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// NewSession constructs a fresh session positioned at the first question.
func NewSession(userID, chatID int64) *Session {
	now := time.Now()
	return &Session{
		UserID:       userID,
		ChatID:       chatID,
		State:        StateStart,
		CurrentIndex: 0,
		Answers:      make(map[string]Answer),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// ResetPending clears in-progress input when moving between questions.
func (s *Session) ResetPending() {
	s.Pending = Pending{}
}

// Clone returns a deep copy of the session. The store hands out clones
// so readers never alias the record guarded by the store lock.
func (s *Session) Clone() *Session {
	c := *s

	c.Answers = make(map[string]Answer, len(s.Answers))
	for id, a := range s.Answers {
		c.Answers[id] = a.clone()
	}
	c.Pending = s.Pending.clone()

	if s.Results != nil {
		r := Results{
			SelectedIndex: s.Results.SelectedIndex,
			Analysis:      s.Results.Analysis,
			Suggestions:   make([]SuggestionRecord, len(s.Results.Suggestions)),
			PreviousNames: append([]string(nil), s.Results.PreviousNames...),
		}
		for i, sug := range s.Results.Suggestions {
			r.Suggestions[i] = sug.clone()
		}
		if s.Results.Plans != nil {
			r.Plans = make(map[string]string, len(s.Results.Plans))
			for id, plan := range s.Results.Plans {
				r.Plans[id] = plan
			}
		}
		c.Results = &r
	}

	return &c
}

func (p Pending) clone() Pending {
	c := p
	c.Selected = append([]string(nil), p.Selected...)
	if p.Scores != nil {
		c.Scores = make(map[string]int, len(p.Scores))
		for k, v := range p.Scores {
			c.Scores[k] = v
		}
	}
	return c
}

// SelectedSuggestion returns the currently browsed suggestion, or nil
// when no results are attached.
func (s *Session) SelectedSuggestion() *SuggestionRecord {
	if s.Results == nil || len(s.Results.Suggestions) == 0 {
		return nil
	}
	idx := s.Results.SelectedIndex
	if idx < 0 || idx >= len(s.Results.Suggestions) {
		return nil
	}
	return &s.Results.Suggestions[idx]
}
