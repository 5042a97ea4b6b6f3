package entity

// SuggestionRecord is one generated business-idea candidate. Immutable
// once created; referenced by index from the owning session.
type SuggestionRecord struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Score           int      `json:"score"`
	Advantages      []string `json:"advantages,omitempty"`
	Risks           []string `json:"risks,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func (s SuggestionRecord) clone() SuggestionRecord {
	c := s
	c.Advantages = append([]string(nil), s.Advantages...)
	c.Risks = append([]string(nil), s.Risks...)
	c.Recommendations = append([]string(nil), s.Recommendations...)
	return c
}
