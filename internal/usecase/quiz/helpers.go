package quiz

import (
	"github.com/navikit/navigator-backend/internal/entity"
)

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func indexOf(values []string, v string) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}

func hasOption(q entity.Question, value string) bool {
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func hasArea(q entity.Question, name string) bool {
	for _, area := range q.Areas {
		if area.Name == name {
			return true
		}
	}
	return false
}

func ratingItem(q entity.Question, name string) (entity.RatingItem, bool) {
	for _, item := range q.Items {
		if item.Name == name {
			return item, true
		}
	}
	return entity.RatingItem{}, false
}

func sliderDefault(q entity.Question) int {
	return q.Min + (q.Max-q.Min)/2
}

func ratingDefaults(q entity.Question) map[string]int {
	scores := make(map[string]int, len(q.Items))
	for _, item := range q.Items {
		scores[item.Name] = item.Min
	}
	return scores
}

func allocationDefaults(q entity.Question) map[string]int {
	scores := make(map[string]int, len(q.Areas))
	for _, area := range q.Areas {
		scores[area.Name] = 0
	}
	return scores
}

func scoreSum(scores map[string]int) int {
	sum := 0
	for _, v := range scores {
		sum += v
	}
	return sum
}

// pendingAnswer assembles a typed answer from accumulated pending input.
func pendingAnswer(q entity.Question, session *entity.Session) (entity.Answer, error) {
	switch q.Type {
	case entity.QuestionMultiSelect:
		return entity.Answer{
			Type:    entity.QuestionMultiSelect,
			Choices: append([]string{}, session.Pending.Selected...),
		}, nil
	case entity.QuestionSlider:
		value := session.Pending.Value
		if !session.Pending.HasValue {
			value = sliderDefault(q)
		}
		return entity.Answer{Type: entity.QuestionSlider, Value: value}, nil
	case entity.QuestionRating:
		scores := session.Pending.Scores
		if scores == nil {
			scores = ratingDefaults(q)
		}
		return entity.Answer{Type: entity.QuestionRating, Scores: copyScores(scores)}, nil
	case entity.QuestionAllocation:
		scores := session.Pending.Scores
		if scores == nil {
			scores = allocationDefaults(q)
		}
		return entity.Answer{Type: entity.QuestionAllocation, Scores: copyScores(scores)}, nil
	}
	return entity.Answer{}, entity.ErrInvalidState
}

// detachPending copies pending input so a view never aliases the live
// session record.
func detachPending(p entity.Pending) entity.Pending {
	c := p
	c.Selected = append([]string(nil), p.Selected...)
	if p.Scores != nil {
		c.Scores = copyScores(p.Scores)
	}
	return c
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}
