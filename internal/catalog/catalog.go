package catalog

import (
	"fmt"
	"os"

	"github.com/navikit/navigator-backend/internal/entity"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Catalog is the static ordered list of question definitions. Loaded
// once at startup and shared read-only across all sessions.
type Catalog struct {
	questions []entity.Question
	byID      map[string]int
}

// catalogFile is the YAML layout of the questions file.
type catalogFile struct {
	Questions []entity.Question `yaml:"questions"`
}

// Load reads the catalog from a YAML file. A missing file falls back to
// the built-in default catalog; a malformed file or entry is fatal.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn("questions file not found, using default catalog",
			zap.String("path", path),
		)
		return New(defaultQuestions())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse questions YAML: %w", err)
	}

	c, err := New(file.Questions)
	if err != nil {
		return nil, err
	}

	logger.Info("question catalog loaded",
		zap.String("path", path),
		zap.Int("questions", c.Len()),
	)
	return c, nil
}

// New builds a catalog from question definitions, validating every entry.
func New(questions []entity.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, entity.ErrCatalogEmpty
	}

	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return nil, err
		}
		if _, ok := byID[q.ID]; ok {
			return nil, &entity.ConfigurationError{QuestionID: q.ID, Reason: "duplicate question id"}
		}
		byID[q.ID] = i
	}

	// Resolve next links up front so a dangling reference fails at load,
	// not mid-conversation.
	for _, q := range questions {
		if q.Next != "" {
			if _, ok := byID[q.Next]; !ok {
				return nil, &entity.ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("next link %q does not exist", q.Next)}
			}
		}
		for _, opt := range q.Options {
			if opt.Next != "" {
				if _, ok := byID[opt.Next]; !ok {
					return nil, &entity.ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("option %q next link %q does not exist", opt.Value, opt.Next)}
				}
			}
		}
	}

	return &Catalog{questions: questions, byID: byID}, nil
}

// Len returns the number of questions in the catalog.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Get returns the question at index, or ErrQuestionNotFound when out of
// range.
func (c *Catalog) Get(index int) (entity.Question, error) {
	if index < 0 || index >= len(c.questions) {
		return entity.Question{}, entity.ErrQuestionNotFound
	}
	return c.questions[index], nil
}

// ByID returns the question with the given id.
func (c *Catalog) ByID(id string) (entity.Question, error) {
	idx, ok := c.byID[id]
	if !ok {
		return entity.Question{}, entity.ErrQuestionNotFound
	}
	return c.questions[idx], nil
}

// IndexOf returns the position of the question with the given id, or -1.
func (c *Catalog) IndexOf(id string) int {
	idx, ok := c.byID[id]
	if !ok {
		return -1
	}
	return idx
}

// NextIndex resolves the index following current for the given accepted
// answer: an option-level next link wins for single-choice questions,
// then the question's own next link, then catalog order. Returns -1
// when current is the last question.
func (c *Catalog) NextIndex(current int, answer entity.Answer) int {
	q, err := c.Get(current)
	if err != nil {
		return -1
	}

	if answer.Type == entity.QuestionChoice {
		for _, opt := range q.Options {
			if opt.Value == answer.Choice && opt.Next != "" {
				return c.byID[opt.Next]
			}
		}
	}

	if q.Next != "" {
		return c.byID[q.Next]
	}

	if current+1 < len(c.questions) {
		return current + 1
	}
	return -1
}

func validateQuestion(q entity.Question) error {
	fail := func(reason string) error {
		return &entity.ConfigurationError{QuestionID: q.ID, Reason: reason}
	}

	if q.ID == "" {
		return fail("missing id")
	}
	if q.Text == "" {
		return fail("missing text")
	}
	if !q.Type.Valid() {
		return fail(fmt.Sprintf("unknown type %q", q.Type))
	}

	switch q.Type {
	case entity.QuestionText:
		if q.MinLength < 0 || (q.MaxLength > 0 && q.MaxLength < q.MinLength) {
			return fail("text length bounds are inconsistent")
		}
	case entity.QuestionChoice:
		if len(q.Options) == 0 {
			return fail("choice question has no options")
		}
	case entity.QuestionMultiSelect:
		if len(q.Options) == 0 {
			return fail("multiselect question has no options")
		}
		if q.MaxChoices > 0 && q.MinChoices > q.MaxChoices {
			return fail("min_choices exceeds max_choices")
		}
		if q.MaxChoices > len(q.Options) {
			return fail("max_choices exceeds option count")
		}
	case entity.QuestionSlider:
		if q.Min >= q.Max {
			return fail("slider bounds are inconsistent")
		}
	case entity.QuestionRating:
		if len(q.Items) == 0 {
			return fail("rating question has no items")
		}
		for _, item := range q.Items {
			if item.Name == "" {
				return fail("rating item has no name")
			}
			if item.Min >= item.Max {
				return fail(fmt.Sprintf("rating item %q bounds are inconsistent", item.Name))
			}
		}
	case entity.QuestionAllocation:
		if len(q.Areas) == 0 {
			return fail("allocation question has no areas")
		}
		if q.TotalPoints <= 0 {
			return fail("allocation total_points must be positive")
		}
		for _, area := range q.Areas {
			if area.Name == "" {
				return fail("allocation area has no name")
			}
		}
	}

	return nil
}
