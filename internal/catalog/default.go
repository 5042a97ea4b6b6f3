package catalog

import "github.com/navikit/navigator-backend/internal/entity"

// defaultQuestions is the built-in questionnaire used when no YAML file
// is provided. Mirrors the shipped config/questions.yaml.
func defaultQuestions() []entity.Question {
	return []entity.Question{
		{
			ID:   "age_group",
			Text: "Let's start simple. Which age group are you in?",
			Type: entity.QuestionChoice,
			Options: []entity.Option{
				{Label: "18–24", Value: "18-24"},
				{Label: "25–34", Value: "25-34"},
				{Label: "35–44", Value: "35-44"},
				{Label: "45–54", Value: "45-54"},
				{Label: "55+", Value: "55+"},
			},
		},
		{
			ID:   "background",
			Text: "Describe your professional background and education in a few sentences.",
			Type: entity.QuestionText,
			MinLength: 20,
			MaxLength: 1000,
		},
		{
			ID:   "motivations",
			Text: "What draws you to starting a business? Pick everything that applies.",
			Type: entity.QuestionMultiSelect,
			Options: []entity.Option{
				{Label: "💰 Financial independence", Value: "money"},
				{Label: "🕐 Flexible schedule", Value: "freedom"},
				{Label: "🎨 Creative outlet", Value: "creativity"},
				{Label: "🌍 Making an impact", Value: "impact"},
				{Label: "📈 Building something that lasts", Value: "legacy"},
				{Label: "🧗 Personal challenge", Value: "challenge"},
			},
			MinChoices: 1,
			MaxChoices: 3,
		},
		{
			ID:   "risk_tolerance",
			Text: "Imagine investing a year of savings into an unproven idea. How comfortable are you with that kind of risk?",
			Type: entity.QuestionSlider,
			Min:  1,
			Max:  10,
		},
		{
			ID:   "skills",
			Text: "Rate your skills honestly. The plan will lean on your strongest ones.",
			Type: entity.QuestionRating,
			Items: []entity.RatingItem{
				{Name: "analytics", Label: "📊 Analytics", Min: 1, Max: 5},
				{Name: "communication", Label: "🗣 Communication", Min: 1, Max: 5},
				{Name: "design", Label: "🎨 Design & creativity", Min: 1, Max: 5},
				{Name: "organization", Label: "📋 Organization", Min: 1, Max: 5},
				{Name: "craft", Label: "🔧 Hands-on work", Min: 1, Max: 5},
			},
		},
		{
			ID:   "learning_allocation",
			Text: "You have 100 points of learning energy for the next year. Distribute them across the areas you want to grow in.",
			Type: entity.QuestionAllocation,
			Areas: []entity.AllocationArea{
				{Name: "marketing", Label: "📣 Marketing & sales"},
				{Name: "product", Label: "🛠 Product & craft"},
				{Name: "finance", Label: "💼 Finance & operations"},
				{Name: "people", Label: "🤝 People & management"},
			},
			TotalPoints: 100,
			Step:        5,
		},
		{
			ID:   "work_style",
			Text: "How do you prefer to work?",
			Type: entity.QuestionChoice,
			Options: []entity.Option{
				{Label: "🧑‍🚀 Solo, full control", Value: "solo"},
				{Label: "👥 Small team", Value: "team"},
				{Label: "🤝 With a co-founder", Value: "cofounder"},
			},
		},
		{
			ID:   "ideal_client",
			Text: "Describe your ideal client: who they are, what they struggle with, what they would happily pay for.",
			Type: entity.QuestionText,
			MinLength: 20,
			MaxLength: 1500,
		},
		{
			ID:   "budget",
			Text: "How much can you realistically invest to get started?",
			Type: entity.QuestionChoice,
			Options: []entity.Option{
				{Label: "Under $1k", Value: "under_1k"},
				{Label: "$1k – $5k", Value: "1k-5k"},
				{Label: "$5k – $20k", Value: "5k-20k"},
				{Label: "Over $20k", Value: "over_20k"},
			},
		},
		{
			ID:   "time_per_week",
			Text: "How many hours per week can you commit?",
			Type: entity.QuestionSlider,
			Min:  5,
			Max:  60,
		},
		{
			ID:   "equipment",
			Text: "What do you already have at your disposal?",
			Type: entity.QuestionMultiSelect,
			Options: []entity.Option{
				{Label: "💻 Laptop / workstation", Value: "computer"},
				{Label: "📷 Camera / studio gear", Value: "camera"},
				{Label: "🚗 Car or van", Value: "vehicle"},
				{Label: "🏠 Spare room / workshop", Value: "space"},
				{Label: "📚 Niche expertise", Value: "expertise"},
				{Label: "👥 Audience / network", Value: "audience"},
			},
			MinChoices: 1,
			MaxChoices: 6,
		},
		{
			ID:   "flow",
			Text: "Finally: describe a time you were so absorbed in work you lost track of time. What were you doing?",
			Type: entity.QuestionText,
			MinLength: 20,
			MaxLength: 1500,
		},
	}
}
