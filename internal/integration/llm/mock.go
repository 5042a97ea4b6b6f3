package llm

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a mock completion client for local runs and testing
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Complete returns canned output shaped like the real model responses.
// Requests that ask for a JSON array get suggestion data, profile
// requests get an analysis, everything else gets a markdown plan.
func (m *MockConnector) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting completion", zap.Int("prompt_length", len(userPrompt)))

	switch {
	case strings.Contains(userPrompt, "JSON array"):
		return mockSuggestions, nil
	case strings.Contains(userPrompt, "psychological profile"):
		return mockAnalysis, nil
	}
	return mockPlan, nil
}

const mockSuggestions = `[
  {
    "name": "Local Craft Subscription Boxes",
    "description": "A monthly subscription service that curates products from local artisans and delivers them to customers who want to support small producers in their region.",
    "score": 87,
    "advantages": ["Recurring revenue model", "Low inventory risk with pre-orders", "Strong community angle"],
    "risks": ["Supplier reliability", "Churn after the first few boxes"],
    "recommendations": ["Start with a pilot of 50 subscribers", "Negotiate consignment terms with artisans"]
  },
  {
    "name": "Remote Team Retreat Planning",
    "description": "An agency that organizes offsite retreats for distributed teams, handling venues, travel logistics and facilitated workshops.",
    "score": 82,
    "advantages": ["High average order value", "Growing remote-work market"],
    "risks": ["Seasonal demand", "Dependence on corporate budgets"],
    "recommendations": ["Build partnerships with boutique hotels", "Offer a self-serve planning tier"]
  },
  {
    "name": "Home Energy Audit Service",
    "description": "On-site assessments of household energy usage with a prioritized list of improvements and vetted contractor referrals.",
    "score": 78,
    "advantages": ["Referral commissions from contractors", "Rising energy prices drive demand"],
    "risks": ["Requires certification in some regions"],
    "recommendations": ["Get certified early", "Partner with local utilities for lead generation"]
  },
  {
    "name": "Niche Online Course Studio",
    "description": "A production studio that helps subject-matter experts turn their knowledge into polished online courses for a revenue share.",
    "score": 74,
    "advantages": ["Scalable once courses are published", "Portfolio compounds over time"],
    "risks": ["Long production cycles", "Expert availability"],
    "recommendations": ["Focus on one vertical first", "Standardize the production pipeline"]
  },
  {
    "name": "Senior Tech Support Visits",
    "description": "In-home technology help for older adults covering device setup, scam prevention and ongoing support plans.",
    "score": 71,
    "advantages": ["Underserved and loyal customer base", "Subscription support plans"],
    "risks": ["Trust building takes time", "Travel overhead between visits"],
    "recommendations": ["Partner with senior centers", "Offer a family-billed monthly plan"]
  }
]`

const mockAnalysis = `## Entrepreneurial Profile
You approach new ventures deliberately: you gather information first and commit once the picture is clear.

## Strengths
- Consistent follow-through on routine work
- Comfortable learning new tools independently

## Growth Areas
- Delegation: you tend to keep critical tasks to yourself
- Pricing confidence: you undervalue your own time

## Work Style and Motivation
You work best in focused solo blocks with clear milestones. Autonomy motivates you more than status.

## Risk Attitude
Moderate. You accept calculated risks when the downside is capped.

## How to Use This
Pick a direction with a short feedback loop so your deliberate style compounds instead of stalling.`

const mockPlan = `## Business Plan

### 1. Summary
This plan outlines the first year of operations, from validation through the first paying customers.

### 2. Market and Customers
Start with a narrow, reachable segment. Interview at least 20 potential customers before building anything.

### 3. First Steps
1. Validate demand with a landing page and a small ad budget.
2. Deliver the service manually to the first 10 customers.
3. Systematize the parts that repeat.

### 4. Finances
Keep fixed costs near zero for the first six months. Reinvest early revenue into the single acquisition channel that shows traction.

### 5. Risks
The main risk is building before validating. Time-box every experiment to two weeks.

### 6. 90-Day Goals
- 20 customer interviews completed
- First paying customer
- One repeatable acquisition channel identified`
