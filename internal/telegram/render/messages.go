package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/navikit/navigator-backend/internal/entity"
)

const (
	// Welcome messages
	MsgWelcome = `👋 Hi! I help you find a business direction that actually fits you.

I will:
• Ask a short questionnaire about your background and goals
• Suggest several business directions tailored to your answers
• Build a detailed launch plan for the one you pick

Ready? Press the button below or send /start again.`

	MsgHelp = `ℹ️ How this works

/start - begin or resume the questionnaire
/status - show your progress
/restart - drop everything and start over
/help - this message

Answer the questions one by one. Some are free text, some use the buttons under the message. You can always go back one question with the ⬅️ button.`

	// Question display
	MsgQuestion = `%s

❓ Question %d of %d

%s%s`

	// Generation
	MsgGenerating = `⏳ Analyzing your answers and putting together business directions...

This can take a minute.`

	MsgPlanGenerating = `⏳ Building a detailed plan for this direction...`

	MsgAnalysisGenerating = `⏳ Putting together your entrepreneurial profile...`

	// Result ready
	MsgResultReady = `✅ Done! I picked %d directions for you.

Browse them with the arrows, open a detailed plan, or ask for a fresh set.`

	// Restart
	MsgRestartConfirm = `🗑 Start over? All answers and generated results will be discarded.`

	MsgRestarted = `🔄 Starting over. Previous answers are discarded.`

	MsgRestartCancelled = `👌 Okay, nothing was discarded.`

	MsgAlreadyDone = `✅ You already have results. Browse them below, or /restart to fill the questionnaire again.`

	// Status
	MsgStatusAnswering = `📊 Questionnaire in progress: %d of %d questions answered.`
	MsgStatusBrowsing  = `📊 Questionnaire finished. %d directions generated. Send /start to browse them.`
	MsgStatusNone      = `📊 No questionnaire yet. Send /start to begin.`

	// Errors
	ErrGeneric            = `❌ Something went wrong. Try again or press /start`
	ErrSessionNotFound    = `❌ Session not found. Start a new one with /start`
	ErrInvalidState       = `❌ That action is not available right now. Press /start to continue.`
	ErrNetworkIssue       = `❌ Connection trouble. Try again in a moment.`
	ErrServiceUnavailable = `❌ The service is temporarily unavailable. Try again in a couple of minutes.`
	ErrTimeout            = `❌ The operation took too long. Try again.`
	ErrQuotaExceeded      = `❌ Request limit reached. Wait a little.`
	ErrGeneration         = `❌ I could not generate suggestions this time. Press the button to try again.`
)

// maxMessageLength is Telegram's hard limit per message, minus headroom
// for formatting.
const maxMessageLength = 4000

// Praise phrases rotated between questions to keep the dialogue alive.
var praisePhrases = []string{
	"Got it! 👍",
	"Great, noted. ✨",
	"Thanks, moving on. 🚀",
	"Nice one. 📝",
	"Understood! 💡",
}

// Praise returns a short acknowledgement, rotated by question position.
func Praise(index int) string {
	return praisePhrases[index%len(praisePhrases)]
}

// RenderQuestion formats a question with a progress header and a
// type-specific hint.
func RenderQuestion(q entity.Question, index, total int) string {
	return fmt.Sprintf(MsgQuestion, renderProgressBar(index, total), index+1, total, q.Text, questionHint(q))
}

func questionHint(q entity.Question) string {
	switch q.Type {
	case entity.QuestionText:
		if q.MinLength > 0 {
			return fmt.Sprintf("\n\n✍️ Answer with a message of at least %d characters.", q.MinLength)
		}
		return "\n\n✍️ Answer with a text message."
	case entity.QuestionMultiSelect:
		switch {
		case q.MinChoices > 0 && q.MaxChoices > 0:
			return fmt.Sprintf("\n\n☑️ Pick %d to %d options, then press Done.", q.MinChoices, q.MaxChoices)
		case q.MinChoices > 0:
			return fmt.Sprintf("\n\n☑️ Pick at least %d options, then press Done.", q.MinChoices)
		default:
			return "\n\n☑️ Pick the options that apply, then press Done."
		}
	case entity.QuestionSlider:
		return fmt.Sprintf("\n\n🎚 Adjust the value between %d and %d with ➖ and ➕, then press Done.", q.Min, q.Max)
	case entity.QuestionRating:
		return "\n\n⭐️ Rate each item with the buttons, then press Done."
	case entity.QuestionAllocation:
		return fmt.Sprintf("\n\n🪙 Distribute exactly %d points across the categories, then press Done.", q.TotalPoints)
	}
	return ""
}

// renderProgressBar creates a visual progress bar for the header line.
func renderProgressBar(index, total int) string {
	if total <= 0 {
		return ""
	}

	percent := float64(index) / float64(total)
	filled := int(percent * 10)

	bar := strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)
	return fmt.Sprintf("[%s] %d%%", bar, int(percent*100))
}

// visualScale renders a slider position as a block-character gauge.
func visualScale(value, min, max int) string {
	const blocks = "▁▂▃▄▅▆▇█"
	if max <= min {
		return ""
	}
	runes := []rune(blocks)
	pos := int(float64(value-min) / float64(max-min) * float64(len(runes)-1))
	return string(runes[:pos+1])
}

// RenderSliderState shows the current slider position under the question.
func RenderSliderState(value, min, max int) string {
	return fmt.Sprintf("%s  %d / %d", visualScale(value, min, max), value, max)
}

// RenderAllocationRemaining shows how many points are left to distribute.
func RenderAllocationRemaining(used, total int) string {
	return fmt.Sprintf("🪙 Points left: %d of %d", total-used, total)
}

// RenderSuggestion formats one suggestion card for browsing.
func RenderSuggestion(s *entity.SuggestionRecord, index, total int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "💼 %d of %d · %s\n", index+1, total, s.Name)
	fmt.Fprintf(&sb, "📈 Fit score: %d/100\n\n", s.Score)
	sb.WriteString(s.Description)

	if len(s.Advantages) > 0 {
		sb.WriteString("\n\n✅ Strengths:\n")
		for _, a := range s.Advantages {
			fmt.Fprintf(&sb, "• %s\n", a)
		}
	}
	if len(s.Risks) > 0 {
		sb.WriteString("\n⚠️ Risks:\n")
		for _, r := range s.Risks {
			fmt.Fprintf(&sb, "• %s\n", r)
		}
	}
	if len(s.Recommendations) > 0 {
		sb.WriteString("\n💡 First steps:\n")
		for _, r := range s.Recommendations {
			fmt.Fprintf(&sb, "• %s\n", r)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// SplitMessage breaks long text into Telegram-sized chunks, preferring
// line boundaries.
func SplitMessage(text string) []string {
	if len(text) <= maxMessageLength {
		return []string{text}
	}

	var parts []string
	for len(text) > maxMessageLength {
		cut := strings.LastIndex(text[:maxMessageLength], "\n")
		if cut <= 0 {
			// No line break in the window. Back the cut up to a rune
			// boundary so a multi-byte character is never split.
			cut = maxMessageLength
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxMessageLength
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	var validationErr *entity.ValidationError
	if errors.As(err, &validationErr) {
		return "⚠️ " + validationErr.Reason
	}

	var generationErr *entity.GenerationError
	if errors.As(err, &generationErr) {
		return ErrGeneration
	}

	if errors.Is(err, entity.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	if errors.Is(err, entity.ErrInvalidState) || errors.Is(err, entity.ErrSessionCompleted) || errors.Is(err, entity.ErrNoResult) {
		return ErrInvalidState
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Err == syscall.ECONNREFUSED {
			return ErrServiceUnavailable
		}
		return ErrNetworkIssue
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "timeout"):
		return ErrTimeout
	case strings.Contains(errMsg, "network"):
		return ErrNetworkIssue
	case strings.Contains(errMsg, "unavailable"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "quota"), strings.Contains(errMsg, "rate limit"):
		return ErrQuotaExceeded
	}

	return ErrGeneric
}
