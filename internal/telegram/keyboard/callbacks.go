package keyboard

import (
	"fmt"
	"strings"
)

// Callback actions understood by the callback handler.
const (
	ActionStart      = "start"
	ActionBack       = "back"
	ActionSubmit     = "submit"
	ActionGenerate   = "generate"
	ActionPlan       = "plan"
	ActionAnalysis   = "analysis"
	ActionResults    = "results"
	ActionRegen      = "regen"
	ActionRestart    = "restart"
	ActionRestartYes = "restart_yes"
	ActionCancel     = "cancel"
	ActionNoop       = "noop"
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string // "act", "opt", "sel", "sli", "rat", "alloc", "res", "dl"
	Value  string // The parameter
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: parts[0],
		Value:  parts[1],
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return fmt.Sprintf("%s:%s", action, value)
}
