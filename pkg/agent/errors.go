package agent

import "fmt"

// StepLimitError reports a run that hit its step ceiling without a final
// answer. It is distinct from model failures so callers can render it
// differently.
type StepLimitError struct {
	Steps int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("agent stopped after %d steps without a final answer", e.Steps)
}
