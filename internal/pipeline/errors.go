package pipeline

import (
	"fmt"

	"github.com/dubflow/api/internal/model"
)

// ContractViolationError reports a stage output that breaks the structural
// contract its downstream consumers depend on (e.g. an editor script segment
// missing a category, or a translation with the wrong segment count). It is
// fatal and never silently patched.
type ContractViolationError struct {
	Stage  model.Stage
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Stage, e.Reason)
}
