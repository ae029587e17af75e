package readiness

import (
	"fmt"

	"github.com/nautex-dev/nautex/internal/integration"
)

// Inputs is everything the evaluator consults. It is plain data; gathering
// it is the caller's job.
type Inputs struct {
	ConfigLoaded    bool
	Host            string
	Network         Result
	Auth            Result
	ProjectSelected bool
	PlanSelected    bool
	Integration     integration.Status
}

// Evaluation is the derived readiness verdict.
type Evaluation struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// Evaluate derives the readiness verdict from gathered state. It is pure:
// no I/O, defined for every input combination, and the first failing
// condition in priority order determines the message. The IDE integration
// only flavors the ready message; it never gates readiness.
func Evaluate(in Inputs) Evaluation {
	switch {
	case !in.ConfigLoaded:
		return Evaluation{Message: "Configuration not found - run 'nautex setup'"}
	case !in.Network.OK:
		return Evaluation{Message: fmt.Sprintf("Cannot reach %s - check your network connection", in.Host)}
	case !in.Auth.OK:
		return Evaluation{Message: fmt.Sprintf("Not authenticated with %s - check your API token", in.Host)}
	case !in.ProjectSelected:
		return Evaluation{Message: "Project not selected - run 'nautex setup'"}
	case !in.PlanSelected:
		return Evaluation{Message: "Implementation plan not selected - run 'nautex setup'"}
	}

	if in.Integration != integration.StatusOK {
		return Evaluation{Ready: true, Message: "Ready to work (consider installing the IDE integration)"}
	}
	return Evaluation{Ready: true, Message: "Fully integrated and ready to work"}
}
