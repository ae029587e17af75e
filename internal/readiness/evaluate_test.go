package readiness

import (
	"strings"
	"testing"

	"github.com/nautex-dev/nautex/internal/integration"
)

func allGood() Inputs {
	return Inputs{
		ConfigLoaded:    true,
		Host:            "https://api.nautex.ai",
		Network:         Result{OK: true},
		Auth:            Result{OK: true},
		ProjectSelected: true,
		PlanSelected:    true,
		Integration:     integration.StatusOK,
	}
}

func TestEvaluate_PriorityOrder(t *testing.T) {
	// Iterate every combination of the five gating conditions and check
	// that the message names the first failing one.
	for mask := 0; mask < 32; mask++ {
		in := allGood()
		in.ConfigLoaded = mask&1 == 0
		in.Network.OK = mask&2 == 0
		in.Auth.OK = mask&4 == 0
		in.ProjectSelected = mask&8 == 0
		in.PlanSelected = mask&16 == 0

		got := Evaluate(in)

		var wantFragment string
		switch {
		case !in.ConfigLoaded:
			wantFragment = "Configuration not found"
		case !in.Network.OK:
			wantFragment = "Cannot reach"
		case !in.Auth.OK:
			wantFragment = "Not authenticated"
		case !in.ProjectSelected:
			wantFragment = "Project not selected"
		case !in.PlanSelected:
			wantFragment = "Implementation plan not selected"
		default:
			wantFragment = "ready to work"
		}

		wantReady := mask == 0
		if got.Ready != wantReady {
			t.Errorf("mask %05b: Ready = %v, want %v", mask, got.Ready, wantReady)
		}
		if !strings.Contains(strings.ToLower(got.Message), strings.ToLower(wantFragment)) {
			t.Errorf("mask %05b: message = %q, want it to contain %q", mask, got.Message, wantFragment)
		}
	}
}

func TestEvaluate_MessagesNameTheHost(t *testing.T) {
	in := allGood()
	in.Network.OK = false

	if got := Evaluate(in); !strings.Contains(got.Message, in.Host) {
		t.Errorf("network message %q should name the host", got.Message)
	}

	in = allGood()
	in.Auth.OK = false

	if got := Evaluate(in); !strings.Contains(got.Message, in.Host) {
		t.Errorf("auth message %q should name the host", got.Message)
	}
}

func TestEvaluate_IntegrationOnlyFlavorsReadyMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  integration.Status
		wantMsg string
	}{
		{"installed", integration.StatusOK, "Fully integrated and ready to work"},
		{"not found", integration.StatusNotFound, "Ready to work (consider installing the IDE integration)"},
		{"misconfigured", integration.StatusMisconfigured, "Ready to work (consider installing the IDE integration)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := allGood()
			in.Integration = tt.status

			got := Evaluate(in)
			if !got.Ready {
				t.Error("Ready = false; integration state must not gate readiness")
			}
			if got.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	in := allGood()
	in.Auth.OK = false
	in.Auth.Err = "verify token failed with status 401"

	a := Evaluate(in)
	b := Evaluate(in)

	if a != b {
		t.Errorf("Evaluate() not deterministic: %+v vs %+v", a, b)
	}
}
