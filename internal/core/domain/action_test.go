package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/core/domain"
)

func testAction() *domain.Action {
	return &domain.Action{
		Name:              domain.NewInternedString("compile"),
		Command:           []string{"cc", "-c", "a.c"},
		Outputs:           []*domain.Artifact{domain.NewArtifact("out/a.o")},
		ExecutionPlatform: "linux-x86_64",
		ClientEnvVars:     []string{"PATH", "CC"},
	}
}

func TestAction_Key_Stable(t *testing.T) {
	kc := &domain.KeyContext{Salt: "workspace-1"}

	require.Equal(t, testAction().Key(kc), testAction().Key(kc))
	require.Equal(t, testAction().Key(nil), testAction().Key(nil))
}

func TestAction_Key_SensitiveToFingerprint(t *testing.T) {
	kc := &domain.KeyContext{Salt: "workspace-1"}
	baseline := testAction().Key(kc)

	command := testAction()
	command.Command = []string{"cc", "-c", "-O2", "a.c"}
	require.NotEqual(t, baseline, command.Key(kc))

	outputs := testAction()
	outputs.Outputs = append(outputs.Outputs, domain.NewArtifact("out/a.d"))
	require.NotEqual(t, baseline, outputs.Key(kc))

	platform := testAction()
	platform.ExecutionPlatform = "darwin-arm64"
	require.NotEqual(t, baseline, platform.Key(kc))

	envVars := testAction()
	envVars.ClientEnvVars = []string{"PATH"}
	require.NotEqual(t, baseline, envVars.Key(kc))

	require.NotEqual(t, baseline, testAction().Key(&domain.KeyContext{Salt: "workspace-2"}))
}

func TestAction_Key_EnvVarOrderIrrelevant(t *testing.T) {
	kc := &domain.KeyContext{}

	a := testAction()
	a.ClientEnvVars = []string{"CC", "PATH"}
	b := testAction()
	b.ClientEnvVars = []string{"PATH", "CC"}

	require.Equal(t, a.Key(kc), b.Key(kc))
}

func TestAction_InputsKnown(t *testing.T) {
	a := testAction()
	require.True(t, a.InputsKnown())

	a.DiscoversInputs = true
	require.False(t, a.InputsKnown())

	discovered := []*domain.Artifact{domain.NewSourceArtifact("src/a.h")}
	a.UpdateInputs(discovered)
	require.True(t, a.InputsKnown())
	require.Equal(t, discovered, a.Inputs)
}

func TestAction_Describe(t *testing.T) {
	a := testAction()
	require.Equal(t, a.Name.String()+" -> "+a.PrimaryOutput().ExecPath(), a.Describe())

	a.Outputs = nil
	require.Equal(t, a.Name.String(), a.Describe())
}

func TestActionType_IsMiddleman(t *testing.T) {
	require.False(t, domain.NormalAction.IsMiddleman())
	require.True(t, domain.MiddlemanAction.IsMiddleman())
	require.True(t, domain.SchedulingMiddlemanAction.IsMiddleman())
}
