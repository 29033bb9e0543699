package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/pkg/stages"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	valid := []string{
		"submit_form",
		"start_verification",
		"verify_form",
		"start_approval",
		"approve_form",
		"reject_form",
		"complete_workflow",
	}

	for _, raw := range valid {
		action, err := ParseAction(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, action.String())
	}
}

func TestParseAction_Unknown(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "escalate_form", "SUBMIT_FORM"} {
		_, err := ParseAction(raw)
		require.Error(t, err, raw)
		assert.True(t, IsUnknownAction(err))
	}
}

func TestAutoActionFor(t *testing.T) {
	t.Parallel()

	cases := map[string]Action{
		stages.Submitted: ActionStartVerification,
		stages.Verified:  ActionStartApproval,
		stages.Approved:  ActionCompleteWorkflow,
	}

	for stage, want := range cases {
		action, ok := autoActionFor(stage)
		require.True(t, ok, stage)
		assert.Equal(t, want, action)
	}

	for _, stage := range []string{stages.Draft, stages.UnderVerification, stages.Completed, stages.Rejected} {
		_, ok := autoActionFor(stage)
		assert.False(t, ok, stage)
	}
}
