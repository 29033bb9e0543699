package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/pkg/notification"
	"github.com/formforge/formforge/pkg/stages"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "formforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Defaults()

	assert.Equal(t, stages.DefaultConfig(), cfg.StageConfig())
	assert.Equal(t, notification.DefaultRetention, cfg.Notifications.Retention.Std())
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
workflow:
  verification_delay: 10s
  approval_delay: 30s
  completion_delay: 1m
notifications:
  retention: 168h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Workflow.VerificationDelay.Std())
	assert.Equal(t, 30*time.Second, cfg.Workflow.ApprovalDelay.Std())
	assert.Equal(t, time.Minute, cfg.Workflow.CompletionDelay.Std())
	assert.Equal(t, 7*24*time.Hour, cfg.Notifications.Retention.Std())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
workflow:
  verification_delay: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Workflow.VerificationDelay.Std())
	assert.Equal(t, stages.DefaultConfig().ApprovalDelay, cfg.Workflow.ApprovalDelay.Std())
	assert.Equal(t, notification.DefaultRetention, cfg.Notifications.Retention.Std())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "workflow: [not a map")

	_, err := Load(path)
	require.Error(t, err)
}
