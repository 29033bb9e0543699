// Package config provides file-based configuration for the workflow runtime.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/formforge/formforge/pkg/notification"
	"github.com/formforge/formforge/pkg/stages"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}

	*d = Duration(parsed)

	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// File represents the structure of the formforge.yaml file. Zero fields keep
// their defaults, so a partial file only overrides what it names.
type File struct {
	Workflow      WorkflowSection     `yaml:"workflow"`
	Notifications NotificationSection `yaml:"notifications"`
}

// WorkflowSection tunes the auto-progress delays between stages.
type WorkflowSection struct {
	VerificationDelay Duration `yaml:"verification_delay"`
	ApprovalDelay     Duration `yaml:"approval_delay"`
	CompletionDelay   Duration `yaml:"completion_delay"`
}

// NotificationSection tunes mailbox retention.
type NotificationSection struct {
	Retention Duration `yaml:"retention"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() File {
	stageDefaults := stages.DefaultConfig()

	return File{
		Workflow: WorkflowSection{
			VerificationDelay: Duration(stageDefaults.VerificationDelay),
			ApprovalDelay:     Duration(stageDefaults.ApprovalDelay),
			CompletionDelay:   Duration(stageDefaults.CompletionDelay),
		},
		Notifications: NotificationSection{
			Retention: Duration(notification.DefaultRetention),
		},
	}
}

// Load reads a YAML configuration file and merges it over the defaults.
func Load(filepath string) (File, error) {
	config := Defaults()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if file.Workflow.VerificationDelay > 0 {
		config.Workflow.VerificationDelay = file.Workflow.VerificationDelay
	}

	if file.Workflow.ApprovalDelay > 0 {
		config.Workflow.ApprovalDelay = file.Workflow.ApprovalDelay
	}

	if file.Workflow.CompletionDelay > 0 {
		config.Workflow.CompletionDelay = file.Workflow.CompletionDelay
	}

	if file.Notifications.Retention > 0 {
		config.Notifications.Retention = file.Notifications.Retention
	}

	return config, nil
}

// StageConfig converts the workflow section into the stage table's shape.
func (f File) StageConfig() stages.Config {
	return stages.Config{
		VerificationDelay: f.Workflow.VerificationDelay.Std(),
		ApprovalDelay:     f.Workflow.ApprovalDelay.Std(),
		CompletionDelay:   f.Workflow.CompletionDelay.Std(),
	}
}
