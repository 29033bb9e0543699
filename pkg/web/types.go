// Package web provides HTTP request and response types for the submission API.
package web

import "github.com/formforge/formforge/pkg/models"

// CreateSubmissionRequest represents the request body for creating a new draft
// submission.
type CreateSubmissionRequest struct {
	TemplateID string         `json:"template_id" validate:"required"`
	Title      string         `json:"title"       validate:"required,min=3"`
	Department string         `json:"department"  validate:"required"`
	Data       map[string]any `json:"data"`
}

// ProcessActionRequest represents the request body for executing a workflow
// action against a submission.
type ProcessActionRequest struct {
	Action   string `json:"action"   validate:"required"`
	Comments string `json:"comments,omitempty"`
}

// CreateUserRequest represents the request body for registering a directory
// account.
type CreateUserRequest struct {
	Name       string      `json:"name"       validate:"required,min=2"`
	Email      string      `json:"email"      validate:"required,email"`
	Role       models.Role `json:"role"       validate:"required,oneof=operator line_incharge supervisor admin auditor"`
	Department string      `json:"department" validate:"required"`
}
