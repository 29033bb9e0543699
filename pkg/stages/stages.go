// Package stages holds the immutable approval-stage table: the linear stage
// graph, the roles allowed to act at each stage, and the auto-progress policy
// between stages. It is loaded once and never mutated afterwards.
package stages

import (
	"time"

	"github.com/formforge/formforge/pkg/models"
)

// Canonical stage names. Status of a submission is always one of these.
const (
	Draft             = "Draft"
	Submitted         = "Submitted"
	UnderVerification = "Under Verification"
	Verified          = "Verified"
	Approved          = "Approved"
	Completed         = "Completed"
	Rejected          = "Rejected"
)

// Definition describes one stage of the approval lifecycle. RequiredRoles
// guards who may act while a submission sits in this stage; an empty list
// means unrestricted (system stages). NextStage is empty for terminal stages.
type Definition struct {
	Name              string
	NextStage         string
	AutoProgress      bool
	AutoProgressDelay time.Duration
	RequiredRoles     []models.Role
}

// Terminal reports whether the stage has no outgoing edge.
func (d Definition) Terminal() bool {
	return d.NextStage == ""
}

// Allows reports whether the role may act while a submission is in this
// stage. An empty role list means unrestricted.
func (d Definition) Allows(role models.Role) bool {
	if len(d.RequiredRoles) == 0 {
		return true
	}

	for _, r := range d.RequiredRoles {
		if r == role {
			return true
		}
	}

	return false
}

// Config carries the tunable auto-progress delays. Production defaults are
// deliberately short: the chain exists to hand work over, not to batch it.
type Config struct {
	VerificationDelay time.Duration // Submitted -> Under Verification
	ApprovalDelay     time.Duration // Verified -> Approved
	CompletionDelay   time.Duration // Approved -> Completed
}

// DefaultConfig returns the production delay configuration.
func DefaultConfig() Config {
	return Config{
		VerificationDelay: 5 * time.Second,
		ApprovalDelay:     5 * time.Second,
		CompletionDelay:   3 * time.Second,
	}
}

// Rejectable reports whether the dedicated reject edge is legal from the
// given stage. Rejection absorbs from any verification or approval stage.
func Rejectable(name string) bool {
	switch name {
	case UnderVerification, Verified, Approved:
		return true
	}

	return false
}

// Table is the loaded stage graph, keyed by stage name.
type Table struct {
	defs  map[string]Definition
	order []string
}

// NewTable builds the canonical stage table with the given delays.
func NewTable(cfg Config) *Table {
	defs := []Definition{
		{
			Name:          Draft,
			NextStage:     Submitted,
			RequiredRoles: []models.Role{models.RoleOperator, models.RoleLineIncharge},
		},
		{
			Name:              Submitted,
			NextStage:         UnderVerification,
			AutoProgress:      true,
			AutoProgressDelay: cfg.VerificationDelay,
			RequiredRoles:     []models.Role{models.RoleSupervisor, models.RoleAdmin},
		},
		{
			Name:          UnderVerification,
			NextStage:     Verified,
			RequiredRoles: []models.Role{models.RoleSupervisor, models.RoleAdmin},
		},
		{
			Name:              Verified,
			NextStage:         Approved,
			AutoProgress:      true,
			AutoProgressDelay: cfg.ApprovalDelay,
			RequiredRoles:     []models.Role{models.RoleAdmin, models.RoleAuditor},
		},
		{
			Name:              Approved,
			NextStage:         Completed,
			AutoProgress:      true,
			AutoProgressDelay: cfg.CompletionDelay,
		},
		{Name: Completed},
		{Name: Rejected},
	}

	table := &Table{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		table.defs[def.Name] = def
		table.order = append(table.order, def.Name)
	}

	return table
}

// Lookup returns the definition for the given stage name.
func (t *Table) Lookup(name string) (Definition, bool) {
	def, ok := t.defs[name]

	return def, ok
}

// Next returns the definition of the stage following the given one, when the
// given stage is not terminal.
func (t *Table) Next(name string) (Definition, bool) {
	def, ok := t.defs[name]
	if !ok || def.Terminal() {
		return Definition{}, false
	}

	return t.Lookup(def.NextStage)
}

// Names returns the stage names in lifecycle order.
func (t *Table) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)

	return names
}
