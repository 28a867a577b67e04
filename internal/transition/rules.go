package transition

import (
	"fmt"

	"github.com/gosuda/caseflow/internal/domain"
)

// Rule describes how one task type behaves in the pipeline.
type Rule struct {
	// Role is the case role that owns tasks of this type. Successor
	// assignees are resolved through the successor rule's Role.
	Role domain.Role
	// Validate checks the merged payload before completion. Nil means no
	// requirement.
	Validate func(p domain.Payload) error
	// Successor is created when a task of this type completes. Empty for
	// terminal stages.
	Successor domain.TaskType
	// DeadlineHours, when positive, puts a deadline that many business
	// hours after completion on the successor.
	DeadlineHours int
	// Acknowledgeable types may move PENDING -> ACKNOWLEDGED before start.
	Acknowledgeable bool
}

// Rules is the dispatch table keyed by task type. Adding a pipeline stage
// is a new entry, not a new branch.
type Rules map[domain.TaskType]Rule

// DefaultRules returns the standard sales-to-execution pipeline.
func DefaultRules() Rules {
	return Rules{
		domain.TaskTypeSalesContact: {
			Role:      domain.RoleSales,
			Successor: domain.TaskTypeSiteInspection,
		},
		domain.TaskTypeSiteInspection: {
			Role:      domain.RoleSiteEngineer,
			Validate:  requirePositive("kmTravelled", func(p domain.Payload) *float64 { return p.KmTravelled }),
			Successor: domain.TaskTypeDrawing,
		},
		domain.TaskTypeDrawing: {
			Role:            domain.RoleDesigner,
			Validate:        requireTrue("boqUploaded", func(p domain.Payload) *bool { return p.BOQUploaded }),
			Successor:       domain.TaskTypeQuotation,
			DeadlineHours:   4,
			Acknowledgeable: true,
		},
		domain.TaskTypeQuotation: {
			Role:      domain.RoleEstimator,
			Validate:  requirePositive("quotationAmount", func(p domain.Payload) *float64 { return p.QuotationAmount }),
			Successor: domain.TaskTypeProcurementAudit,
		},
		domain.TaskTypeProcurementAudit: {
			Role:      domain.RoleProcurement,
			Successor: domain.TaskTypeExecution,
		},
		domain.TaskTypeProcurementBidding: {
			Role: domain.RoleProcurement,
		},
		domain.TaskTypeExecution: {
			Role: domain.RoleProjectManager,
		},
	}
}

// Check reports table errors: unknown roles, dangling successors and
// negative deadlines.
func (r Rules) Check() error {
	for typ, rule := range r {
		if !rule.Role.Valid() {
			return fmt.Errorf("transition.Rules.Check: %s: unknown role %q", typ, rule.Role)
		}
		if rule.DeadlineHours < 0 {
			return fmt.Errorf("transition.Rules.Check: %s: negative deadline hours", typ)
		}
		if rule.Successor == "" {
			if rule.DeadlineHours > 0 {
				return fmt.Errorf("transition.Rules.Check: %s: deadline without successor", typ)
			}
			continue
		}
		if _, ok := r[rule.Successor]; !ok {
			return fmt.Errorf("transition.Rules.Check: %s: successor %s has no rule", typ, rule.Successor)
		}
	}
	return nil
}

func requirePositive(field string, get func(domain.Payload) *float64) func(domain.Payload) error {
	return func(p domain.Payload) error {
		v := get(p)
		if v == nil {
			return &domain.ValidationError{Field: field, Message: "is required"}
		}
		if *v <= 0 {
			return &domain.ValidationError{Field: field, Message: "must be greater than zero"}
		}
		return nil
	}
}

func requireTrue(field string, get func(domain.Payload) *bool) func(domain.Payload) error {
	return func(p domain.Payload) error {
		v := get(p)
		if v == nil || !*v {
			return &domain.ValidationError{Field: field, Message: "must be true"}
		}
		return nil
	}
}
