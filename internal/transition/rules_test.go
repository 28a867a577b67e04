package transition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/caseflow/internal/domain"
	"github.com/gosuda/caseflow/internal/transition"
)

func TestDefaultRules(t *testing.T) {
	t.Parallel()

	rules := transition.DefaultRules()
	require.NoError(t, rules.Check())

	tests := []struct {
		typ       domain.TaskType
		role      domain.Role
		successor domain.TaskType
		hours     int
	}{
		{domain.TaskTypeSalesContact, domain.RoleSales, domain.TaskTypeSiteInspection, 0},
		{domain.TaskTypeSiteInspection, domain.RoleSiteEngineer, domain.TaskTypeDrawing, 0},
		{domain.TaskTypeDrawing, domain.RoleDesigner, domain.TaskTypeQuotation, 4},
		{domain.TaskTypeQuotation, domain.RoleEstimator, domain.TaskTypeProcurementAudit, 0},
		{domain.TaskTypeProcurementAudit, domain.RoleProcurement, domain.TaskTypeExecution, 0},
		{domain.TaskTypeProcurementBidding, domain.RoleProcurement, "", 0},
		{domain.TaskTypeExecution, domain.RoleProjectManager, "", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			t.Parallel()

			rule, ok := rules[tt.typ]
			require.True(t, ok)
			assert.Equal(t, tt.role, rule.Role)
			assert.Equal(t, tt.successor, rule.Successor)
			assert.Equal(t, tt.hours, rule.DeadlineHours)
		})
	}

	assert.True(t, rules[domain.TaskTypeDrawing].Acknowledgeable)
	assert.False(t, rules[domain.TaskTypeSalesContact].Acknowledgeable)
}

func TestDefaultRules_Validators(t *testing.T) {
	t.Parallel()

	rules := transition.DefaultRules()

	tests := []struct {
		name    string
		typ     domain.TaskType
		payload domain.Payload
		wantErr bool
	}{
		{"sales contact needs nothing", domain.TaskTypeSalesContact, domain.Payload{}, false},
		{"km positive", domain.TaskTypeSiteInspection, domain.Payload{KmTravelled: ptr(0.1)}, false},
		{"km missing", domain.TaskTypeSiteInspection, domain.Payload{}, true},
		{"km zero", domain.TaskTypeSiteInspection, domain.Payload{KmTravelled: ptr(0.0)}, true},
		{"boq true", domain.TaskTypeDrawing, domain.Payload{BOQUploaded: ptr(true)}, false},
		{"boq false", domain.TaskTypeDrawing, domain.Payload{BOQUploaded: ptr(false)}, true},
		{"drawing flag alone is not enough", domain.TaskTypeDrawing, domain.Payload{DrawingUploaded: ptr(true)}, true},
		{"quotation amount", domain.TaskTypeQuotation, domain.Payload{QuotationAmount: ptr(10.0)}, false},
		{"quotation missing", domain.TaskTypeQuotation, domain.Payload{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			validate := rules[tt.typ].Validate
			if validate == nil {
				assert.False(t, tt.wantErr)
				return
			}
			err := validate(tt.payload)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRules_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules transition.Rules
	}{
		{"dangling successor", transition.Rules{
			domain.TaskTypeSalesContact: {Role: domain.RoleSales, Successor: domain.TaskTypeDrawing},
		}},
		{"unknown role", transition.Rules{
			domain.TaskTypeSalesContact: {Role: "janitor"},
		}},
		{"negative deadline", transition.Rules{
			domain.TaskTypeSalesContact: {Role: domain.RoleSales, DeadlineHours: -1},
		}},
		{"deadline on terminal", transition.Rules{
			domain.TaskTypeSalesContact: {Role: domain.RoleSales, DeadlineHours: 2},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, tt.rules.Check())
		})
	}
}
