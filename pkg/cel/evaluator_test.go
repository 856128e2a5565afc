package cel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid simple expression",
			expr:      `address == "VK-HDFCBK"`,
			wantError: false,
		},
		{
			name:      "valid numeric comparison",
			expr:      `date > 1700000000000`,
			wantError: false,
		},
		{
			name:      "non-bool is still a valid expression",
			expr:      `body.size()`,
			wantError: false,
		},
		{
			name:      "invalid expression",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `payload.status == "active"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilterExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid bool expression",
			expr:      `type == 1`,
			wantError: false,
		},
		{
			name:      "non-bool expression",
			expr:      `date`,
			wantError: true,
		},
		{
			name:      "valid contains",
			expr:      `body.contains("OTP")`,
			wantError: false,
		},
		{
			name:      "valid regex",
			expr:      `body.matches("(?i)credited")`,
			wantError: false,
		},
		{
			name:      "type mismatch",
			expr:      `address > 3`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateFilterExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluateFilter(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	ctx := context.Background()
	vars := MessageVars{
		Address:       "VK-HDFCBK",
		Body:          "Rs 500 debited from a/c XX1234",
		Date:          1700000000000,
		Type:          1,
		IsTransaction: true,
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"address equals", `address == "VK-HDFCBK"`, true},
		{"address prefix", `address.startsWith("AX-")`, false},
		{"body contains", `body.contains("debited")`, true},
		{"date range", `date >= 1600000000000 && date < 1800000000000`, true},
		{"inbox type", `type == 1`, true},
		{"sent type", `type == 2`, false},
		{"classified", `is_transaction`, true},
		{"combined", `is_transaction && address.endsWith("HDFCBK")`, true},
		{"negated", `!is_transaction`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateFilter(ctx, tt.expr, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateFilter_CompileError(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.EvaluateFilter(context.Background(), `body +`, MessageVars{})
	assert.Error(t, err)
}

func TestCompileFilter_Reusable(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	filter, err := eval.CompileFilter(`body.contains("credited")`)
	require.NoError(t, err)
	assert.Equal(t, `body.contains("credited")`, filter.Expression())

	bodies := map[string]bool{
		"INR 20 credited":  true,
		"Your OTP is 1234": false,
		"":                 false,
	}

	var wg sync.WaitGroup
	for body, want := range bodies {
		wg.Add(1)
		go func(body string, want bool) {
			defer wg.Done()
			got, err := filter.Match(context.Background(), MessageVars{Body: body})
			assert.NoError(t, err)
			assert.Equal(t, want, got, body)
		}(body, want)
	}
	wg.Wait()
}

func TestCompileFilter_NonBool(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.CompileFilter(`address`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must return bool")
}
