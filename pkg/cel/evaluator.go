package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// MessageVars is the activation a filter expression sees for one message.
type MessageVars struct {
	Address       string
	Body          string
	Date          int64
	Type          int32
	IsTransaction bool
}

func (v MessageVars) activation() map[string]interface{} {
	return map[string]interface{}{
		"address":        v.Address,
		"body":           v.Body,
		"date":           v.Date,
		"type":           int64(v.Type),
		"is_transaction": v.IsTransaction,
	}
}

type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("address", cel.StringType),
		cel.Variable("body", cel.StringType),
		cel.Variable("date", cel.IntType),
		cel.Variable("type", cel.IntType),
		cel.Variable("is_transaction", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateExpression(expression string) error {
	_, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}
	return nil
}

func (e *Evaluator) ValidateFilterExpression(expression string) error {
	_, err := e.compileBool(expression)
	return err
}

// Filter is a compiled boolean expression. It is safe for concurrent use.
type Filter struct {
	expression string
	program    cel.Program
}

func (f *Filter) Expression() string {
	return f.expression
}

// CompileFilter type-checks expression and builds a reusable program.
func (e *Evaluator) CompileFilter(expression string) (*Filter, error) {
	ast, err := e.compileBool(expression)
	if err != nil {
		return nil, err
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Filter{expression: expression, program: program}, nil
}

// Match evaluates the filter against one message.
func (f *Filter) Match(ctx context.Context, vars MessageVars) (bool, error) {
	result, _, err := f.program.ContextEval(ctx, vars.activation())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}

// EvaluateFilter compiles and runs expression once.
func (e *Evaluator) EvaluateFilter(ctx context.Context, expression string, vars MessageVars) (bool, error) {
	filter, err := e.CompileFilter(expression)
	if err != nil {
		return false, err
	}
	return filter.Match(ctx, vars)
}

func (e *Evaluator) compileBool(expression string) (*cel.Ast, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	return ast, nil
}
