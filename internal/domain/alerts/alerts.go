// Package alerts evaluates low-stock alert rules over the product catalog.
//
// Rules are CEL expressions over a product snapshot, so operators can go
// beyond the built-in threshold check (for example alerting on stock value
// rather than quantity) without code changes.
package alerts

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"posrail/internal/core/apperror"
	"posrail/internal/domain/catalog/product"
	"posrail/pkg/logger"
)

// DefaultRule is the threshold check every deployment starts with.
const DefaultRule = "stock_base_unit <= min_alert_stock"

// Alert is one product that matched a rule.
type Alert struct {
	Product *product.Product `json:"product"`
	Rule    string           `json:"rule"`
}

// Engine compiles and evaluates alert rules.
type Engine struct {
	env      *cel.Env
	products product.Repository
}

// NewEngine creates an alert engine over the product repository.
func NewEngine(products product.Repository) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("unit_kind", cel.StringType),
		cel.Variable("stock_base_unit", cel.IntType),
		cel.Variable("min_alert_stock", cel.IntType),
		cel.Variable("cost_price", cel.DoubleType),
		cel.Variable("total_stock_value", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	return &Engine{env: env, products: products}, nil
}

// Compile parses and type-checks a rule, returning a validation error the
// HTTP layer can surface when the expression is malformed or not boolean.
func (e *Engine) Compile(rule string) (cel.Program, error) {
	ast, issues := e.env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid alert rule").
			WithDetail("rule", rule).
			WithDetail("error", issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewValidation("alert rule must evaluate to a boolean").
			WithDetail("rule", rule)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build cel program: %w", err)
	}
	return prg, nil
}

// Evaluate runs a compiled rule against one product.
func Evaluate(prg cel.Program, p *product.Product) (bool, error) {
	costPrice, _ := p.CostPrice.Float64()
	totalValue, _ := p.TotalStockValue.Float64()
	out, _, err := prg.Eval(map[string]any{
		"name":              p.Name,
		"unit_kind":         string(p.UnitKind),
		"stock_base_unit":   p.StockBaseUnit.Int64(),
		"min_alert_stock":   p.MinAlertStock.Int64(),
		"cost_price":        costPrice,
		"total_stock_value": totalValue,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate rule: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule returned %T, want bool", out.Value())
	}
	return matched, nil
}

// LowStock returns all products matching the given rule; an empty rule uses
// DefaultRule.
func (e *Engine) LowStock(ctx context.Context, rule string) ([]Alert, error) {
	if rule == "" {
		rule = DefaultRule
	}
	prg, err := e.Compile(rule)
	if err != nil {
		return nil, err
	}

	products, err := e.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0)
	for _, p := range products {
		matched, err := Evaluate(prg, p)
		if err != nil {
			logger.Warn(ctx, "alert rule evaluation failed",
				"product_id", p.ID,
				"rule", rule,
				"error", err,
			)
			continue
		}
		if matched {
			alerts = append(alerts, Alert{Product: p, Rule: rule})
		}
	}
	return alerts, nil
}
