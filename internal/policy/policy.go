package policy

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/iron-coder/ironcoder/internal/config"
	"github.com/iron-coder/ironcoder/internal/facts"
	"github.com/iron-coder/ironcoder/internal/validator"
)

//go:embed rules/*.rego
var rulesFS embed.FS

const violationsQuery = "data.ironcoder.system.violations"

// Engine evaluates the system rules against fact tables
type Engine struct {
	query     rego.PreparedEvalQuery
	cfg       *config.Config
	validator *validator.Validator
}

// Violation represents a policy violation
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Board    string `json:"board"`
	Message  string `json:"message"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// HasErrors reports whether any violation has error severity
func (r *Result) HasErrors() bool {
	return r != nil && r.Summary.Errors > 0
}

// New prepares the embedded rules. cfg supplies severity overrides and may be nil.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	files, err := fs.Glob(rulesFS, "rules/*.rego")
	if err != nil {
		return nil, fmt.Errorf("finding policy files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no embedded policy files")
	}

	var opts []func(*rego.Rego)
	for _, f := range files {
		content, err := rulesFS.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		opts = append(opts, rego.Module(f, string(content)))
	}
	opts = append(opts, rego.Query(violationsQuery))

	query, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}

	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("init facts validator: %w", err)
	}

	return &Engine{query: query, cfg: cfg, validator: v}, nil
}

// Evaluate runs the rules against the tables. The tables are checked against
// the facts contract first.
func (e *Engine) Evaluate(ctx context.Context, tables facts.Tables) (*Result, error) {
	if err := e.validator.ValidateFacts(tables); err != nil {
		return nil, fmt.Errorf("invalid facts: %w", err)
	}

	inputMap, err := structToMap(tables)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	result := &Result{Violations: []Violation{}}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		violations, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				violation := Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					Board:    getString(vmap, "board"),
					Message:  getString(vmap, "message"),
				}
				if !e.cfg.IsRuleEnabled(violation.Rule) {
					continue
				}
				violation.Severity = e.cfg.GetRuleSeverity(violation.Rule, violation.Severity)
				result.Violations = append(result.Violations, violation)
			}
		}
	}

	sort.Slice(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.Board != b.Board {
			return a.Board < b.Board
		}
		return a.Message < b.Message
	})

	for _, v := range result.Violations {
		result.Summary.TotalViolations++
		switch v.Severity {
		case "error":
			result.Summary.Errors++
		case "warning":
			result.Summary.Warnings++
		case "info":
			result.Summary.Info++
		}
	}

	return result, nil
}

// Helper functions
func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
