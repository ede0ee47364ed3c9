package tools

import (
	"regexp"
	"strings"
	"time"
)

// Only digits, operators, parentheses, dots and whitespace are allowed
// before an expression is evaluated.
var exprPattern = regexp.MustCompile(`^[0-9\s+\-*/().]+$`)

func init() {
	DefaultRegistry.MustRegister("now", toolNow)
	DefaultRegistry.MustRegister("calculator", toolCalculator)
}

func toolNow(_ map[string]any) map[string]any {
	return map[string]any{"ok": true, "utc": time.Now().UTC().Format(time.RFC3339)}
}

func toolCalculator(args map[string]any) map[string]any {
	expr, _ := args["expression"].(string)
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return map[string]any{"ok": false, "error": "missing 'expression'"}
	}
	if !exprPattern.MatchString(expr) {
		return map[string]any{"ok": false, "error": "expression contains invalid characters"}
	}
	value, err := evalExpr(expr)
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	return map[string]any{"ok": true, "result": value}
}
