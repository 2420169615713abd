package wpforms

import (
	"strconv"
	"strings"
)

const (
	ConditionalGo   = "go"
	ConditionalStop = "stop"
)

// Evaluator decides whether a connection should receive a submission.
type Evaluator interface {
	Evaluate(fields Fields, entry Entry, form FormData, conn Connection) bool
}

type EvaluatorFunc func(fields Fields, entry Entry, form FormData, conn Connection) bool

func (f EvaluatorFunc) Evaluate(fields Fields, entry Entry, form FormData, conn Connection) bool {
	return f(fields, entry, form, conn)
}

// RuleEvaluator evaluates the connection's own conditional rules
// against the submitted field values.
type RuleEvaluator struct{}

var _ Evaluator = RuleEvaluator{}

func (RuleEvaluator) Evaluate(fields Fields, _ Entry, _ FormData, conn Connection) bool {
	if !conn.ConditionalLogic || len(conn.Conditionals) == 0 {
		return true
	}

	matched := false
	for _, group := range conn.Conditionals {
		if groupMatches(fields, group) {
			matched = true
			break
		}
	}

	if strings.EqualFold(strings.TrimSpace(conn.ConditionalType), ConditionalStop) {
		return !matched
	}
	return matched
}

// groupMatches reports whether every complete rule passes. Rules without
// a field or operator are ignored, so an empty group passes.
func groupMatches(fields Fields, group []Rule) bool {
	for _, r := range group {
		if strings.TrimSpace(r.Field.String()) == "" || strings.TrimSpace(r.Operator) == "" {
			continue
		}
		if !ruleMatches(fields, r) {
			return false
		}
	}
	return true
}

func ruleMatches(fields Fields, r Rule) bool {
	var submitted string
	if f, ok := fields[r.Field.String()]; ok {
		submitted = f.String("value")
	}
	left := normalize(submitted)
	right := normalize(r.Value.String())

	switch strings.TrimSpace(r.Operator) {
	case "==", "is":
		return anyLine(left, func(v string) bool { return v == right })
	case "!=", "is_not":
		return !anyLine(left, func(v string) bool { return v == right })
	case "e":
		return left == ""
	case "!e":
		return left != ""
	case "c":
		return strings.Contains(left, right)
	case "!c":
		return !strings.Contains(left, right)
	case "^":
		return strings.HasPrefix(left, right)
	case "~":
		return strings.HasSuffix(left, right)
	case ">":
		return compareNumbers(left, right, func(a, b float64) bool { return a > b })
	case "<":
		return compareNumbers(left, right, func(a, b float64) bool { return a < b })
	default:
		return false
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// anyLine checks each line separately: checkbox and multi-select
// values arrive newline separated.
func anyLine(value string, fn func(string) bool) bool {
	if !strings.Contains(value, "\n") {
		return fn(value)
	}
	for _, line := range strings.Split(value, "\n") {
		if fn(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func compareNumbers(left, right string, cmp func(a, b float64) bool) bool {
	a, err := strconv.ParseFloat(left, 64)
	if err != nil {
		return false
	}
	b, err := strconv.ParseFloat(right, 64)
	if err != nil {
		return false
	}
	return cmp(a, b)
}
