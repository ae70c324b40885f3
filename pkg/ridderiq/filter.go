package ridderiq

import (
	"fmt"
	"strings"
)

// Operator is a comparison in the RidderIQ filter language.
type Operator string

// Supported filter operators.
const (
	OperatorEq         Operator = "eq"
	OperatorNe         Operator = "ne"
	OperatorGt         Operator = "gt"
	OperatorGte        Operator = "gte"
	OperatorLt         Operator = "lt"
	OperatorLte        Operator = "lte"
	OperatorContains   Operator = "contains"
	OperatorStartsWith Operator = "startsWith"
	OperatorEndsWith   Operator = "endsWith"
	OperatorLike       Operator = "like"
	OperatorIn         Operator = "in"
	OperatorBetween    Operator = "between"
)

var operators = []Operator{
	OperatorEq, OperatorNe, OperatorGt, OperatorGte, OperatorLt, OperatorLte,
	OperatorContains, OperatorStartsWith, OperatorEndsWith, OperatorLike,
	OperatorIn, OperatorBetween,
}

// ParseOperator resolves an operator in any casing to its canonical token.
func ParseOperator(value string) (Operator, error) {
	trimmed := strings.TrimSpace(value)

	for _, op := range operators {
		if strings.EqualFold(trimmed, string(op)) {
			return op, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownOperator, value)
}

// FilterMode selects how the filter parameter is produced.
type FilterMode string

// Filter modes.
const (
	FilterModeSimple   FilterMode = "simple"
	FilterModeAdvanced FilterMode = "advanced"
)

// ParseFilterMode resolves a filter mode token.
func ParseFilterMode(value string) (FilterMode, error) {
	switch mode := FilterMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case FilterModeSimple, FilterModeAdvanced:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilterMode, value)
	}
}

// FilterClause is one field comparison of a simple filter.
type FilterClause struct {
	Field    string   `json:"field"            yaml:"field"`
	Operator Operator `json:"operator"         yaml:"operator"`
	Value    string   `json:"value"            yaml:"value"`
	Value2   string   `json:"value2,omitempty" yaml:"value2,omitempty"`
}

const clauseSeparator = " and "

// Compile produces the filter expression for the given mode. An empty result
// means no filter parameter should be sent.
func Compile(mode FilterMode, clauses []FilterClause, advanced string) (string, error) {
	switch mode {
	case FilterModeAdvanced:
		// A blank query sends no filter; anything else goes out untouched.
		if strings.TrimSpace(advanced) == "" {
			return "", nil
		}

		return advanced, nil
	case FilterModeSimple:
		return compileClauses(clauses)
	default:
		return "", NewValidationError("filter_mode", fmt.Errorf("%w: %q", ErrUnknownFilterMode, mode))
	}
}

func compileClauses(clauses []FilterClause) (string, error) {
	fragments := make([]string, 0, len(clauses))

	for i, clause := range clauses {
		if clause.Field == "" || clause.Value == "" {
			continue
		}

		op, err := ParseOperator(string(clause.Operator))
		if err != nil {
			return "", NewValidationError(fmt.Sprintf("filters[%d].operator", i), err)
		}

		fragment, ok := compileClause(clause, op)
		if !ok {
			continue
		}

		fragments = append(fragments, fragment)
	}

	return strings.Join(fragments, clauseSeparator), nil
}

func compileClause(clause FilterClause, op Operator) (string, bool) {
	switch op {
	case OperatorBetween:
		if clause.Value2 == "" {
			return "", false
		}

		return fmt.Sprintf("%s[%s](%s, %s)", clause.Field, op, Quote(clause.Value), Quote(clause.Value2)), true
	case OperatorIn:
		return fmt.Sprintf("%s[%s]%s", clause.Field, op, parenthesize(clause.Value)), true
	default:
		return fmt.Sprintf("%s[%s]%s", clause.Field, op, Quote(clause.Value)), true
	}
}

func parenthesize(list string) string {
	if strings.HasPrefix(list, "(") && strings.HasSuffix(list, ")") {
		return list
	}

	return "(" + list + ")"
}
