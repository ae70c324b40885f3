package ridderiq_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

func TestQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "plain string", value: "abc", expected: `"abc"`},
		{name: "embedded quote", value: `ab"c`, expected: `"ab\"c"`},
		{name: "integer", value: "123", expected: "123"},
		{name: "negative decimal", value: "-12.50", expected: "-12.50"},
		{name: "true", value: "true", expected: "true"},
		{name: "mixed case false", value: "FaLsE", expected: "FaLsE"},
		{name: "empty", value: "", expected: `""`},
		{name: "function call", value: "now()", expected: "now()"},
		{name: "function call with args", value: "date(2024, 1, 1)", expected: "date(2024, 1, 1)"},
		{name: "leading dot is not a numeral", value: ".5", expected: `".5"`},
		{name: "trailing dot is not a numeral", value: "5.", expected: `"5."`},
		{name: "plus sign is not a numeral", value: "+5", expected: `"+5"`},
		{name: "whitespace kept inside quotes", value: " Test ", expected: `" Test "`},
		{name: "parentheses without identifier", value: "(1,2)", expected: `"(1,2)"`},
		{name: "trailing backslash", value: `C:\`, expected: `"C:\\"`},
		{name: "backslash before quote", value: `a\"b`, expected: `"a\\\"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ridderiq.Quote(tt.value))
		})
	}
}

func TestParseOperator(t *testing.T) {
	t.Parallel()

	op, err := ridderiq.ParseOperator("STARTSWITH")
	require.NoError(t, err)
	assert.Equal(t, ridderiq.OperatorStartsWith, op)

	op, err = ridderiq.ParseOperator(" Between ")
	require.NoError(t, err)
	assert.Equal(t, ridderiq.OperatorBetween, op)

	_, err = ridderiq.ParseOperator("approx")
	require.ErrorIs(t, err, ridderiq.ErrUnknownOperator)
}

func TestParseFilterMode(t *testing.T) {
	t.Parallel()

	mode, err := ridderiq.ParseFilterMode("Advanced")
	require.NoError(t, err)
	assert.Equal(t, ridderiq.FilterModeAdvanced, mode)

	_, err = ridderiq.ParseFilterMode("")
	require.ErrorIs(t, err, ridderiq.ErrUnknownFilterMode)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCompile_Simple(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		clauses  []ridderiq.FilterClause
		expected string
	}{
		{
			name:     "no clauses",
			clauses:  nil,
			expected: "",
		},
		{
			name: "between",
			clauses: []ridderiq.FilterClause{
				{Field: "age", Operator: ridderiq.OperatorBetween, Value: "1", Value2: "5"},
			},
			expected: "age[between](1, 5)",
		},
		{
			name: "between with strings",
			clauses: []ridderiq.FilterClause{
				{Field: "name", Operator: ridderiq.OperatorBetween, Value: "a", Value2: "m"},
			},
			expected: `name[between]("a", "m")`,
		},
		{
			name: "between without second value is skipped",
			clauses: []ridderiq.FilterClause{
				{Field: "age", Operator: ridderiq.OperatorBetween, Value: "1"},
			},
			expected: "",
		},
		{
			name: "in already parenthesized",
			clauses: []ridderiq.FilterClause{
				{Field: "age", Operator: ridderiq.OperatorIn, Value: "(1,2,3)"},
			},
			expected: "age[in](1,2,3)",
		},
		{
			name: "in gets parentheses",
			clauses: []ridderiq.FilterClause{
				{Field: "age", Operator: ridderiq.OperatorIn, Value: "1,2,3"},
			},
			expected: "age[in](1,2,3)",
		},
		{
			name: "in members are not quoted",
			clauses: []ridderiq.FilterClause{
				{Field: "code", Operator: ridderiq.OperatorIn, Value: `"A","B"`},
			},
			expected: `code[in]("A","B")`,
		},
		{
			name: "two clauses in order",
			clauses: []ridderiq.FilterClause{
				{Field: "name", Operator: ridderiq.OperatorEq, Value: "Test"},
				{Field: "age", Operator: ridderiq.OperatorGt, Value: "20"},
			},
			expected: `name[eq]"Test" and age[gt]20`,
		},
		{
			name: "empty field and empty value are skipped",
			clauses: []ridderiq.FilterClause{
				{Field: "", Operator: ridderiq.OperatorEq, Value: "x"},
				{Field: "name", Operator: ridderiq.OperatorEq, Value: ""},
				{Field: "active", Operator: ridderiq.OperatorEq, Value: "true"},
			},
			expected: "active[eq]true",
		},
		{
			name: "operator casing is canonicalized",
			clauses: []ridderiq.FilterClause{
				{Field: "name", Operator: "STARTSWITH", Value: "Ri"},
				{Field: "age", Operator: "BETWEEN", Value: "1", Value2: "2"},
				{Field: "id", Operator: "IN", Value: "7,8"},
			},
			expected: `name[startsWith]"Ri" and age[between](1, 2) and id[in](7,8)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := ridderiq.Compile(ridderiq.FilterModeSimple, tt.clauses, "ignored")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCompile_Advanced(t *testing.T) {
	t.Parallel()

	clauses := []ridderiq.FilterClause{
		{Field: "name", Operator: ridderiq.OperatorEq, Value: "Other"},
	}

	result, err := ridderiq.Compile(ridderiq.FilterModeAdvanced, clauses, `name=="test" AND age>20`)
	require.NoError(t, err)
	assert.Equal(t, `name=="test" AND age>20`, result)

	result, err = ridderiq.Compile(ridderiq.FilterModeAdvanced, clauses, "")
	require.NoError(t, err)
	assert.Empty(t, result)

	result, err = ridderiq.Compile(ridderiq.FilterModeAdvanced, clauses, " \t ")
	require.NoError(t, err)
	assert.Empty(t, result)

	result, err = ridderiq.Compile(ridderiq.FilterModeAdvanced, nil, "  age>20 ")
	require.NoError(t, err)
	assert.Equal(t, "  age>20 ", result)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown operator", func(t *testing.T) {
		t.Parallel()

		_, err := ridderiq.Compile(ridderiq.FilterModeSimple, []ridderiq.FilterClause{
			{Field: "name", Operator: "approx", Value: "x"},
		}, "")
		require.Error(t, err)
		assert.True(t, ridderiq.IsValidationError(err))
		require.ErrorIs(t, err, ridderiq.ErrUnknownOperator)
	})

	t.Run("unknown operator on a skipped clause is ignored", func(t *testing.T) {
		t.Parallel()

		result, err := ridderiq.Compile(ridderiq.FilterModeSimple, []ridderiq.FilterClause{
			{Field: "name", Operator: "approx", Value: ""},
		}, "")
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()

		_, err := ridderiq.Compile("fuzzy", nil, "")
		require.Error(t, err)
		assert.True(t, ridderiq.IsValidationError(err))
		require.ErrorIs(t, err, ridderiq.ErrUnknownFilterMode)
	})

	t.Run("empty mode is not inferred", func(t *testing.T) {
		t.Parallel()

		_, err := ridderiq.Compile("", nil, "name==1")
		require.ErrorIs(t, err, ridderiq.ErrUnknownFilterMode)
	})
}
