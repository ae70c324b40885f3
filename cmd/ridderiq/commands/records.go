package commands

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/ridderiq-client/internal/constants"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

const filterFlagParts = 3

// recordFile is the wrapped form of an input file: {records: [...]}.
type recordFile struct {
	Records []ridderiq.Record `yaml:"records"`
}

// parseRecords accepts a YAML or JSON list of records, or an object with a
// records key holding that list.
func parseRecords(data []byte) ([]ridderiq.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, constants.ErrEmptyInputFile
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}

	var records []ridderiq.Record

	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("decoding records: %w", err)
		}
	case yaml.MappingNode:
		var wrapped recordFile
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("decoding records: %w", err)
		}

		records = wrapped.Records
	default:
		return nil, fmt.Errorf("decoding records: %w", constants.ErrEmptyInputFile)
	}

	if len(records) == 0 {
		return nil, constants.ErrEmptyInputFile
	}

	return records, nil
}

// parseFilterFlag parses field:operator:value. For between the value holds
// value:value2; for every other operator the rest of the flag is the value,
// so values may contain colons.
func parseFilterFlag(flag string) (ridderiq.FilterClause, error) {
	parts := strings.SplitN(flag, ":", filterFlagParts)
	if len(parts) != filterFlagParts || parts[0] == "" || parts[1] == "" {
		return ridderiq.FilterClause{}, fmt.Errorf("%w: %q", constants.ErrInvalidFilterFlag, flag)
	}

	operator, err := ridderiq.ParseOperator(parts[1])
	if err != nil {
		return ridderiq.FilterClause{}, fmt.Errorf("%w: %w", constants.ErrInvalidFilterFlag, err)
	}

	clause := ridderiq.FilterClause{Field: parts[0], Operator: operator, Value: parts[2]}

	if operator == ridderiq.OperatorBetween {
		bounds := strings.SplitN(parts[2], ":", 2) //nolint:mnd // lower and upper bound
		if len(bounds) != 2 {                      //nolint:mnd // lower and upper bound
			return ridderiq.FilterClause{}, fmt.Errorf("%w: between needs two values in %q", constants.ErrInvalidFilterFlag, flag)
		}

		clause.Value, clause.Value2 = bounds[0], bounds[1]
	}

	return clause, nil
}

func parseFilterFlags(flags []string) ([]ridderiq.FilterClause, error) {
	clauses := make([]ridderiq.FilterClause, 0, len(flags))

	for _, flag := range flags {
		clause, err := parseFilterFlag(flag)
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, clause)
	}

	return clauses, nil
}
