package batch

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RecordFields is the number of items in a batch record: path, sheet, cell, value.
const RecordFields = 4

var errNotSequence = errors.New("record must be a single-line list like [\"book.xlsx\", \"1\", \"A1\", \"100\"]")

// ParseRecord parses one batch line into its four fields.
//
// A record is a flow sequence of exactly four scalars, quoted with either
// single or double quotes or left bare for numbers. Nested lists, maps,
// nulls and aliases are rejected.
func ParseRecord(line string) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(line), &doc); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errNotSequence
	}

	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode || seq.Style&yaml.FlowStyle == 0 {
		return nil, errNotSequence
	}
	if len(seq.Content) != RecordFields {
		return nil, fmt.Errorf("record has %d items, want %d", len(seq.Content), RecordFields)
	}

	fields := make([]string, 0, RecordFields)
	for i, item := range seq.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("item %d is not a plain value", i+1)
		}
		if item.Tag == "!!null" {
			return nil, fmt.Errorf("item %d is null", i+1)
		}
		fields = append(fields, item.Value)
	}

	return fields, nil
}
