package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "double quoted",
			line: `["a.db","1","A1","100"]`,
			want: []string{"a.db", "1", "A1", "100"},
		},
		{
			name: "single quoted with spaces",
			line: `['C:/data/book.xlsx', '2', 'B7', 'hello world']`,
			want: []string{"C:/data/book.xlsx", "2", "B7", "hello world"},
		},
		{
			name: "bare numbers",
			line: `["a.db", 3, "C1", 4.5]`,
			want: []string{"a.db", "3", "C1", "4.5"},
		},
		{
			name: "empty value",
			line: `["a.db", "1", "A1", ""]`,
			want: []string{"a.db", "1", "A1", ""},
		},
		{
			name: "value with separators",
			line: `["a.db", "1", "A1", "k=v:w"]`,
			want: []string{"a.db", "1", "A1", "k=v:w"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecord_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "too few items", line: `["a.db", "1", "A1"]`},
		{name: "too many items", line: `["a.db", "1", "A1", "100", "x"]`},
		{name: "nested list", line: `["a.db", ["1"], "A1", "100"]`},
		{name: "mapping item", line: `["a.db", {"s": 1}, "A1", "100"]`},
		{name: "null item", line: `["a.db", "1", "A1", null]`},
		{name: "mapping", line: `{"path": "a.db"}`},
		{name: "plain scalar", line: `a.db,1,A1,100`},
		{name: "block sequence", line: `- a.db`},
		{name: "unterminated", line: `["a.db", "1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(tt.line)
			assert.Error(t, err)
		})
	}
}
