package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/agentflow/internal/domain"
)

func TestParseReport(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain json",
			raw:  `{"title":"T","summary":"S","key_points":["a"],"limitations":[]}`,
			want: `{"title":"T","summary":"S","key_points":["a"],"limitations":[]}`,
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"title\": \"T\"}\n```",
			want: `{"title":"T"}`,
		},
		{
			name: "bare fence",
			raw:  "  ```\n{\"title\": \"T\"}\n```  ",
			want: `{"title":"T"}`,
		},
		{
			name: "trailing comma is repaired",
			raw:  `{"title": "T", "key_points": ["a", "b",],}`,
			want: `{"title":"T","key_points":["a","b"]}`,
		},
		{
			name: "prose falls back to raw output",
			raw:  "Sorry, I cannot produce a report.",
			want: `{"raw_output":"Sorry, I cannot produce a report."}`,
		},
		{
			name: "json array is not a report",
			raw:  `["a","b"]`,
			want: `{"raw_output":"[\"a\",\"b\"]"}`,
		},
		{
			name: "empty text",
			raw:  "   ",
			want: `{"raw_output":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReport(tt.raw)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestParseReportDecodesIntoReport(t *testing.T) {
	got := ParseReport("```json\n" + `{"title":"Trends","summary":"S","key_points":["k1","k2"],"limitations":["l1"]}` + "\n```")

	var report domain.Report
	require.NoError(t, json.Unmarshal(got, &report))
	assert.Equal(t, "Trends", report.Title)
	assert.Equal(t, []string{"k1", "k2"}, report.KeyPoints)
	assert.Equal(t, []string{"l1"}, report.Limitations)
}
