package agent

import (
	"testing"

	"github.com/entrhq/priceiq/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResults(t *testing.T) {
	sites := []string{"a.example", "b.example"}

	tests := []struct {
		name string
		raw  string
		want types.Results
	}{
		{
			name: "keeps requested sites only",
			raw:  `{"a.example": {"status": "success", "price": "2,49 €", "availability": "in-stock", "url": "https://a.example/p"}, "c.example": {"status": "success"}}`,
			want: types.Results{
				"a.example": {Status: types.StatusSuccess, Price: "2,49 €", Availability: "in-stock", URL: "https://a.example/p"},
				"b.example": types.FailRecord(),
			},
		},
		{
			name: "numeric price and upper-case status",
			raw:  `{"a.example": {"status": "SUCCESS", "price": 2.49}, "b.example": {"status": "fail", "notes": "bot wall"}}`,
			want: types.Results{
				"a.example": {Status: types.StatusSuccess, Price: "2.49"},
				"b.example": {Status: types.StatusFail, Notes: "bot wall"},
			},
		},
		{
			name: "unknown status is a failure",
			raw:  "```json\n{\"a.example\": {\"status\": \"partial\"}, \"b.example\": {}}\n```",
			want: types.Results{
				"a.example": types.FailRecord(),
				"b.example": types.FailRecord(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResults(tt.raw, sites)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResultsInvalid(t *testing.T) {
	_, err := parseResults("I could not find anything.", []string{"a.example"})
	assert.Error(t, err)

	_, err = parseResults(`["a.example"]`, []string{"a.example"})
	assert.Error(t, err)
}

func TestEncodeResults(t *testing.T) {
	out, err := encodeResults(types.Results{
		"a.example": {Status: types.StatusSuccess, Price: "1 €", URL: "https://a.example/?a=1&b=2"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{
  "a.example": {
    "status": "success",
    "price": "1 €",
    "availability": "",
    "url": "https://a.example/?a=1&b=2"
  }
}`, out)
}
