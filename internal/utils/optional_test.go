package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	type body struct {
		Lead Optional[string] `json:"lead"`
	}

	tests := []struct {
		name    string
		input   string
		wantSet bool
		want    *string
	}{
		{"omitted", `{}`, false, nil},
		{"null", `{"lead": null}`, true, nil},
		{"value", `{"lead": "alice"}`, true, strPtr("alice")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			require.NoError(t, json.Unmarshal([]byte(tt.input), &b))
			assert.Equal(t, tt.wantSet, b.Lead.Set)
			assert.Equal(t, tt.want, b.Lead.Value)
		})
	}
}

func TestOptional_Apply(t *testing.T) {
	current := strPtr("old")

	Optional[string]{}.Apply(&current)
	assert.Equal(t, "old", *current)

	Some("new").Apply(&current)
	assert.Equal(t, "new", *current)

	Null[string]().Apply(&current)
	assert.Nil(t, current)
}

func strPtr(s string) *string { return &s }
