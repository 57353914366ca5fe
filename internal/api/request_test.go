package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseValue(t *testing.T) {
	tests := []struct {
		raw     string
		empty   bool
		number  int64
		numeric bool
	}{
		{`12`, false, 12, true},
		{`"12"`, false, 12, true},
		{`" 7 "`, false, 7, true},
		{`0`, true, 0, true},
		{`"0"`, false, 0, true},
		{`""`, true, 0, false},
		{`null`, true, 0, false},
		{`1.5`, false, 0, false},
		{`"abc"`, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var v struct {
				Q looseValue `json:"q"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"q":`+tt.raw+`}`), &v))

			assert.True(t, v.Q.present)
			assert.Equal(t, tt.empty, v.Q.empty())
			n, err := v.Q.int64()
			if tt.numeric {
				require.NoError(t, err)
				assert.Equal(t, tt.number, n)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLooseValueMissing(t *testing.T) {
	var req dispenseRequest
	require.NoError(t, json.Unmarshal([]byte(`{"medicine_id":1,"quantity":2}`), &req))

	_, err := req.toCommand()
	assert.EqualError(t, err, "Missing required fields")
}

func TestLooseValueText(t *testing.T) {
	tests := map[string]bool{
		`"Alice"`:   true,
		`""`:        true,
		`null`:      true,
		`7`:         false,
		`true`:      false,
		`{"a":1}`:   false,
		`["x","y"]`: false,
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			var v looseValue
			require.NoError(t, json.Unmarshal([]byte(raw), &v))
			assert.Equal(t, want, v.text())
		})
	}
}
