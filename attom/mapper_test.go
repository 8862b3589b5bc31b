package attom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`12`, 12},
		{`12.5`, 12.5},
		{`"12.5"`, 12.5},
		{`"1,250"`, 1250},
		{`""`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		var s stringNumber
		require.NoError(t, json.Unmarshal([]byte(tt.in), &s), tt.in)
		assert.InDelta(t, tt.want, float64(s), 0.0001, tt.in)
	}

	var s stringNumber
	assert.Error(t, json.Unmarshal([]byte(`"n/a"`), &s))
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 2, median([]float64{3, 1, 2}), 0.0001)
	assert.InDelta(t, 2.5, median([]float64{4, 1, 3, 2}), 0.0001)

	in := []float64{3, 1, 2}
	median(in)
	assert.Equal(t, []float64{3, 1, 2}, in, "input is not reordered")
}
