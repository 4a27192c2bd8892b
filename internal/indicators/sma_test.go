package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA_Rolling(t *testing.T) {
	s := NewSMA(3)

	assert.Equal(t, 2.0, s.UpdateSingle(2))
	assert.False(t, s.Full())
	assert.Equal(t, 3.0, s.UpdateSingle(4))
	assert.Equal(t, 4.0, s.UpdateSingle(6))
	assert.True(t, s.Full())
	assert.Equal(t, 6.0, s.UpdateSingle(8))

	s.ResetState()
	assert.False(t, s.Full())
	assert.Equal(t, 1.0, s.UpdateSingle(1))
}

func TestEMA_Wilder(t *testing.T) {
	e := NewWilderEMA(4)
	assert.Equal(t, 0.25, e.Alpha())
	assert.Equal(t, 8.0, e.UpdateSingle(8))
	assert.Equal(t, 6.0, e.UpdateSingle(0))
}
