package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPairKey_Symmetry(t *testing.T) {
	assert.Equal(t, NewPairKey("P1", "P2"), NewPairKey("P2", "P1"))
	assert.Equal(t, "P1", NewPairKey("P2", "P1").A)
}

func TestNewPairKey_SelfPair(t *testing.T) {
	key := NewPairKey("P1", "P1")
	assert.Equal(t, "P1", key.A)
	assert.Equal(t, "P1", key.B)
}

func TestRecord_Text(t *testing.T) {
	rec := Record{"name": "abc", "tags": []string{"x", "y"}, "empty": ""}

	v, ok := rec.Text("name")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = rec.Text("tags")
	assert.True(t, ok)
	assert.Equal(t, "x;y", v)

	_, ok = rec.Text("empty")
	assert.False(t, ok, "empty strings count as absent")

	_, ok = rec.Text("missing")
	assert.False(t, ok)
}

func TestRecord_Number(t *testing.T) {
	rec := Record{"score": "0.92", "label": "high"}

	v, ok := rec.Number("score")
	assert.True(t, ok)
	assert.InDelta(t, 0.92, v, 1e-9)

	_, ok = rec.Number("label")
	assert.False(t, ok)

	_, ok = rec.Number("missing")
	assert.False(t, ok)
}
