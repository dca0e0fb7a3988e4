package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"Coffee Cup", "T-Shirt", "Tshirt", "Café", "42", "coffee cup"})
	assert.Equal(t, []string{"caf", "coffeecup", "tshirt"}, got)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]string{"123", " "}))
}
