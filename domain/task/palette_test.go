package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()

	for _, c := range DefaultColors {
		assert.True(t, p.Contains(c), "expected %q in palette", c)
	}
	assert.False(t, p.Contains("teal"))
	assert.False(t, p.Contains("Blue"), "membership is case sensitive")
	assert.Equal(t, "blue", p.Default())
	assert.Equal(t, "red, blue, green, yellow, purple, pink", p.String())
}

func TestNewPalette(t *testing.T) {
	t.Run("custom palette", func(t *testing.T) {
		p, err := NewPalette([]string{"orange", "teal"}, "teal")
		require.NoError(t, err)
		assert.Equal(t, []string{"orange", "teal"}, p.Names())
		assert.Equal(t, "teal", p.Default())
	})

	t.Run("names are copied", func(t *testing.T) {
		p := DefaultPalette()
		names := p.Names()
		names[0] = "mutated"
		assert.Equal(t, "red", p.Names()[0])
	})

	errCases := []struct {
		name     string
		colors   []string
		fallback string
	}{
		{name: "empty", colors: nil, fallback: "blue"},
		{name: "blank entry", colors: []string{"red", " "}, fallback: "red"},
		{name: "duplicate", colors: []string{"red", "red"}, fallback: "red"},
		{name: "default missing", colors: []string{"red"}, fallback: "blue"},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPalette(tt.colors, tt.fallback)
			assert.Error(t, err)
		})
	}
}
