package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	t.Parallel()

	name := Instance("go-large")
	assert.Len(t, name, len("go-large-")+IDLength)
	assert.True(t, HasPrefix(name, "go-large"))
}

func TestInstance_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := Instance("agent")
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestHasPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		want   bool
	}{
		{"go-large-abc123", "go-large", true},
		{"go-largeabc123", "go-large", false},
		{"other-abc123", "go-large", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPrefix(tt.name, tt.prefix), "%s / %s", tt.name, tt.prefix)
	}
}
