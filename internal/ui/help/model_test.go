package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/advisor-ai/internal/keys"
	"github.com/nhle/advisor-ai/internal/theme"
)

func TestViewListsBindings(t *testing.T) {
	m := New(theme.New(true), keys.DefaultKeyMap(), 120, 40)
	out := m.View()

	assert.Contains(t, out, "Keyboard Shortcuts")
	for _, want := range []string{"ctrl+e", "contact advisor", "ctrl+o", "history", "ctrl+k"} {
		assert.Contains(t, out, want)
	}
}
