package subcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	mods := []Mod{{Name: "drive"}, {Name: "watch"}}
	m, err := Parse("watch", mods)
	require.NoError(t, err)
	assert.Equal(t, "watch", m.Name)

	_, err = Parse("", mods)
	assert.EqualError(t, err, "empty command, available: drive, watch")
	_, err = Parse("fly", mods)
	assert.EqualError(t, err, "unknown command='fly', available: drive, watch")

	assert.Panics(t, func() { _, _ = Parse("x", []Mod{{}}) })
}
