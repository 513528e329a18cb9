package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kanshi/internal/adapter"
)

func TestNewLoaders(t *testing.T) {
	loaders, err := NewLoaders(adapter.DefaultConfig(), adapter.NullLogger())
	require.NoError(t, err)
	require.Len(t, loaders, 2)
	assert.Equal(t, "kitsu.app", loaders[0].Hostname())
	assert.Equal(t, "anilist.co", loaders[1].Hostname())
}

func TestNewLoader_UnknownType(t *testing.T) {
	_, err := NewLoader(&SourceConfig{Type: "myanimelist"}, adapter.NullLogger())
	assert.ErrorContains(t, err, "unknown provider type")

	_, err = NewLoader(nil, adapter.NullLogger())
	assert.Error(t, err)
}
