package allanime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeobfuscateSourceURL(t *testing.T) {
	t.Run("DecodesXorHexPayload", func(t *testing.T) {
		// "/apivtwo/clock?id=abc123" XOR'd with the key, hex encoded
		decoded, err := deobfuscateSourceURL("175948514e4c4f57175b54575b5307515c05595a5b090a0b")
		require.NoError(t, err)
		assert.Equal(t, "/apivtwo/clock?id=abc123", decoded)
	})

	t.Run("RejectsInvalidHex", func(t *testing.T) {
		_, err := deobfuscateSourceURL("not hex at all")
		assert.Error(t, err)
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		decoded, err := deobfuscateSourceURL("")
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})
}

func TestPickLink(t *testing.T) {
	links := []streamLink{
		{Link: "https://cdn.example/480", Resolution: "480p"},
		{Link: "https://cdn.example/720", Resolution: "720p"},
		{Link: "https://cdn.example/1080", Resolution: "1080p"},
	}

	t.Run("ExactMatchWithSuffix", func(t *testing.T) {
		link, err := pickLink(links, "720")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/720", link.Link)
	})

	t.Run("ExactResolutionString", func(t *testing.T) {
		link, err := pickLink([]streamLink{{Link: "a", Resolution: "1080"}}, "1080")
		require.NoError(t, err)
		assert.Equal(t, "a", link.Link)
	})

	t.Run("FallsBackToLastLink", func(t *testing.T) {
		link, err := pickLink(links, "4k")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/1080", link.Link, "the API orders links lowest to highest")
	})

	t.Run("NoLinks", func(t *testing.T) {
		_, err := pickLink(nil, "1080")
		assert.Error(t, err)
	})
}
