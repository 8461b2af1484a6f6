package fontregistry

import (
	"testing"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFontname(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.fonts")
	defer teardown()
	//
	for in, out := range map[string]string{
		"Vazirmatn":                       "vazirmatn",
		"B Nazanin.ttf":                   "b_nazanin",
		"/usr/share/fonts/Vazir-Bold.otf": "vazir-bold",
		"  Noto Naskh Arabic ":            "noto_naskh_arabic",
	} {
		assert.Equal(t, out, NormalizeFontname(in), in)
	}
}

func TestRegistryCachesTypeCases(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.fonts")
	defer teardown()
	//
	fr := NewRegistry()
	fr.StoreFont("gosans", font.FallbackFont())
	tc1, err := fr.TypeCase("gosans", 32)
	require.NoError(t, err)
	tc2, err := fr.TypeCase("gosans", 32)
	require.NoError(t, err)
	assert.Same(t, tc1, tc2)
	tc3, err := fr.TypeCase("gosans", 48)
	require.NoError(t, err)
	assert.NotSame(t, tc1, tc3)
	fr.LogFontList()
}

func TestRegistryFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.fonts")
	defer teardown()
	//
	fr := NewRegistry()
	tc, err := fr.TypeCase("vazirmatn", 32)
	require.Error(t, err)
	assert.Equal(t, core.EMISSING, core.Code(err))
	require.NotNil(t, tc)
	assert.Same(t, font.FallbackFont(), tc.ScalableFontParent())
	_, ok := fr.Font("vazirmatn")
	assert.False(t, ok)
}
