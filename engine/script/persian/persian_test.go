package persian

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.script")
	defer teardown()
	//
	tab := Default()
	assert.Equal(t, 40, tab.Len())
	beh, ok := tab.Letter('ب')
	require.True(t, ok)
	assert.Equal(t, 'ﺏ', beh.Isolated)
	assert.Equal(t, 'ﺒ', beh.Medial)
	alef, _ := tab.Letter('ا')
	assert.True(t, alef.CanJoin(Back))
	assert.False(t, alef.CanJoin(Front))
	f, ok := tab.FormOf('ﺑ')
	assert.True(t, ok)
	assert.Equal(t, Initial, f)
	_, ok = tab.FormOf('ب')
	assert.False(t, ok, "logical letters are not presentation forms")
}

func TestConnectedForm(t *testing.T) {
	beh, _ := Default().Letter('ب')
	for sides, expected := range map[JoinSide]rune{
		None:  'ﺏ',
		Back:  'ﺐ',
		Front: 'ﺑ',
		Both:  'ﺒ',
	} {
		g, _ := beh.ConnectedForm(sides)
		assert.Equal(t, expected, g, "sides=%d", sides)
	}
	dal, _ := Default().Letter('د')
	g, form := dal.ConnectedForm(Both)
	assert.Equal(t, 'ﺪ', g)
	assert.Equal(t, Final, form)
}

func TestShapeString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.script")
	defer teardown()
	//
	tab := Default()
	for input, expected := range map[string]string{
		"بب":   "ﺑﺐ",
		"ببب":  "ﺑﺒﺐ",
		"سلام": "ﺳﻠﺎﻡ",
		"ریال": "ﺭﯾﺎﻝ",
		"دو":   "ﺩﻭ",
		"ب":    "ﺏ",
	} {
		shaped, err := tab.ShapeString(input, true)
		require.NoError(t, err)
		assert.Equal(t, expected, shaped, "shaping %q", input)
	}
}

func TestShapeUnknown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.script")
	defer teardown()
	//
	tab := Default()
	_, err := tab.ShapeString("بXب", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownCharacter))
	var uerr UnknownCharacterError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 'X', uerr.Char)
	assert.Equal(t, "بXب", uerr.Text)
	assert.Equal(t, core.EUNKNOWNCHAR, core.Code(err))
	//
	shaped, err := tab.ShapeString("بXب", false)
	require.NoError(t, err)
	assert.Equal(t, "ﺏXﺏ", shaped, "unknown characters must not join")
}

func TestShapeWithNonJoiner(t *testing.T) {
	tab := Default()
	shaped, err := tab.ShapeString("ب\u200cب", true)
	require.NoError(t, err)
	assert.Equal(t, "ﺏ\u200cﺏ", shaped)
}

func TestSplitWithLigatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.script")
	defer teardown()
	//
	tab := Default()
	spans, err := tab.SplitIntoCharacters("سلام", NewLigatures(DefaultLigatures...), true)
	require.NoError(t, err)
	require.Len(t, spans, 3)
	assert.Equal(t, "س", spans[0].Source)
	assert.Equal(t, "لا", spans[1].Source)
	assert.Equal(t, "ﻠﺎ", spans[1].Shaped)
	assert.Equal(t, 1, spans[1].Start)
	assert.Equal(t, 3, spans[1].End)
	assert.Equal(t, "م", spans[2].Source)
	shaped, _ := tab.ShapeString("سلام", true)
	assert.Equal(t, shaped, Shaped(spans))
}

func TestSplitReproducesSource(t *testing.T) {
	tab := Default()
	ligs := NewLigatures(DefaultLigatures...)
	for _, input := range []string{"ریال", "الله", "کتابخانه", "بلا", "لالا"} {
		spans, err := tab.SplitIntoCharacters(input, ligs, true)
		require.NoError(t, err)
		var src strings.Builder
		for i, sp := range spans {
			src.WriteString(sp.Source)
			if i > 0 {
				assert.Equal(t, spans[i-1].End, sp.Start)
			}
		}
		assert.Equal(t, input, src.String())
	}
}

func TestLigaturePrecedence(t *testing.T) {
	tab := Default()
	ligs := NewLigatures("لا", "لله", "لل")
	spans, err := tab.SplitIntoCharacters("الله", ligs, true)
	require.NoError(t, err)
	require.Len(t, spans, 2, "longest ligature must win")
	assert.Equal(t, "لله", spans[1].Source)
	//
	ligs = NewLigatures("لا", "لا")
	assert.Equal(t, 1, ligs.Len())
	spans, err = tab.SplitIntoCharacters("لالا", ligs, true)
	require.NoError(t, err)
	assert.Len(t, spans, 2)
	//
	spans, err = tab.SplitIntoCharacters("سلام", nil, true)
	require.NoError(t, err)
	assert.Len(t, spans, 4)
}

func TestCombiningMarks(t *testing.T) {
	tab := Default()
	spans, err := tab.SplitIntoCharacters("بَب", nil, true)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "ﺑَ", spans[0].Shaped, "marks must not break joining")
	assert.Equal(t, "ﺐ", spans[1].Shaped)
}

func TestLoadTable(t *testing.T) {
	tab, err := LoadTable(strings.NewReader(`{"letters":[
		{"character":"ب","isolated":"ﺏ","final":"ﺐ","initial":"ﺑ","medial":"ﺒ"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, tab.Len())
	//
	_, err = LoadTable(strings.NewReader(`{"letters":[{"character":"ب"}]}`))
	assert.Error(t, err, "isolated form is required")
	assert.Equal(t, core.EINVALID, core.Code(err))
	//
	data, err := Default().MarshalJSON()
	require.NoError(t, err)
	again, err := ParseTable(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Forms(), again.Forms())
}

func TestJoiningOverTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.script")
	defer teardown()
	//
	tab := Default()
	const pred = 'ب' // joins to the front
	for _, ch := range tab.Letters() {
		l, _ := tab.Letter(ch)
		shaped, err := tab.ShapeString(string([]rune{pred, ch}), true)
		require.NoError(t, err)
		glyphs := []rune(shaped)
		require.Len(t, glyphs, 2)
		if l.Final == 0 {
			assert.Equal(t, l.Isolated, glyphs[1], "%s cannot join back", l.Description)
			assert.Equal(t, 'ﺏ', glyphs[0], "predecessor of %s must stay isolated", l.Description)
			continue
		}
		assert.Equal(t, l.Final, glyphs[1], "final form of %s", l.Description)
		if l.Medial == 0 {
			continue
		}
		shaped, err = tab.ShapeString(string([]rune{pred, ch, pred}), true)
		require.NoError(t, err)
		assert.Equal(t, l.Medial, []rune(shaped)[1], "medial form of %s", l.Description)
	}
}

func TestSplitIsIdempotent(t *testing.T) {
	tab := Default()
	ligs := NewLigatures(DefaultLigatures...)
	for _, ch := range tab.Letters() {
		text := "ل" + string(ch) + "لا" + string(ch) + "الله"
		spans, err := tab.SplitIntoCharacters(text, ligs, true)
		require.NoError(t, err)
		var src strings.Builder
		for _, sp := range spans {
			src.WriteString(sp.Source)
		}
		require.Equal(t, text, src.String())
		again, err := tab.SplitIntoCharacters(src.String(), ligs, true)
		require.NoError(t, err)
		assert.Equal(t, spans, again, "splitting %q twice", text)
	}
}

func TestSplitKeepsDecomposedText(t *testing.T) {
	tab := Default()
	text := "\u0627\u0653\u0628" // alef, combining madda, beh
	spans, err := tab.SplitIntoCharacters(text, nil, true)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "\u0627\u0653", spans[0].Source)
	assert.Equal(t, "\ufe8d\u0653", spans[0].Shaped)
	assert.Equal(t, "ﺏ", spans[1].Shaped, "alef does not join to the front")
	var src strings.Builder
	for _, sp := range spans {
		src.WriteString(sp.Source)
	}
	assert.Equal(t, text, src.String())
}
