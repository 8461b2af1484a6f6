package harfbuzz_test

import (
	"fmt"
	"testing"

	hb "github.com/benoitkugler/textlayout/harfbuzz"
	"github.com/npillmayer/ocrgen/core/font"
	"github.com/npillmayer/ocrgen/engine/glyphing"
	"github.com/npillmayer/ocrgen/engine/glyphing/harfbuzz"
	"github.com/npillmayer/ocrgen/engine/raster"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/language"
)

func TestHBScript(t *testing.T) {
	id := "Plrd"
	script := language.MustParseScript(id)
	hbScript := harfbuzz.Script4HB(script)
	hstr := fmt.Sprintf("%x", uint32(hbScript))
	if hstr != "706c7264" {
		t.Logf("script %q: %x => %x", id, script, uint32(hbScript))
		t.Errorf("expected HB script of 706c7264, is %s", hstr)
	}
}

func TestHBLang(t *testing.T) {
	langT, err := language.Parse("fa_IR")
	if err != nil {
		t.Error(err)
	}
	h := harfbuzz.Lang4HB(langT)
	if h != "fa-ir" {
		t.Logf("Go lang = %v", langT)
		t.Logf("HB lang = %v, expected fa-ir", h)
		t.Fail()
	}
}

func TestHBDir(t *testing.T) {
	dir := harfbuzz.Direction4HB(glyphing.RightToLeft)
	if dir != hb.RightToLeft {
		t.Errorf("expected dir to be %d, is %d", hb.RightToLeft, dir)
	}
}

func TestParseFeatures(t *testing.T) {
	ff, err := harfbuzz.ParseFeatures([]string{"-liga", "aalt=2", "kern[3:5]"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ff) != 3 {
		t.Fatalf("expected 3 feature ranges, have %d", len(ff))
	}
	if ff[0].Feature.String() != "liga" || ff[0].On {
		t.Errorf("expected liga to be switched off, is %+v", ff[0])
	}
	if f := harfbuzz.FeatureRange4HB(ff[0]); f.Value != 0 || f.End != hb.FeatureGlobalEnd {
		t.Errorf("expected global switch-off, is %+v", f)
	}
	if f := harfbuzz.FeatureRange4HB(ff[1]); f.Value != 2 {
		t.Errorf("expected alternate 2, is %d", f.Value)
	}
	if ff[2].Start != 3 || ff[2].End != 5 || !ff[2].On {
		t.Errorf("expected kern on for [3,5), is %+v", ff[2])
	}
	if _, err = harfbuzz.ParseFeatures([]string{"=="}); err == nil {
		t.Errorf("expected error for malformed feature")
	}
}

// --- Test Suite Preparation ------------------------------------------------

type RasterTestEnviron struct {
	suite.Suite
	typecase *font.TypeCase
}

// listen for 'go test' command --> run test methods
func TestRasterFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.glyphs")
	defer teardown()
	suite.Run(t, new(RasterTestEnviron))
}

// run once, before test suite methods
func (env *RasterTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	env.typecase = loadGoFont(env.T(), 32)
}

// --- Tests -----------------------------------------------------------------

func (env *RasterTestEnviron) TestShape() {
	shaper, err := harfbuzz.NewShaper(env.typecase.ScalableFontParent())
	env.Require().NoError(err)
	input := "Hello"
	seq, err := shaper.Shape(input, glyphing.Params{Font: env.typecase})
	env.Require().NoError(err)
	env.Require().Len(seq.Glyphs, len(input))
	env.Equal('H', seq.Glyphs[0].CodePoint)
	env.Positive(seq.Advance())
	//
	other, err := font.ParseOpenTypeFont(env.typecase.ScalableFontParent().Binary)
	env.Require().NoError(err)
	tc, err := other.PrepareCase(32)
	env.Require().NoError(err)
	_, err = shaper.Shape(input, glyphing.Params{Font: tc})
	env.Error(err, "typecase of a different font must be rejected")
}

func (env *RasterTestEnviron) TestRender() {
	r, err := harfbuzz.NewRasterizer(env.typecase, 4)
	env.Require().NoError(err)
	rendering, err := r.Render("lo")
	env.Require().NoError(err)
	env.Equal(4, rendering.Left)
	env.Equal(rendering.Advance+8, rendering.Raster.W)
	env.Positive(rendering.Raster.InkCount(0, rendering.Raster.W))
	prefix, err := r.Measure("l")
	env.Require().NoError(err)
	env.Less(prefix, rendering.Advance)
	b, err := raster.Boundaries(r, rendering, []string{"l", "o"})
	env.Require().NoError(err)
	env.Equal([]int{4, 4 + rendering.Advance - prefix, 4 + rendering.Advance}, b)
	//
	_, err = r.Render("")
	env.Error(err)
}

func (env *RasterTestEnviron) TestRenderWithFeatures() {
	r, err := harfbuzz.NewRasterizer(env.typecase, 0)
	env.Require().NoError(err)
	plain, err := r.Measure("AVAV")
	env.Require().NoError(err)
	ff, err := harfbuzz.ParseFeatures([]string{"-kern"})
	env.Require().NoError(err)
	r.SetFeatures(ff)
	unkerned, err := r.Measure("AVAV")
	env.Require().NoError(err)
	env.GreaterOrEqual(unkerned, plain, "kerning only tightens AV pairs")
}

// ---------------------------------------------------------------------------

func loadGoFont(t *testing.T, size float64) *font.TypeCase {
	typecase, err := font.FallbackFont().PrepareCase(size)
	if err != nil {
		t.Fatal(err)
	}
	return typecase
}

func BenchmarkHBShape(b *testing.B) {
	typecase, _ := font.FallbackFont().PrepareCase(64)
	shaper, err := harfbuzz.NewShaper(typecase.ScalableFontParent())
	if err != nil {
		b.Fatal(err)
	}
	params := glyphing.PersianParams(typecase)
	for i := 0; i < b.N; i++ {
		seq, err := shaper.Shape("Persian samples are shaped right to left", params)
		if err != nil || seq.Glyphs == nil {
			b.Fatal("expected shaping output to be non-nil")
		}
	}
}
