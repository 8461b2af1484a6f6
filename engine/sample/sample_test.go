package sample

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/raster"
	"github.com/npillmayer/ocrgen/engine/script/persian"
	"github.com/npillmayer/ocrgen/engine/segment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockRasterizer draws every glyph as a 6×12 block in a 12 pixel cell. Joining
// forms get a stroke on row 15 towards their neighbour.
type blockRasterizer struct {
	table *persian.Table
}

const cell = 12

func (br blockRasterizer) Measure(text string) (int, error) {
	return cell * utf8.RuneCountInString(text), nil
}

func (br blockRasterizer) Render(text string) (raster.Rendering, error) {
	glyphs := []rune(raster.Visual(text))
	w := cell * len(glyphs)
	r := raster.New(w, 20)
	for i, g := range glyphs {
		x := i * cell
		for y := 4; y <= 15; y++ {
			for dx := 3; dx <= 8; dx++ {
				r.Set(x+dx, y)
			}
		}
		form, _ := br.table.FormOf(g)
		if form == persian.Final || form == persian.Medial { // joins to the right
			for dx := 9; dx < cell; dx++ {
				r.Set(x+dx, 15)
			}
		}
		if form == persian.Initial || form == persian.Medial { // joins to the left
			for dx := 0; dx < 3; dx++ {
				r.Set(x+dx, 15)
			}
		}
	}
	return raster.Rendering{Image: r.Gray(), Raster: r, Left: 0, Advance: w}, nil
}

func TestCounter(t *testing.T) {
	c := NewCounter(0)
	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				ids <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, int64(100), c.Peek())
}

func TestAssembleJoinedPair(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.sample")
	defer teardown()
	//
	asm := NewAssembler(blockRasterizer{persian.Default()}, NewCounter(0))
	rec, err := asm.Assemble("بب")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.ID)
	assert.Equal(t, []string{"ﺑ", "ﺐ"}, rec.Parts)
	require.Len(t, rec.Boxes, 2)
	assert.Equal(t, segment.Box{X0: 12, Y0: 4, X1: 20, Y1: 15}, rec.Boxes[0], "initial form is on the right")
	assert.Equal(t, segment.Box{X0: 3, Y0: 4, X1: 12, Y1: 15}, rec.Boxes[1])
	assert.Equal(t, 24, rec.Width())
	assert.Equal(t, 20, rec.Height())
}

func TestAssembleLigature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.sample")
	defer teardown()
	//
	asm := NewAssembler(blockRasterizer{persian.Default()}, NewCounter(7))
	rec, err := asm.Assemble("بلا")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, []string{"ب", "لا"}, rec.Sources)
	assert.Equal(t, []string{"ﺑ", "ﻠﺎ"}, rec.Parts)
	require.Len(t, rec.Boxes, 2, "ligature must yield a single box")
	assert.Equal(t, segment.Box{X0: 24, Y0: 4, X1: 32, Y1: 15}, rec.Boxes[0])
	assert.Equal(t, segment.Box{X0: 3, Y0: 4, X1: 24, Y1: 15}, rec.Boxes[1])
}

func TestFailedSampleKeepsId(t *testing.T) {
	counter := NewCounter(0)
	asm := NewAssembler(blockRasterizer{persian.Default()}, counter)
	_, err := asm.Assemble("بXب")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownCharacter))
	assert.Equal(t, int64(0), counter.Peek())
	rec, err := asm.Assemble("دو")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.ID)
}

func TestLooseAssembly(t *testing.T) {
	asm := NewAssembler(blockRasterizer{persian.Default()}, NewCounter(0))
	asm.Loosening = segment.Loosening{Pixels: 2}
	rec, err := asm.Assemble("بب")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Boxes[0].Y0)
	assert.Equal(t, 17, rec.Boxes[0].Y1)
}

func TestMetaRoundTrip(t *testing.T) {
	asm := NewAssembler(blockRasterizer{persian.Default()}, NewCounter(3))
	rec, err := asm.Assemble("سلام")
	require.NoError(t, err)
	m := rec.Meta(rec.ImageName())
	assert.Equal(t, "image3.png", m.ImageName)
	assert.Equal(t, 3, m.N)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	back, err := ParseMeta(data)
	require.NoError(t, err)
	assert.Equal(t, m, back)
	//
	_, err = ParseMeta([]byte(`{"id":1,"parts":["a"],"boxes":[],"n":0}`))
	assert.Error(t, err)
}

func TestAssembleNormalizesText(t *testing.T) {
	asm := NewAssembler(blockRasterizer{persian.Default()}, NewCounter(0))
	rec, err := asm.Assemble("\u0627\u0653\u0628") // alef, combining madda, beh
	require.NoError(t, err)
	assert.Equal(t, "\u0622\u0628", rec.Text)
	assert.Equal(t, rec.Text, strings.Join(rec.Sources, ""))
	assert.Equal(t, []string{"ﺁ", "ﺏ"}, rec.Parts)
}

func TestMasks(t *testing.T) {
	asm := NewAssembler(blockRasterizer{persian.Default()}, NewCounter(0))
	asm.Masks = true
	rec, err := asm.Assemble("بب")
	require.NoError(t, err)
	require.Len(t, rec.Masks, 2)
	for i, mask := range rec.Masks {
		pixels := mask.Pixels()
		assert.NotEmpty(t, pixels)
		for _, p := range pixels {
			assert.True(t, rec.Boxes[i].Contains(p), "mask pixel %v outside of box %v", p, rec.Boxes[i])
			assert.True(t, rec.Raster.Ink(p.X, p.Y))
		}
	}
	m := rec.Meta(rec.ImageName())
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"masks":[{"size":[20,24],"counts":[`)
	back, err := ParseMeta(data)
	require.NoError(t, err)
	assert.Equal(t, m, back)
	//
	m.Masks = m.Masks[:1]
	assert.Error(t, m.Validate(), "one mask per box required")
	m.Masks = []segment.Mask{{Size: [2]int{20, 24}, Counts: []int{1}}, rec.Masks[1]}
	assert.Error(t, m.Validate(), "mask must cover the image")
}

type collector struct {
	sync.Mutex
	recs []*Record
}

func (c *collector) Put(r *Record) error {
	c.Lock()
	defer c.Unlock()
	c.recs = append(c.recs, r)
	return nil
}

func TestBatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.sample")
	defer teardown()
	//
	counter := NewCounter(0)
	sink := &collector{}
	var skipped []string
	var mu sync.Mutex
	words := []string{"بب", "سلام", "بXب", "دو", "کتاب"}
	stats, err := Batch(context.Background(), words, 3, func() (*Assembler, error) {
		return NewAssembler(blockRasterizer{persian.Default()}, counter), nil
	}, sink, func(w string, err error) {
		mu.Lock()
		skipped = append(skipped, w)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Created)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, []string{"بXب"}, skipped)
	assert.Len(t, sink.recs, 4)
	assert.Equal(t, int64(4), counter.Peek())
}

// brokenRasterizer returns a raster that disagrees with its measurements.
type brokenRasterizer struct{}

func (brokenRasterizer) Measure(text string) (int, error) { return 100, nil }
func (brokenRasterizer) Render(text string) (raster.Rendering, error) {
	r := raster.New(4, 4)
	return raster.Rendering{Image: image.NewGray(r.Bounds()), Raster: r, Advance: 100}, nil
}

func TestBatchSkipsEmptySegments(t *testing.T) {
	stats, err := Batch(context.Background(), []string{"بب"}, 1, func() (*Assembler, error) {
		return NewAssembler(brokenRasterizer{}, NewCounter(0)), nil
	}, &collector{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
}
