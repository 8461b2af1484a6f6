package dataset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/npillmayer/ocrgen/engine/raster"
	"github.com/npillmayer/ocrgen/engine/sample"
	"github.com/npillmayer/ocrgen/engine/segment"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func meta(id int64) sample.Meta {
	return sample.Meta{
		ID: id, Text: "بب", ImageName: "image.png",
		Parts: []string{"ﺑ", "ﺐ"}, Width: 24, Height: 20,
		Boxes: [][4]int{{12, 4, 20, 15}, {3, 4, 12, 15}}, N: 2,
	}
}

func TestWriterEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.dataset")
	defer teardown()
	//
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())
	assert.Equal(t, "[]", buf.String())
	require.NoError(t, w.Close())
	assert.Equal(t, "[]", buf.String(), "second close must not write")
	assert.Error(t, w.Write(meta(0)))
}

func TestWriterSequence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.dataset")
	defer teardown()
	//
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(meta(0)))
	require.NoError(t, w.Write(meta(1)))
	require.NoError(t, w.Close())
	assert.Equal(t, 2, w.Count())
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[{"))
	assert.True(t, strings.HasSuffix(out, "}]"))
	assert.Equal(t, 1, strings.Count(out, ",\n"))
	metas, err := ReadAll(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, int64(1), metas[1].ID)
	assert.Equal(t, meta(0), metas[0])
}

func TestWriterConcurrent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.dataset")
	defer teardown()
	//
	var buf bytes.Buffer
	w := NewWriter(&buf)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, w.Write(meta(id)))
		}(int64(i))
	}
	wg.Wait()
	require.NoError(t, w.Close())
	metas, err := ReadAll(&buf)
	require.NoError(t, err)
	ids := make(map[int64]bool)
	for _, m := range metas {
		ids[m.ID] = true
	}
	assert.Len(t, ids, 20)
}

func TestReadAllRejectsInvalid(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.dataset")
	defer teardown()
	//
	m := meta(0)
	m.N = 3
	data, err := json.Marshal([]sample.Meta{m})
	require.NoError(t, err)
	_, err = ReadAll(bytes.NewReader(data))
	assert.Error(t, err)
	_, err = ReadAll(strings.NewReader("[{"))
	assert.Error(t, err)
}

func record(id int64) *sample.Record {
	r := raster.FromStrings(
		"........",
		".###....",
		".###.##.",
		".......#",
	)
	return &sample.Record{
		ID:      id,
		Text:    "بب",
		Image:   r.Gray(),
		Raster:  r,
		Parts:   []string{"ﺑ", "ﺐ"},
		Sources: []string{"ب", "ب"},
		Boxes:   []segment.Box{{X0: 4, Y0: 2, X1: 7, Y1: 3}, {X0: 1, Y0: 1, X1: 3, Y1: 2}},
	}
}

func TestStore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.dataset")
	defer teardown()
	//
	dir := t.TempDir()
	store, err := Create(dir)
	require.NoError(t, err)
	store.Labeled = true
	require.NoError(t, store.Put(record(0)))
	require.NoError(t, store.Put(record(1)))
	require.NoError(t, store.Close())
	assert.Equal(t, 2, store.Count())
	//
	for _, name := range []string{"image0.png", "image1.png", "image1_labeled.tif"} {
		_, err := os.Stat(filepath.Join(dir, ImageDir, name))
		assert.NoError(t, err, name)
	}
	f, err := os.Open(filepath.Join(dir, ImageDir, "image0_labeled.tif"))
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	//
	data, err := os.ReadFile(filepath.Join(dir, DatasetFile))
	require.NoError(t, err)
	metas, err := ReadAll(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "image1.png", metas[1].ImageName)
	assert.Equal(t, [][4]int{{4, 2, 7, 3}, {1, 1, 3, 2}}, metas[1].Boxes)
	assert.Equal(t, 8, metas[0].Width)
	assert.Equal(t, 4, metas[0].Height)
}

func TestWriteLetters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocrgen.dataset")
	defer teardown()
	//
	dir := t.TempDir()
	letters := []string{"ﺍ", "ﺎ", "لا"}
	path, err := WriteLetters(dir, letters, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "used_letters.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ﺍ\nﺎ\nلا\n", string(data))
	//
	path, err = WriteLetters(dir, letters, true)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var back []string
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, letters, back)
	assert.Contains(t, string(data), "\n    \"")
}
