package sample

import (
	"encoding/json"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/raster"
	"github.com/npillmayer/ocrgen/engine/segment"
)

// Counter hands out sample identifiers. Identifiers are never reused.
// A Counter is safe for concurrent use.
type Counter struct {
	next atomic.Int64
}

// NewCounter creates a counter whose first identifier is start.
func NewCounter(start int64) *Counter {
	c := &Counter{}
	c.next.Store(start)
	return c
}

// Next returns a fresh identifier.
func (c *Counter) Next() int64 {
	return c.next.Add(1) - 1
}

// Peek returns the identifier the next call to Next will return.
func (c *Counter) Peek() int64 {
	return c.next.Load()
}

// Record is an assembled sample. Parts, Sources and Boxes are aligned and in
// logical order of the text.
type Record struct {
	ID      int64
	Text    string
	Image   *image.Gray    // rendering, ink bright on black
	Raster  *raster.Raster // binarized rendering the boxes were found in
	Parts   []string       // labels, as presentation forms
	Sources []string       // logical characters of every label
	Boxes   []segment.Box
	Masks   []segment.Mask // per box, if requested
}

// Width of the sample image.
func (r *Record) Width() int {
	return r.Raster.W
}

// Height of the sample image.
func (r *Record) Height() int {
	return r.Raster.H
}

// ImageName is the file name of the sample image.
func (r *Record) ImageName() string {
	return fmt.Sprintf("image%d.png", r.ID)
}

// LabeledImageName is the file name of the sample image with boxes drawn.
func (r *Record) LabeledImageName() string {
	return fmt.Sprintf("image%d_labeled.tif", r.ID)
}

// Meta is the dataset entry of a sample, as stored in the dataset JSON file.
type Meta struct {
	ID        int64          `json:"id"`
	Text      string         `json:"text"`
	ImageName string         `json:"image_name"`
	Parts     []string       `json:"parts"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Boxes     [][4]int       `json:"boxes"`
	Masks     []segment.Mask `json:"masks,omitempty"`
	N         int            `json:"n"`
}

// Meta creates the dataset entry for r. imageName is the image path relative
// to the dataset file.
func (r *Record) Meta(imageName string) Meta {
	m := Meta{
		ID:        r.ID,
		Text:      r.Text,
		ImageName: imageName,
		Parts:     append([]string{}, r.Parts...),
		Width:     r.Width(),
		Height:    r.Height(),
		Boxes:     make([][4]int, len(r.Boxes)),
		N:         len(r.Boxes),
	}
	for i, b := range r.Boxes {
		m.Boxes[i] = b.Array()
	}
	if r.Masks != nil {
		m.Masks = append([]segment.Mask{}, r.Masks...)
	}
	return m
}

// Validate checks that parts and boxes of a dataset entry line up.
func (m Meta) Validate() error {
	if len(m.Parts) != len(m.Boxes) || m.N != len(m.Boxes) {
		return core.Error(core.EINVALID, "sample %d has %d parts, %d boxes, n=%d",
			m.ID, len(m.Parts), len(m.Boxes), m.N)
	}
	for _, b := range m.Boxes {
		box := segment.Box{X0: b[0], Y0: b[1], X1: b[2], Y1: b[3]}
		if !box.Valid() || b[0] < 0 || b[1] < 0 || b[2] >= m.Width || b[3] >= m.Height {
			return core.Error(core.EINVALID, "sample %d has invalid box %v", m.ID, box)
		}
	}
	if m.Masks == nil {
		return nil
	}
	if len(m.Masks) != len(m.Boxes) {
		return core.Error(core.EINVALID, "sample %d has %d masks for %d boxes",
			m.ID, len(m.Masks), len(m.Boxes))
	}
	for _, mask := range m.Masks {
		if err := mask.Check(m.Width, m.Height); err != nil {
			return core.WrapError(err, core.EINVALID, "sample %d: %s", m.ID, core.UserMessage(err))
		}
	}
	return nil
}

// ParseMeta reads a single dataset entry.
func ParseMeta(data []byte) (Meta, error) {
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return m, core.WrapError(err, core.EINVALID, "cannot parse dataset entry")
	}
	return m, m.Validate()
}

// Sink receives assembled samples, e.g. to persist them.
type Sink interface {
	Put(*Record) error
}
