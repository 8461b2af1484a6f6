/*
Package parameters holds the parameters of a dataset generation run.

Parameters are read from a schuko configuration, where every value is a
string. Missing keys take their defaults.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parameters

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/script/persian"
	"github.com/npillmayer/ocrgen/engine/segment"
	"github.com/npillmayer/schuko"
)

// Mode selects where the texts of a dataset come from.
type Mode int

const (
	ModeEqual      Mode = iota // random words, all letters with equal weight
	ModeMeaningful             // words from a dictionary
	ModeAllForms               // random strings over all positional forms
)

func (m Mode) String() string {
	switch m {
	case ModeEqual:
		return "equal"
	case ModeMeaningful:
		return "meaningful"
	case ModeAllForms:
		return "allforms"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the name of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "equal":
		return ModeEqual, nil
	case "meaningful", "dictionary":
		return ModeMeaningful, nil
	case "allforms", "ugly":
		return ModeAllForms, nil
	}
	return ModeEqual, core.Error(core.EINVALID, "unknown mode %q", s)
}

// Generation is the parameter set of a dataset generation run.
type Generation struct {
	Batch         int    // number of texts to render
	MinLength     int    // minimum length of random words
	MaxLength     int    // maximum length of random words
	Occurrence    int    // max repetitions of a letter within a random word; 0 is unlimited
	Output        string // dataset directory
	Mode          Mode
	Dictionary    string // word list for ModeMeaningful
	Font          string // font name or path
	FontSize      float64
	RejectUnknown bool
	Ligatures     []string
	Loose         segment.Loosening
	LabeledImages bool
	Masks         bool // store a binary mask per box
	BoxColor      string
	Workers       int
	Seed          int64
	LettersFile   string   // txt, json or none
	Shaper        string   // face or harfbuzz
	Features      []string // OpenType feature switches for harfbuzz, e.g. "-liga"
	Padding       int      // blank pixels around rendered text
	Segmentation  segment.Options
}

// Defaults returns the default parameters.
func Defaults() *Generation {
	return &Generation{
		Batch:         10,
		MinLength:     3,
		MaxLength:     6,
		Output:        "dataset",
		Mode:          ModeEqual,
		Dictionary:    "words.csv",
		FontSize:      64,
		RejectUnknown: true,
		Ligatures:     append([]string{}, persian.DefaultLigatures...),
		BoxColor:      "yellow",
		Workers:       runtime.NumCPU(),
		Seed:          1,
		LettersFile:   "txt",
		Shaper:        "face",
		Padding:       4,
		Segmentation:  segment.DefaultOptions(),
	}
}

// FromConfig reads the parameters from conf. Keys not set in conf keep their
// default values.
func FromConfig(conf schuko.Configuration) (*Generation, error) {
	g := Defaults()
	r := reader{conf: conf}
	r.intValue("batch", &g.Batch)
	r.intValue("length.min", &g.MinLength)
	r.intValue("length.max", &g.MaxLength)
	r.intValue("occurrence", &g.Occurrence)
	r.stringValue("output", &g.Output)
	if s := conf.GetString("mode"); s != "" {
		m, err := ParseMode(s)
		r.check(err)
		g.Mode = m
	}
	r.stringValue("dictionary", &g.Dictionary)
	r.stringValue("font", &g.Font)
	r.floatValue("font.size", &g.FontSize)
	r.boolValue("reject-unknown", &g.RejectUnknown)
	if s, ok := r.lookup("ligatures"); ok {
		g.Ligatures = splitList(s)
	}
	if s, ok := r.lookup("loose"); ok {
		l, err := segment.ParseLoosening(s)
		r.check(err)
		g.Loose = l
	}
	r.boolValue("labeled-images", &g.LabeledImages)
	r.boolValue("masks", &g.Masks)
	r.stringValue("box-color", &g.BoxColor)
	r.intValue("workers", &g.Workers)
	if s, ok := r.lookup("seed"); ok {
		n, err := strconv.ParseInt(s, 10, 64)
		r.wrap(err, "seed")
		g.Seed = n
	}
	r.stringValue("letters-file", &g.LettersFile)
	r.stringValue("shaper", &g.Shaper)
	if s, ok := r.lookup("features"); ok {
		g.Features = splitList(s)
	}
	r.intValue("padding", &g.Padding)
	//
	seg := &g.Segmentation
	if s, ok := r.lookup("segment.connectivity"); ok {
		switch s {
		case "4":
			seg.Connectivity = segment.Conn4
		case "8":
			seg.Connectivity = segment.Conn8
		default:
			r.check(core.Error(core.EINVALID, "connectivity must be 4 or 8, is %q", s))
		}
	}
	r.intValue("segment.foreign-remainder", &seg.Policy.ForeignRemainder)
	r.intValue("segment.min-blob", &seg.Policy.MinBlobPixels)
	r.intValue("segment.min-extent", &seg.Policy.MinExtent)
	r.floatValue("segment.area-ratio", &seg.Policy.AreaRatio)
	r.intValue("segment.min-seg-pixels", &seg.Policy.MinSegPixels)
	r.intValue("segment.min-slice-ink", &seg.Policy.MinSliceInk)
	r.intValue("segment.max-iterations", &seg.MaxIterations)
	if r.err != nil {
		return nil, r.err
	}
	return g, g.Validate()
}

// Validate checks the parameters for consistency.
func (g *Generation) Validate() error {
	switch {
	case g.Batch <= 0:
		return core.Error(core.EINVALID, "batch size must be positive, is %d", g.Batch)
	case g.MinLength <= 0 || g.MaxLength < g.MinLength:
		return core.Error(core.EINVALID, "invalid word length range %d…%d", g.MinLength, g.MaxLength)
	case g.Occurrence < 0:
		return core.Error(core.EINVALID, "letter occurrence must not be negative")
	case g.Output == "":
		return core.Error(core.EINVALID, "no output directory given")
	case g.FontSize < 5 || g.FontSize > 500:
		return core.Error(core.EINVALID, "font size must be 5 ≤ size ≤ 500, is %g", g.FontSize)
	case g.Padding < 0:
		return core.Error(core.EINVALID, "padding must not be negative")
	case g.Workers <= 0:
		return core.Error(core.EINVALID, "number of workers must be positive, is %d", g.Workers)
	case g.Mode == ModeMeaningful && g.Dictionary == "":
		return core.Error(core.EINVALID, "dictionary mode needs a word list")
	case g.Segmentation.Policy.AreaRatio < 0 || g.Segmentation.Policy.AreaRatio > 1:
		return core.Error(core.EINVALID, "area ratio must be in [0,1]")
	}
	switch g.Shaper {
	case "face":
		if len(g.Features) > 0 {
			return core.Error(core.EINVALID, "OpenType features need shaper harfbuzz")
		}
	case "harfbuzz":
	default:
		return core.Error(core.EINVALID, "shaper must be face or harfbuzz, is %q", g.Shaper)
	}
	switch g.LettersFile {
	case "txt", "json", "none":
	default:
		return core.Error(core.EINVALID, "letters file format must be txt, json or none, is %q", g.LettersFile)
	}
	return nil
}

// UnknownCharacters reports how unknown characters are treated. Strings over
// all positional forms are passed through unchanged, as they consist of
// characters which are not letters of the table.
func (g *Generation) UnknownCharacters() (reject bool) {
	if g.Mode == ModeAllForms {
		return false
	}
	return g.RejectUnknown
}

// --- Reading configuration values ------------------------------------------

type reader struct {
	conf schuko.Configuration
	err  error
}

func (r *reader) lookup(key string) (string, bool) {
	s := strings.TrimSpace(r.conf.GetString(key))
	return s, s != ""
}

func (r *reader) check(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *reader) wrap(err error, key string) {
	if err != nil {
		r.check(core.WrapError(err, core.EINVALID, "configuration value %q invalid", key))
	}
}

func (r *reader) stringValue(key string, v *string) {
	if s, ok := r.lookup(key); ok {
		*v = s
	}
}

func (r *reader) intValue(key string, v *int) {
	if s, ok := r.lookup(key); ok {
		n, err := strconv.Atoi(s)
		r.wrap(err, key)
		*v = n
	}
}

func (r *reader) floatValue(key string, v *float64) {
	if s, ok := r.lookup(key); ok {
		f, err := strconv.ParseFloat(s, 64)
		r.wrap(err, key)
		*v = f
	}
}

func (r *reader) boolValue(key string, v *bool) {
	if s, ok := r.lookup(key); ok {
		b, err := strconv.ParseBool(s)
		r.wrap(err, key)
		*v = b
	}
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
