/*
Command ocrgen generates datasets for training OCR models on Persian text.

Every sample is a rendered word together with the bounding boxes of its
characters, in logical order. Samples are written to a dataset directory:

   <output>/train_images/image<id>.png
   <output>/train_ocr.json
   <output>/used_letters.txt

Usage:

   ocrgen [flags]

With flag -i, ocrgen starts an interactive session instead, where words
typed in are rendered and segmented immediately.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/npillmayer/ocrgen/backend/dataset"
	"github.com/npillmayer/ocrgen/backend/gfx"
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/core/font"
	"github.com/npillmayer/ocrgen/core/locate/resources"
	"github.com/npillmayer/ocrgen/core/parameters"
	"github.com/npillmayer/ocrgen/engine/glyphing/harfbuzz"
	"github.com/npillmayer/ocrgen/engine/raster"
	"github.com/npillmayer/ocrgen/engine/sample"
	"github.com/npillmayer/ocrgen/engine/script/persian"
	"github.com/npillmayer/ocrgen/input/words"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'ocrgen.cli'
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.cli")
}

// traceKeys are all the tracing keys of ocrgen's packages.
var traceKeys = []string{
	"ocrgen.cli", "ocrgen.script", "ocrgen.segment", "ocrgen.raster",
	"ocrgen.glyphs", "ocrgen.sample", "ocrgen.dataset", "ocrgen.fonts",
	"ocrgen.resources", "ocrgen.input",
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"batch":      "batch",
	"min":        "length.min",
	"max":        "length.max",
	"occurrence": "occurrence",
	"o":          "output",
	"mode":       "mode",
	"dict":       "dictionary",
	"font":       "font",
	"size":       "font.size",
	"strict":     "reject-unknown",
	"ligatures":  "ligatures",
	"loose":      "loose",
	"labeled":    "labeled-images",
	"masks":      "masks",
	"color":      "box-color",
	"workers":    "workers",
	"seed":       "seed",
	"letters":    "letters-file",
	"shaper":     "shaper",
	"features":   "features",
	"padding":    "padding",
	"conn":       "segment.connectivity",
	"maxiter":    "segment.max-iterations",
}

func main() {
	initDisplay()

	// command line flags
	def := parameters.Defaults()
	flag.Int("batch", def.Batch, "Number of words to render")
	flag.Int("min", def.MinLength, "Minimum length of random words")
	flag.Int("max", def.MaxLength, "Maximum length of random words")
	flag.Int("occurrence", def.Occurrence, "Max occurrences of a letter in a random word (0 = unlimited)")
	flag.String("o", def.Output, "Output directory of the dataset")
	flag.String("mode", def.Mode.String(), "Source of words [equal|meaningful|allforms]")
	flag.String("dict", def.Dictionary, "Word list for mode 'meaningful'")
	flag.String("font", "", "Font name or font file")
	flag.Float64("size", def.FontSize, "Font size in pixels")
	flag.Bool("strict", def.RejectUnknown, "Reject words with characters not in the letter table")
	flag.String("ligatures", strings.Join(def.Ligatures, ","), "Comma separated list of ligatures")
	flag.String("loose", "", "Loosen boxes vertically: pixels (int) or factor (float)")
	flag.Bool("labeled", def.LabeledImages, "Write images with boxes drawn, too")
	flag.Bool("masks", def.Masks, "Store a binary mask per box in the dataset")
	flag.String("color", def.BoxColor, "Color of box outlines in labeled images")
	flag.Int("workers", def.Workers, "Number of concurrent workers")
	flag.Int64("seed", def.Seed, "Seed for random words")
	flag.String("letters", def.LettersFile, "Format of used-letters file [txt|json|none]")
	flag.String("shaper", def.Shaper, "Rasterizer [face|harfbuzz]")
	flag.String("features", "", "Comma separated OpenType feature switches for harfbuzz, e.g. -liga")
	flag.Int("padding", def.Padding, "Blank pixels around rendered words")
	flag.Int("conn", 4, "Pixel connectivity for segmentation [4|8]")
	flag.Int("maxiter", 0, "Max edge moves per character (0 = width+height)")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	interactive := flag.Bool("i", false, "Interactive mode")
	flag.Parse()

	// set up logging
	if err := setupTracing(*tlevel); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	// set up parameters from explicitly given flags
	conf := testconfig.Conf{}
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			conf[key] = f.Value.String()
		}
	})
	params, err := parameters.FromConfig(conf)
	if err != nil {
		pterm.Error.Println(core.UserError(err))
		os.Exit(2)
	}
	pterm.Info.Println("Welcome to ocrgen")
	typecase, err := loadFont(params)
	if err != nil {
		pterm.Error.Println(core.UserError(err))
		os.Exit(3)
	}
	counter := sample.NewCounter(0)
	newAssembler := assemblerFactory(params, typecase, counter)

	if *interactive {
		repl, err := readline.New("ocrgen > ")
		if err != nil {
			tracer().Errorf(err.Error())
			os.Exit(4)
		}
		defer repl.Close()
		intp, err := NewIntp(repl, params, newAssembler)
		if err != nil {
			pterm.Error.Println(core.UserError(err))
			os.Exit(4)
		}
		pterm.Info.Println("Quit with <ctrl>D or :quit") // inform user how to stop the CLI
		intp.REPL()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := generate(ctx, params, newAssembler); err != nil {
		pterm.Error.Println(core.UserError(err))
		os.Exit(5)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setupTracing(tlevel string) error {
	switch tlevel {
	case "Debug", "Info", "Error":
	default:
		return fmt.Errorf("invalid trace level: %s", tlevel)
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = tlevel
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("error configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	for _, key := range traceKeys {
		switch tlevel {
		case "Debug":
			tracing.Select(key).SetTraceLevel(tracing.LevelDebug)
		case "Info":
			tracing.Select(key).SetTraceLevel(tracing.LevelInfo)
		case "Error":
			tracing.Select(key).SetTraceLevel(tracing.LevelError)
		}
	}
	return nil
}

// loadFont resolves the font to render samples with and checks that it is
// able to display Persian text.
func loadFont(params *parameters.Generation) (*font.TypeCase, error) {
	if params.Font == "" {
		return nil, core.Error(core.EMISSING, "no font given; please provide a font with flag -font")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	typecase, err := resources.ResolveTypeCase(params.Font, params.FontSize).TypeCaseContext(ctx)
	if err != nil {
		return nil, err
	}
	sf := typecase.ScalableFontParent()
	for _, r := range persian.Default().Forms() {
		if !sf.HasGlyph(r) {
			pterm.Warning.Printf("font %s has no glyph for %q (%U)\n", sf.Fontname, r, r)
		}
	}
	tracer().Infof("using font %s at %.1fpx", sf.Fontname, typecase.PixelSize())
	return typecase, nil
}

// assemblerFactory returns a function creating an assembler for every worker.
// Workers must not share font faces, so every assembler gets its own typecase.
func assemblerFactory(params *parameters.Generation, typecase *font.TypeCase,
	counter *sample.Counter) func() (*sample.Assembler, error) {
	//
	table := persian.Default()
	return func() (*sample.Assembler, error) {
		tc, err := typecase.Clone()
		if err != nil {
			return nil, err
		}
		var r raster.Rasterizer
		switch params.Shaper {
		case "harfbuzz":
			features, err := harfbuzz.ParseFeatures(params.Features)
			if err != nil {
				return nil, err
			}
			hbr, err := harfbuzz.NewRasterizer(tc, params.Padding)
			if err != nil {
				return nil, err
			}
			hbr.SetFeatures(features)
			r = hbr
		default:
			r = raster.NewFaceRasterizer(tc.Face(), params.Padding)
		}
		a := sample.NewAssembler(r, counter)
		a.Table = table
		a.Ligatures = persian.NewLigatures(params.Ligatures...)
		a.RejectUnknown = params.UnknownCharacters()
		a.Segmentation = params.Segmentation
		a.Loosening = params.Loose
		a.Masks = params.Masks
		return a, nil
	}
}

// texts returns the words to render.
func texts(params *parameters.Generation) ([]string, error) {
	table := persian.Default()
	rng := rand.New(rand.NewSource(params.Seed))
	var gen words.Generator
	switch params.Mode {
	case parameters.ModeMeaningful:
		path, err := resources.ResolveWordList(params.Dictionary)
		if err != nil {
			return nil, err
		}
		if gen, err = words.LoadDictionaryFile(path, table, rng); err != nil {
			return nil, err
		}
	default:
		g := words.NewRandom(table, params.MinLength, params.MaxLength, rng)
		g.Occurrence = params.Occurrence
		g.AllForms = params.Mode == parameters.ModeAllForms
		gen = g
	}
	return gen.Words(params.Batch), nil
}

// generate creates a dataset.
func generate(ctx context.Context, params *parameters.Generation,
	newAssembler func() (*sample.Assembler, error)) error {
	//
	wordlist, err := texts(params)
	if err != nil {
		return err
	}
	store, err := dataset.Create(params.Output)
	if err != nil {
		return err
	}
	store.Labeled = params.LabeledImages
	if store.BoxColor, err = gfx.ParseColor(params.BoxColor); err != nil {
		store.Close()
		return err
	}
	tally := newSkipTally()
	pterm.Info.Printf("rendering %d words with %d workers\n", len(wordlist), params.Workers)
	start := time.Now()
	stats, err := sample.Batch(ctx, wordlist, params.Workers, newAssembler, store, tally.skip)
	if cerr := store.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	lettersFile := "-"
	if params.LettersFile != "none" {
		letters := words.Alphabet(persian.Default(), true)
		if lettersFile, err = dataset.WriteLetters(params.Output, letters, params.LettersFile == "json"); err != nil {
			return err
		}
	}
	pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Dataset", "Samples", "Skipped", "Letters", "Time"},
		{params.Output, strconv.Itoa(stats.Created), strconv.Itoa(stats.Skipped), lettersFile,
			time.Since(start).Round(time.Millisecond).String()},
	}).Render()
	tally.report()
	return nil
}

// skipTally counts skipped words per error code, keeping the first message
// for every code.
type skipTally struct {
	mu    sync.Mutex
	count map[int]int
	first map[int]string
}

func newSkipTally() *skipTally {
	return &skipTally{count: make(map[int]int), first: make(map[int]string)}
}

func (st *skipTally) skip(word string, err error) {
	code := core.Code(err)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.count[code] == 0 {
		st.first[code] = fmt.Sprintf("%s: %s", word, core.UserError(err))
	}
	st.count[code]++
}

func (st *skipTally) codes() []int {
	codes := make([]int, 0, len(st.count))
	for code := range st.count {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

func (st *skipTally) report() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, code := range st.codes() {
		pterm.Warning.Printf("%d words skipped with error %d, first was %s\n",
			st.count[code], code, st.first[code])
	}
}
