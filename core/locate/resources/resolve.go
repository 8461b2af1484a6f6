package resources

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/core/font"
	"github.com/npillmayer/ocrgen/core/font/fontregistry"
)

type resourceType int

// resource types
const (
	unknownResourceType resourceType = iota
	fontResourceType
	wordListResourceType
)

// NotFound returns an application error for a missing resource.
func NotFound(res string, rtype resourceType) error {
	e := fmt.Errorf("resource missing: %v", res)
	var s string
	switch rtype {
	case fontResourceType:
		s = fmt.Sprintf("font not found: %s", res)
	case wordListResourceType:
		s = fmt.Sprintf("word list not found: %s", res)
	default:
		s = fmt.Sprintf("resource not found: %s", res)
	}
	err := core.WrapError(e, core.EMISSING, s)
	return err
}

// --- Word lists ------------------------------------------------------------

// ResolveWordList locates a word list. name is either a path or a file name,
// which is searched for in the current directory and in $OCRGEN_DATA.
func ResolveWordList(name string) (string, error) {
	candidates := []string{name}
	if dir := os.Getenv("OCRGEN_DATA"); dir != "" && !strings.ContainsAny(name, "/\\") {
		candidates = append(candidates, dir+string(os.PathSeparator)+name)
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			tracer().Debugf("word list %s found at %s", name, c)
			return c, nil
		}
	}
	return "", NotFound(name, wordListResourceType)
}

// --- Fonts -----------------------------------------------------------------

type fontPlusErr struct {
	font *font.TypeCase
	err  error
}

// TypeCasePromise delivers a typecase which is loaded in the background.
type TypeCasePromise interface {
	TypeCase() (*font.TypeCase, error)
	TypeCaseContext(ctx context.Context) (*font.TypeCase, error)
}

type fontLoader struct {
	await func(ctx context.Context) (*font.TypeCase, error)
}

func (loader fontLoader) TypeCase() (*font.TypeCase, error) {
	return loader.await(context.Background())
}

func (loader fontLoader) TypeCaseContext(ctx context.Context) (*font.TypeCase, error) {
	return loader.await(ctx)
}

// ResolveTypeCase resolves a font type case with a given pixel size.
//
// name may be the name of a font already in the global font registry, the
// path of a font file, or the name of a font installed on the system.
// The name "fallback" denotes the built-in fallback font.
// If the font cannot be found, the promise delivers an error of code EMISSING.
func ResolveTypeCase(name string, size float64) TypeCasePromise {
	ch := make(chan fontPlusErr, 1)
	go func(ch chan<- fontPlusErr) {
		defer close(ch)
		ch <- resolveTypeCase(name, size)
	}(ch)
	return fontLoader{
		await: func(ctx context.Context) (*font.TypeCase, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.font, r.err
			}
		},
	}
}

func resolveTypeCase(name string, size float64) (result fontPlusErr) {
	registry := fontregistry.GlobalRegistry()
	key := fontregistry.NormalizeFontname(name)
	if name == "" || key == "fallback" {
		registry.StoreFont("fallback", font.FallbackFont())
		result.font, result.err = registry.TypeCase("fallback", size)
		return
	}
	if _, ok := registry.Font(key); ok {
		result.font, result.err = registry.TypeCase(key, size)
		return
	}
	var f *font.ScalableFont
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		tracer().Debugf("%s is a font file", name)
		if f, result.err = font.LoadOpenTypeFont(name); result.err != nil {
			return
		}
	}
	if f == nil {
		fpath, err := findfont.Find(name) // try to find as system font
		if err != nil || fpath == "" {
			result.err = NotFound(name, fontResourceType)
			return
		}
		tracer().Debugf("%s is a system font at %s", name, fpath)
		if f, result.err = font.LoadOpenTypeFont(fpath); result.err != nil {
			return
		}
	}
	registry.StoreFont(key, f)
	result.font, result.err = registry.TypeCase(key, size)
	return
}
