package fontregistry

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/core/font"
	"github.com/npillmayer/schuko/tracing"
)

// Registry is a type for holding information about loaded fonts.
type Registry struct {
	sync.Mutex
	fonts     map[string]*font.ScalableFont
	typecases map[string]*font.TypeCase
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold information about
// loaded fonts and typecases.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	fr := &Registry{
		fonts:     make(map[string]*font.ScalableFont),
		typecases: make(map[string]*font.TypeCase),
	}
	return fr
}

// StoreFont pushes a font into the registry if it isn't contained yet.
//
// The font will be stored using the normalized font name as a key. If this
// key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(normalizedName string, f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[normalizedName]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, normalizedName)
		fr.fonts[normalizedName] = f
	}
}

// Font returns the font stored under a normalized name.
func (fr *Registry) Font(normalizedName string) (*font.ScalableFont, bool) {
	fr.Lock()
	defer fr.Unlock()
	f, ok := fr.fonts[normalizedName]
	return f, ok
}

// TypeCase returns a typecase for a font at a given pixel size. If a suitable
// typecase has already been cached, TypeCase will return the cached typecase.
// If a font has previously been stored under key `normalizedName`, a typecase
// will be derived from this font.
//
// If no typecase can be produced, TypeCase will derive one from the fallback
// font and return it, together with an error of code EMISSING.
//
// Typecases are shared. Clients rendering concurrently should clone them.
func (fr *Registry) TypeCase(normalizedName string, size float64) (*font.TypeCase, error) {
	tracer().Debugf("registry searches for font %s at %.2f", normalizedName, size)
	tname := appendSize(normalizedName, size)
	fr.Lock()
	defer fr.Unlock()
	if t, ok := fr.typecases[tname]; ok {
		tracer().Debugf("registry found font %s", tname)
		return t, nil
	}
	if f, ok := fr.fonts[normalizedName]; ok {
		t, err := f.PrepareCase(size)
		if err != nil {
			return nil, err
		}
		tracer().Infof("font registry has font %s, caches at %.2f", normalizedName, size)
		fr.typecases[tname] = t
		return t, nil
	}
	tracer().Infof("registry does not contain font %s", normalizedName)
	err := core.Error(core.EMISSING, "font %s not found in registry", normalizedName)
	//
	// store typecase from fallback font, if not present yet, and return it
	fname := "fallback"
	tname = appendSize(fname, size)
	if t, ok := fr.typecases[tname]; ok {
		return t, err
	}
	f := font.FallbackFont()
	t, ferr := f.PrepareCase(size)
	if ferr != nil {
		return nil, ferr
	}
	tracer().Infof("font registry caches fallback font %s at %.2f", fname, size)
	fr.fonts[fname] = f
	fr.typecases[tname] = t
	return t, err
}

// LogFontList is a helper function to dump the list of known fonts and typecases
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	fr.Lock()
	defer fr.Unlock()
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for k, v := range fr.fonts {
		tracer().Infof("font [%s] = %v", k, v.Fontname)
	}
	for k, v := range fr.typecases {
		tracer().Infof("typecase [%s] = %v", k, v.ScalableFontParent().Fontname)
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}

// NormalizeFontname creates a registry key from a font name or a font file
// path: directories and extension are stripped, spaces become underscores,
// and everything is lower case.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	if strings.ContainsAny(fname, "/\\") {
		fname = path.Base(strings.ReplaceAll(fname, "\\", "/"))
	}
	if ext := path.Ext(fname); ext != "" && len(ext) <= 5 {
		fname = fname[:len(fname)-len(ext)]
	}
	fname = strings.ReplaceAll(fname, " ", "_")
	return strings.ToLower(fname)
}

func appendSize(fname string, size float64) string {
	fname = fmt.Sprintf("%s-%.2f", fname, size)
	return fname
}
