package dataset

import (
	"bufio"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/ocrgen/backend/gfx"
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/sample"
)

// Names of files and directories within a dataset directory.
const (
	ImageDir    = "train_images"
	DatasetFile = "train_ocr.json"
	LettersFile = "used_letters"
)

// Store writes samples into a dataset directory. It implements sample.Sink
// and is safe for concurrent use.
type Store struct {
	dir      string
	file     *os.File
	buf      *bufio.Writer
	writer   *Writer
	Labeled  bool        // write images with boxes drawn as well
	BoxColor color.Color // color of box outlines
}

var _ sample.Sink = &Store{}

// Create creates (or truncates) a dataset in directory dir.
func Create(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, ImageDir), 0o755); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create dataset directory %s", dir)
	}
	f, err := os.Create(filepath.Join(dir, DatasetFile))
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create dataset file in %s", dir)
	}
	buf := bufio.NewWriter(f)
	tracer().Infof("generating dataset in %s", dir)
	return &Store{
		dir:      dir,
		file:     f,
		buf:      buf,
		writer:   NewWriter(buf),
		BoxColor: gfx.DefaultBoxColor,
	}, nil
}

// Dir returns the dataset directory.
func (s *Store) Dir() string {
	return s.dir
}

// Count returns the number of samples stored.
func (s *Store) Count() int {
	return s.writer.Count()
}

// Put stores the images of a sample and appends its entry to the dataset file.
func (s *Store) Put(rec *sample.Record) error {
	imgdir := filepath.Join(s.dir, ImageDir)
	if err := gfx.SavePNG(filepath.Join(imgdir, rec.ImageName()), rec.Image); err != nil {
		return err
	}
	if s.Labeled {
		labeled := gfx.DrawBoxes(rec.Image, rec.Boxes, s.BoxColor)
		if err := gfx.SaveTIFF(filepath.Join(imgdir, rec.LabeledImageName()), labeled); err != nil {
			return err
		}
	}
	return s.writer.Write(rec.Meta(rec.ImageName()))
}

// Close terminates the dataset file.
func (s *Store) Close() error {
	err := s.writer.Close()
	if ferr := s.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	tracer().Infof("dataset %s closed with %d samples", s.dir, s.writer.Count())
	return err
}

// WriteLetters writes the list of letters used in a dataset, either as a JSON
// array or as text, one letter per line. It returns the path of the file.
func WriteLetters(dir string, letters []string, asJSON bool) (string, error) {
	var data []byte
	path := filepath.Join(dir, LettersFile)
	if asJSON {
		path += ".json"
		var err error
		if data, err = json.MarshalIndent(letters, "", "    "); err != nil {
			return "", err
		}
	} else {
		path += ".txt"
		data = []byte(strings.Join(letters, "\n") + "\n")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", core.WrapError(err, core.EINVALID, "cannot write letters file %s", path)
	}
	return path, nil
}
