package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/ocrgen/backend/gfx"
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/core/parameters"
	"github.com/npillmayer/ocrgen/engine/raster"
	"github.com/npillmayer/ocrgen/engine/sample"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object. It renders and segments words typed in by
// the user.
type Intp struct {
	repl     *readline.Instance
	asm      *sample.Assembler
	boxColor color.Color
	last     *sample.Record
}

// NewIntp creates an interpreter reading from repl.
func NewIntp(repl *readline.Instance, params *parameters.Generation,
	newAssembler func() (*sample.Assembler, error)) (*Intp, error) {
	//
	asm, err := newAssembler()
	if err != nil {
		return nil, err
	}
	c, err := gfx.ParseColor(params.BoxColor)
	if err != nil {
		return nil, err
	}
	return &Intp{repl: repl, asm: asm, boxColor: c}, nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.execute(line)
		if err != nil {
			pterm.Error.Println(core.UserError(err))
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// execute runs a command (starting with a colon) or assembles a sample for
// the text in line.
func (intp *Intp) execute(line string) (quit bool, err error) {
	if !strings.HasPrefix(line, ":") {
		rec, err := intp.asm.Assemble(line)
		if err != nil {
			return false, err
		}
		intp.last = rec
		printRecord(rec)
		return false, nil
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case ":quit", ":q":
		return true, nil
	case ":help", ":h":
		printHelp()
	case ":save", ":paper":
		if intp.last == nil {
			return false, core.Error(core.EINVALID, "no sample yet")
		}
		if len(args) != 1 {
			return false, core.Error(core.EINVALID, "usage: %s <file>", cmd)
		}
		if err = intp.save(args[0], cmd == ":paper"); err == nil {
			pterm.Info.Printf("sample %d written to %s\n", intp.last.ID, args[0])
		}
	default:
		err = core.Error(core.EINVALID, "unknown command %s, try :help", cmd)
	}
	return false, err
}

// save writes the last sample with its boxes drawn. If paper is set, it is
// drawn dark on white, as on paper. The image format depends on the file
// extension, which may be .png or .tif.
func (intp *Intp) save(path string, paper bool) error {
	img := intp.last.Image
	if paper {
		img = raster.Paper(img)
	}
	labeled := gfx.DrawBoxes(img, intp.last.Boxes, intp.boxColor)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return gfx.SavePNG(path, labeled)
	case ".tif", ".tiff":
		return gfx.SaveTIFF(path, labeled)
	}
	return core.Error(core.EINVALID, "cannot save as %s, use .png or .tif", filepath.Ext(path))
}

func printRecord(rec *sample.Record) {
	pterm.Printf("sample %d: %q, %d×%d pixels\n", rec.ID, rec.Text, rec.Width(), rec.Height())
	data := pterm.TableData{{"#", "Source", "Form", "Box"}}
	for i, box := range rec.Boxes {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			rec.Sources[i],
			rec.Parts[i],
			box.String(),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printHelp() {
	pterm.Println("Type a Persian word to render and segment it.")
	pterm.Println("  :save <file>    write the last sample with boxes (.png or .tif)")
	pterm.Println("  :paper <file>   same, dark text on white")
	pterm.Println("  :help           show this help")
	pterm.Println("  :quit           leave")
}
