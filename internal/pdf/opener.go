// Package pdf reads generated reports back and opens them in a viewer.
package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
)

// Readers lists the accepted pdf_reader values.
var Readers = []string{"system", "preview", "skim", "zathura", "evince", "okular"}

// Opener launches the configured PDF viewer.
type Opener struct {
	reader string
	goos   string
}

// NewOpener creates an opener for the given pdf_reader setting.
func NewOpener(reader string) *Opener {
	if reader == "" {
		reader = "system"
	}
	return &Opener{reader: reader, goos: runtime.GOOS}
}

// Open starts the viewer on path without waiting for it.
func (o *Opener) Open(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command returns the viewer command for path.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("PDF file does not exist: %s", path)
		}
		return nil, fmt.Errorf("checking PDF file: %w", err)
	}
	if !slices.Contains(Readers, o.reader) {
		return nil, fmt.Errorf("unknown pdf_reader %q", o.reader)
	}

	switch o.goos {
	case "darwin":
		switch o.reader {
		case "skim":
			return exec.Command("open", "-a", "Skim", path), nil
		case "preview":
			return exec.Command("open", "-a", "Preview", path), nil
		default:
			return exec.Command("open", path), nil
		}
	case "linux":
		switch o.reader {
		case "zathura", "evince", "okular":
			return exec.Command(o.reader, path), nil
		default:
			return exec.Command("xdg-open", path), nil
		}
	default:
		return nil, fmt.Errorf("unsupported platform: %s", o.goos)
	}
}
