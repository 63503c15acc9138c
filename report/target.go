package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/GlintPay/helmfile-reporter/config"
	"github.com/Masterminds/sprig"
)

const (
	DefaultDirName  = "helmfile-report"
	DefaultFilename = "report.txt"

	dirMode  = 0o755
	fileMode = 0o644
)

var ErrInvalidFilename = errors.New("invalid report filename")

// Target is where the report is written
type Target struct {
	Dir      string
	Filename string
}

func (t Target) Path() string {
	return filepath.Join(t.Dir, t.Filename)
}

// Resolve applies the defaults: `<workspace>/helmfile-report` and `report.txt`.
// The filename may be a template using the Sprig functions, e.g. `report-{{ now | date "20060102" }}.txt`.
func Resolve(cfg config.ReportConfig, workspace string) (Target, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(workspace, DefaultDirName)
	}

	name := cfg.Filename
	if name == "" {
		name = DefaultFilename
	}

	rendered, err := renderFilename(name)
	if err != nil {
		return Target{}, err
	}

	return Target{Dir: dir, Filename: rendered}, nil
}

func renderFilename(name string) (string, error) {
	rendered := name

	if strings.Contains(name, "{{") {
		tmpl, err := template.New("filename").Funcs(sprig.TxtFuncMap()).Parse(name)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidFilename, err)
		}

		var buf bytes.Buffer
		if err = tmpl.Execute(&buf, nil); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidFilename, err)
		}
		rendered = strings.TrimSpace(buf.String())
	}

	if rendered == "" || rendered == "." || rendered == ".." || strings.ContainsAny(rendered, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, rendered)
	}
	return rendered, nil
}

// Ensure creates the report directory. It is a no-op when the directory exists.
func (t Target) Ensure() error {
	if err := os.MkdirAll(t.Dir, dirMode); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	return nil
}

// Create truncates or creates the report file
func (t Target) Create() (*os.File, error) {
	f, err := os.OpenFile(t.Path(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	return f, nil
}
