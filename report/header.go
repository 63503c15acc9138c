package report

import (
	"fmt"
	"io"
	"time"
)

type Header struct {
	Generated   time.Time
	KubeContext string
	Environment string
	Selector    string
	Revision    string
}

// WriteHeader writes a commented preamble; empty fields are left out
func WriteHeader(w io.Writer, h Header) error {
	lines := []struct{ key, value string }{
		{"generated", h.Generated.UTC().Format(time.RFC3339)},
		{"kube-context", h.KubeContext},
		{"environment", h.Environment},
		{"selector", h.Selector},
		{"revision", h.Revision},
	}

	if _, err := fmt.Fprintln(w, "# helmfile diff report"); err != nil {
		return err
	}
	for _, each := range lines {
		if each.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "# %s: %s\n", each.key, each.value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "#")
	return err
}
