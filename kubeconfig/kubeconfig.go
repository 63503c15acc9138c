package kubeconfig

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	dirName  = ".kube"
	fileName = "config"

	dirMode  = 0o700
	fileMode = 0o600
)

var (
	ErrMissing        = errors.New("kubeconfig is empty")
	ErrMalformed      = errors.New("malformed kubeconfig")
	ErrUnknownContext = errors.New("kube context not found in kubeconfig")
)

// Decrypter turns an encrypted document into plain text, passing unencrypted documents through
type Decrypter interface {
	Decrypt(data []byte) ([]byte, error)
}

// Materialized is a kubeconfig that has been validated and written to disk
type Materialized struct {
	Path     string
	Context  string
	Contexts []string
}

// Path is the fixed location of the kubeconfig under home
func Path(home string) string {
	return filepath.Join(home, dirName, fileName)
}

// Decode reads a base64 blob. Whitespace anywhere in the blob is ignored so wrapped output of `base64` is accepted.
func Decode(blob string) ([]byte, error) {
	compact := strings.Join(strings.Fields(blob), "")
	if compact == "" {
		return nil, ErrMissing
	}

	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64: %v", ErrMalformed, err)
	}
	return data, nil
}

// Validate parses data as a kubeconfig and resolves the context to use: the requested one, or the current-context
func Validate(data []byte, requested string) (string, []string, error) {
	cfg, err := clientcmd.Load(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(cfg.Contexts) == 0 {
		return "", nil, fmt.Errorf("%w: no contexts defined", ErrMalformed)
	}

	names := make([]string, 0, len(cfg.Contexts))
	for name := range cfg.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	selected := requested
	if selected == "" {
		selected = cfg.CurrentContext
	}
	if selected == "" {
		return "", names, fmt.Errorf("%w: no current-context and no context requested", ErrMalformed)
	}

	if _, ok := cfg.Contexts[selected]; !ok {
		return "", names, fmt.Errorf("%w: %q (have %s)", ErrUnknownContext, selected, strings.Join(names, ", "))
	}

	return selected, names, nil
}

// Write stores data at path, owner read/write only. An existing file is replaced and its mode tightened.
func Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create kubeconfig directory: %w", err)
	}

	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("write kubeconfig: %w", err)
	}

	if err := os.Chmod(path, fileMode); err != nil {
		return fmt.Errorf("restrict kubeconfig permissions: %w", err)
	}
	return nil
}

// Materialize decodes, decrypts (when decrypter is non-nil), validates and writes the kubeconfig blob to path
func Materialize(blob string, requestedContext string, path string, decrypter Decrypter) (*Materialized, error) {
	data, err := Decode(blob)
	if err != nil {
		return nil, err
	}

	if decrypter != nil {
		if data, err = decrypter.Decrypt(data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	selected, contexts, err := Validate(data, requestedContext)
	if err != nil {
		return nil, err
	}

	if err = Write(path, data); err != nil {
		return nil, err
	}

	log.Debug().Str("path", path).Str("context", selected).Strs("contexts", contexts).Msg("Kubeconfig written")

	return &Materialized{Path: path, Context: selected, Contexts: contexts}, nil
}
