package test

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Kubeconfig renders a minimal kubeconfig with one cluster, user and context per name.
// The first name becomes the current-context.
func Kubeconfig(contexts ...string) string {
	var clusters, users, ctxs strings.Builder
	for _, name := range contexts {
		fmt.Fprintf(&clusters, "- name: %s\n  cluster:\n    server: https://%s.example.com\n", name, name)
		fmt.Fprintf(&users, "- name: %s\n  user:\n    token: token-%s\n", name, name)
		fmt.Fprintf(&ctxs, "- name: %s\n  context:\n    cluster: %s\n    user: %s\n", name, name, name)
	}

	current := ""
	if len(contexts) > 0 {
		current = contexts[0]
	}

	return "apiVersion: v1\nkind: Config\n" +
		"clusters:\n" + clusters.String() +
		"users:\n" + users.String() +
		"contexts:\n" + ctxs.String() +
		"current-context: " + current + "\n"
}

func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// FakeHelmfile writes an executable shell script standing in for helmfile and returns its path.
// The script echoes its arguments, KUBECONFIG and working directory, writes one line to stderr,
// and exits with $FAKE_HELMFILE_EXIT (default 0). When $FAKE_HELMFILE_MARKER is set it touches that file.
func FakeHelmfile(t *testing.T, dir string) string {
	t.Helper()

	script := `#!/bin/sh
if [ -n "$FAKE_HELMFILE_MARKER" ]; then
  touch "$FAKE_HELMFILE_MARKER"
fi
if [ "$1" = "--version" ]; then
  echo "helmfile version v1.1.0"
  exit 0
fi
echo "args: $*"
echo "kubeconfig: $KUBECONFIG"
echo "aws-region: $AWS_REGION"
echo "pwd: $(pwd)"
echo "comparing release=nginx" >&2
exit ${FAKE_HELMFILE_EXIT:-0}
`
	path := filepath.Join(dir, "helmfile")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
