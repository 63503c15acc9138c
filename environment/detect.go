package environment

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	cgroupFile = "proc/self/cgroup"
	dockerEnv  = ".dockerenv"
)

// markers in /proc/self/cgroup that imply a container scheduled by an orchestrator
var orchestratorMarkers = []string{"containerd", "kubepods"}

// Context describes where the process is running. It is derived once at startup.
type Context struct {
	Containerized bool
	Orchestrated  bool
}

// Detect probes the filesystem under root (normally "/"). Unreadable probes count as absent.
func Detect(root string) Context {
	if data, err := os.ReadFile(filepath.Join(root, cgroupFile)); err == nil {
		cgroups := string(data)
		for _, marker := range orchestratorMarkers {
			if strings.Contains(cgroups, marker) {
				return Context{Containerized: true, Orchestrated: true}
			}
		}
	}

	if info, err := os.Stat(filepath.Join(root, dockerEnv)); err == nil && !info.IsDir() {
		return Context{Containerized: true}
	}

	return Context{}
}

func (c Context) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("docker", c.Containerized).Bool("eks", c.Orchestrated)
}
