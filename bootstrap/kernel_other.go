//go:build !linux && !darwin

package bootstrap

import "runtime"

func kernelRelease() string {
	return runtime.GOOS
}
