package credentials

import "errors"

var ErrKubeconfigMissing = errors.New("kubernetes configuration missing")
