// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/noriah/edfconv/input/edf"
	_ "github.com/noriah/edfconv/input/wav"
)
