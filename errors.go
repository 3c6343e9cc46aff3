package edfconv

import (
	"fmt"

	"github.com/noriah/edfconv/dsp"
	"github.com/noriah/edfconv/input"
	"github.com/noriah/edfconv/output"
)

// Error kinds, matched with errors.Is.
var (
	ErrInvalidParameter = dsp.ErrInvalidParameter
	ErrSourceRead       = input.ErrSourceRead
	ErrShapeMismatch    = output.ErrShapeMismatch
	ErrIO               = output.ErrIO
)

// ChannelError is a failure while converting one channel of a file. Channel
// is -1 for failures that are not tied to a channel.
type ChannelError struct {
	File    string
	Channel int
	Err     error
}

func (e *ChannelError) Error() string {
	if e.Channel < 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: channel %d: %v", e.File, e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Cause returns the wrapped error, for github.com/pkg/errors.Cause.
func (e *ChannelError) Cause() error {
	return e.Err
}
