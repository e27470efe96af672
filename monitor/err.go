package monitor

import (
	"errors"

	"github.com/ezrec/cpuemu/translate"
)

var f = translate.From

var (
	ErrArgumentMissing = errors.New(f("argument missing"))
	ErrArgumentExtra   = errors.New(f("extra arguments"))
)

// ErrCommand is an unknown monitor command.
type ErrCommand string

func (err ErrCommand) Error() string {
	return f("unknown command '%v', try 'help'", string(err))
}

// ErrArgument is an argument that could not be parsed, or is out of range.
type ErrArgument string

func (err ErrArgument) Error() string {
	return f("invalid argument '%v'", string(err))
}
