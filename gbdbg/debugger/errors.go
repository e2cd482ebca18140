package debugger

import "fmt"

// ResolutionError reports an operation on a breakpoint id that does not
// exist (never created, or already deleted).
type ResolutionError struct {
	ID int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no breakpoint with id %d", e.ID)
}

// OperandRangeError reports a value that does not fit its target's bit
// width, or range bounds that conflict after normalization.
type OperandRangeError struct {
	Msg string
}

func (e *OperandRangeError) Error() string {
	return e.Msg
}

func errWidth(value uint64, target string, width int) *OperandRangeError {
	return &OperandRangeError{
		Msg: fmt.Sprintf("value $%X does not fit %s (%d bits)", value, target, width),
	}
}

// IOError reports a failed serial buffer operation.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
