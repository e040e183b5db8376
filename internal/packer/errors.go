package packer

import "fmt"

// FileError reports a failure while processing an input file. It wraps the
// I/O or validation error that aborted the run.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("process file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
