package logging

import (
	"errors"
	"io"
	"os"
	"syscall"
)

func stderr() io.Writer {
	return os.Stderr
}

func isErrno(err error, target syscall.Errno) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == target
	}
	return false
}
