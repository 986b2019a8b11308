package retry

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// Classifier determines whether an error is transient (retryable) or fatal.
type Classifier interface {
	IsTransient(err error) bool
}

// transientErrnos are the errno values a later attempt can get past.
var transientErrnos = []syscall.Errno{
	syscall.EAGAIN,
	syscall.EBUSY,
	syscall.EINTR,
	syscall.ETXTBSY,
}

// FileSystemClassifier recognizes transient file-system errors.
type FileSystemClassifier struct{}

// NewFileSystemClassifier creates a classifier for file-system mutations.
func NewFileSystemClassifier() *FileSystemClassifier {
	return &FileSystemClassifier{}
}

// IsTransient reports whether err is worth another attempt. Missing files,
// permission problems and full disks are fatal.
func (c *FileSystemClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.ENOSPC) {
		return false
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	// network file systems report their own timeouts
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

var _ Classifier = (*FileSystemClassifier)(nil)
