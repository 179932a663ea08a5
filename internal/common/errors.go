package common

import (
	"errors"
	"fmt"
)

var (
	ErrRuleNotFound   = errors.New("rule not found")
	ErrLoaderNotFound = errors.New("loader not found")
	ErrCompile        = errors.New("compilation failed")
	ErrNoManifest     = errors.New("manifest entry not found")
)

type ErrorKind string

const (
	KindConfigShape ErrorKind = "config_shape"
	KindCompile     ErrorKind = "compile"
	KindPublish     ErrorKind = "publish"
	KindConfig      ErrorKind = "config"
)

// OpError wraps an underlying error with the operation it came from and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // optional
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}
