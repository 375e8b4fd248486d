package service

import "errors"

var (
	ErrMalformedLabelLine = errors.New("malformed label line")
	ErrLabelCountMismatch = errors.New("label count mismatch")
	ErrEmptyImage         = errors.New("empty image")
	ErrModelLoad          = errors.New("model load failed")
	ErrInference          = errors.New("inference failed")
	ErrInvalidK           = errors.New("invalid k")
)
