package models

import "errors"

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrDecode           = errors.New("multipart decode failed")
	ErrIO               = errors.New("file i/o failed")
	ErrPathEscape       = errors.New("path escapes root directory")
	ErrTooLarge         = errors.New("request body too large")
)
