package export

import "errors"

var (
	ErrEncodeFailed = errors.New("export: failed to encode report")
	ErrDecodeFailed = errors.New("export: failed to decode report")
)
