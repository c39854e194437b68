package svb

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// CString decodes a NUL terminated text field. Bytes after the first NUL are ignored and
// every byte that is not part of valid UTF-8 becomes U+FFFD.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(utf8.RuneError)
			b = b[1:]
			continue
		}
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// putCString copies s into a fixed field, truncating so that a terminating NUL fits.
func putCString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	if len(dst) == 0 {
		return
	}
	copy(dst[:len(dst)-1], s)
}
