package substitution

import (
	"bytes"
	"unicode/utf8"
)

// sniffLen is how much of a file is searched for a NUL byte
const sniffLen = 8000

// IsBinary reports whether content should be copied without substitution:
// a NUL byte near the start, or bytes that are not valid UTF-8.
func IsBinary(content []byte) bool {
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	return !utf8.Valid(content)
}
