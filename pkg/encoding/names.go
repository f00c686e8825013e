// Package encoding converts legacy-encoded names and paths found in mesh
// and material files to UTF-8.
package encoding

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// byName maps configuration names to encodings. A nil encoding means the
// input is already UTF-8.
var byName = map[string]encoding.Encoding{
	"":             nil,
	"utf-8":        nil,
	"utf8":         nil,
	"euc-kr":       korean.EUCKR,
	"shift-jis":    japanese.ShiftJIS,
	"gbk":          simplifiedchinese.GBK,
	"windows-1252": charmap.Windows1252,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
}

// Lookup returns the encoding registered under name (case-insensitive).
// UTF-8 yields nil.
func Lookup(name string) (encoding.Encoding, error) {
	enc, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
	return enc, nil
}

// ToUTF8 decodes data with enc. Valid UTF-8 input and a nil enc are
// returned unchanged, as is data that fails to decode.
func ToUTF8(data []byte, enc encoding.Encoding) string {
	if enc == nil || utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// StringToUTF8 is ToUTF8 for a string holding raw bytes.
func StringToUTF8(s string, enc encoding.Encoding) string {
	return ToUTF8([]byte(s), enc)
}

// NormalizePath converts backslashes to slashes, drops trailing NUL bytes
// and strips a leading slash so the path resolves relative to the source
// directory.
func NormalizePath(path string) string {
	path = string(bytes.TrimRight([]byte(path), "\x00"))
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimPrefix(path, "/")
}
