// Package formats reads and writes the binary mesh containers produced by
// the converter.
package formats

import "bytes"

// Kind identifies a container format.
type Kind int

// Container kinds.
const (
	KindUnknown Kind = iota
	KindMSH
	KindBMF
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindMSH:
		return "MSH"
	case KindBMF:
		return "BMF"
	}
	return "unknown"
}

// Detect identifies a container by its signature.
func Detect(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, []byte(mshSignature)):
		return KindMSH
	case bytes.HasPrefix(data, []byte(bmfSignature)):
		return KindBMF
	}
	return KindUnknown
}
