// Package mesh implements the single-index mesh encoding engine: attribute
// layouts, raw mesh building, material splitting, vertex deduplication,
// 16-bit index reduction, attribute completion, shape merging and bounding
// volume generation.
package mesh

import (
	"fmt"
	"math/bits"
	"strings"
)

// Attributes is a bitmask of per-vertex channels.
// Channels are always laid out in bit order inside a vertex record.
type Attributes uint32

// Vertex channels, in canonical layout order.
const (
	Position Attributes = 1 << iota
	Normal
	Texcoord0

	// allAttributes masks every known channel.
	allAttributes = Position | Normal | Texcoord0
)

// channelOrder lists the known channels in layout order.
var channelOrder = [...]Attributes{Position, Normal, Texcoord0}

// NewAttributes builds a layout from a requested channel mask.
// Unknown bits are dropped and Position is always present.
func NewAttributes(mask uint32) Attributes {
	return (Attributes(mask) & allAttributes) | Position
}

// ElementCount returns the number of float32 elements of a single channel.
func ElementCount(ch Attributes) int {
	switch ch {
	case Position, Normal:
		return 3
	case Texcoord0:
		return 2
	default:
		return 0
	}
}

// Has reports whether every channel of ch is present in a.
func (a Attributes) Has(ch Attributes) bool {
	return ch != 0 && a&ch == ch
}

// Stride returns the number of float32 elements of one vertex record.
func (a Attributes) Stride() int {
	stride := 0
	for _, ch := range channelOrder {
		if a&ch != 0 {
			stride += ElementCount(ch)
		}
	}
	return stride
}

// Offset returns the element offset of ch inside a vertex record.
// ch must be a single channel present in a.
func (a Attributes) Offset(ch Attributes) (int, error) {
	if bits.OnesCount32(uint32(ch)) != 1 || !a.Has(ch) {
		return 0, fmt.Errorf("%w: %s not in %s", ErrInvalidChannel, ch, a)
	}
	offset := 0
	for _, c := range channelOrder {
		if c == ch {
			break
		}
		if a&c != 0 {
			offset += ElementCount(c)
		}
	}
	return offset, nil
}

// mustOffset is Offset for channels already checked with Has.
func (a Attributes) mustOffset(ch Attributes) int {
	off, err := a.Offset(ch)
	if err != nil {
		panic(err)
	}
	return off
}

// Channels returns the present channels in layout order.
func (a Attributes) Channels() []Attributes {
	var chans []Attributes
	for _, ch := range channelOrder {
		if a&ch != 0 {
			chans = append(chans, ch)
		}
	}
	return chans
}

// String implements fmt.Stringer.
func (a Attributes) String() string {
	switch a {
	case 0:
		return "None"
	case Position:
		return "Position"
	case Normal:
		return "Normal"
	case Texcoord0:
		return "Texcoord0"
	}
	if a&^allAttributes != 0 {
		return fmt.Sprintf("Unknown(%#x)", uint32(a))
	}
	names := make([]string, 0, 3)
	for _, ch := range a.Channels() {
		names = append(names, ch.String())
	}
	return strings.Join(names, "|")
}
