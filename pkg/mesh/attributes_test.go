package mesh

import (
	"errors"
	"testing"
)

func TestAttributes_Stride(t *testing.T) {
	tests := []struct {
		attrs Attributes
		want  int
	}{
		{Position, 3},
		{Position | Normal, 6},
		{Position | Texcoord0, 5},
		{Position | Normal | Texcoord0, 8},
	}

	for _, tt := range tests {
		t.Run(tt.attrs.String(), func(t *testing.T) {
			if got := tt.attrs.Stride(); got != tt.want {
				t.Errorf("Stride() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAttributes_Offset(t *testing.T) {
	tests := []struct {
		attrs   Attributes
		ch      Attributes
		want    int
		wantErr bool
	}{
		{Position | Normal | Texcoord0, Position, 0, false},
		{Position | Normal | Texcoord0, Normal, 3, false},
		{Position | Normal | Texcoord0, Texcoord0, 6, false},
		{Position | Texcoord0, Texcoord0, 3, false},
		{Position, Normal, 0, true},
		{Position | Normal, Texcoord0, 0, true},
		{Position | Normal, Position | Normal, 0, true},
		{Position | Normal, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.attrs.String()+"/"+tt.ch.String(), func(t *testing.T) {
			got, err := tt.attrs.Offset(tt.ch)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidChannel) {
					t.Errorf("Offset(%s) error = %v, want ErrInvalidChannel", tt.ch, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Offset(%s) failed: %v", tt.ch, err)
			}
			if got != tt.want {
				t.Errorf("Offset(%s) = %d, want %d", tt.ch, got, tt.want)
			}
		})
	}
}

func TestNewAttributes_AlwaysHasPosition(t *testing.T) {
	tests := []struct {
		mask uint32
		want Attributes
	}{
		{0, Position},
		{uint32(Normal), Position | Normal},
		{uint32(Texcoord0), Position | Texcoord0},
		{0xffff_fff0, Position},
		{0xffff_ffff, Position | Normal | Texcoord0},
	}

	for _, tt := range tests {
		if got := NewAttributes(tt.mask); got != tt.want {
			t.Errorf("NewAttributes(%#x) = %s, want %s", tt.mask, got, tt.want)
		}
	}
}

func TestAttributes_String(t *testing.T) {
	tests := []struct {
		attrs Attributes
		want  string
	}{
		{0, "None"},
		{Position, "Position"},
		{Position | Normal, "Position|Normal"},
		{Position | Normal | Texcoord0, "Position|Normal|Texcoord0"},
		{Attributes(0x100), "Unknown(0x100)"},
	}

	for _, tt := range tests {
		if got := tt.attrs.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestAttributes_Channels(t *testing.T) {
	got := (Texcoord0 | Position).Channels()
	if len(got) != 2 || got[0] != Position || got[1] != Texcoord0 {
		t.Errorf("Channels() = %v, want [Position Texcoord0]", got)
	}
}
