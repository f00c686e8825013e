package formats

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"msh", createTestMSH(false, false, nil, nil), KindMSH},
		{"bmf", []byte("BMF\x01\x00\x00\x00"), KindBMF},
		{"short", []byte("MS"), KindUnknown},
		{"empty", nil, KindUnknown},
		{"other", []byte("GRAT"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}
