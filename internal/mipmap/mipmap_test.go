package mipmap

import "testing"

func TestLevels(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          int
	}{
		{"64x64 square", 64, 64, 7},
		{"128x64 rectangle", 128, 64, 8},
		{"1x1 minimum", 1, 1, 1},
		{"100x50 odd dimensions", 100, 50, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Levels(tt.width, tt.height); got != tt.want {
				t.Errorf("Levels(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestExtendBoxFilter(t *testing.T) {
	// 2x2 RG texture: each channel averages to a known value.
	base := []byte{
		0, 100, 100, 100,
		200, 100, 100, 0,
	}
	levels := Extend([][]byte{base}, 2, 2, 2, 2)
	if len(levels) != 2 {
		t.Fatalf("len(levels) = %d, want 2", len(levels))
	}
	if got := levels[1]; len(got) != 2 || got[0] != 100 || got[1] != 75 {
		t.Errorf("level 1 = %v, want [100 75]", got)
	}
	if &levels[0][0] != &base[0] {
		t.Error("level 0 was copied")
	}
}

func TestExtendKeepsExistingLevels(t *testing.T) {
	l0 := make([]byte, 4*4*4)
	l1 := []byte{
		1, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1,
	}
	levels := Extend([][]byte{l0, l1}, 4, 4, 4, Levels(4, 4))

	if len(levels) != 3 {
		t.Fatalf("len(levels) = %d, want 3", len(levels))
	}
	// Level 2 derives from the supplied level 1, not from level 0.
	if got := levels[2]; len(got) != 4 || got[0] != 1 {
		t.Errorf("level 2 = %v, want derived from level 1", got)
	}
}

func TestExtendOddEdges(t *testing.T) {
	// 3x1 single channel: the last column is repeated.
	levels := Extend([][]byte{{10, 20, 90}}, 3, 1, 1, Levels(3, 1))
	if len(levels) != 2 {
		t.Fatalf("len(levels) = %d, want 2", len(levels))
	}
	if got := levels[1]; len(got) != 1 || got[0] != 15 {
		t.Errorf("level 1 = %v, want [15]", got)
	}
}
