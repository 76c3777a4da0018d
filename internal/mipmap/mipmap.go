// Package mipmap builds mip chains for textures with 8-bit channels.
package mipmap

// Levels returns the number of levels in a full mip chain of a
// width x height texture. Each level halves both dimensions until the
// largest reaches 1.
func Levels(width, height int) int {
	n := 1
	for width > 1 || height > 1 {
		width, height = max(width/2, 1), max(height/2, 1)
		n++
	}
	return n
}

// Extend grows levels to n entries by box filtering each missing level
// from the previous one. levels[0] must hold width*height*channels bytes;
// existing levels are kept. channels is the number of 8-bit channels per
// texel, 1 to 4.
func Extend(levels [][]byte, width, height, channels, n int) [][]byte {
	if len(levels) == 0 || channels < 1 || channels > 4 {
		return levels
	}
	for i := 1; i < len(levels) && i < n; i++ {
		width, height = max(width/2, 1), max(height/2, 1)
	}
	for len(levels) < n {
		prev := levels[len(levels)-1]
		levels = append(levels, downsample(prev, width, height, channels))
		width, height = max(width/2, 1), max(height/2, 1)
	}
	return levels
}

// downsample averages 2x2 texel blocks of src. Odd edges repeat the last
// row or column.
func downsample(src []byte, srcW, srcH, channels int) []byte {
	dstW, dstH := max(1, srcW/2), max(1, srcH/2)
	dst := make([]byte, dstW*dstH*channels)

	at := func(x, y, c int) uint16 {
		return uint16(src[(y*srcW+x)*channels+c])
	}
	for dy := 0; dy < dstH; dy++ {
		sy0, sy1 := dy*2, min(dy*2+1, srcH-1)
		for dx := 0; dx < dstW; dx++ {
			sx0, sx1 := dx*2, min(dx*2+1, srcW-1)
			for c := 0; c < channels; c++ {
				sum := at(sx0, sy0, c) + at(sx1, sy0, c) + at(sx0, sy1, c) + at(sx1, sy1, c)
				dst[(dy*dstW+dx)*channels+c] = byte(sum / 4) // #nosec G115 -- average of bytes
			}
		}
	}
	return dst
}
