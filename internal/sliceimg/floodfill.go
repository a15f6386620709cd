package sliceimg

// FloodFill performs a 4-connected scanline flood fill starting at
// (seedCol, seedRow), replacing every pixel reachable from the seed through
// pixels equal to the seed's own color with (r,g,b,a) (spec.md §4.5). It
// returns the number of pixels changed.
//
// FloodFill is a no-op (returns 0) when the seed is out of bounds or when
// the seed's current color already equals the fill color — matching the
// conventional flood-fill fixed point.
func (img *Image) FloodFill(seedCol, seedRow int, r, g, b, a uint8) int {
	if !img.InBounds(seedCol, seedRow) {
		return 0
	}
	target := img.word(seedCol, seedRow)
	fill := packRGBA(r, g, b, a)
	if target == fill {
		return 0
	}

	type seed struct{ col, row int }
	stack := make([]seed, 0, 256)
	stack = append(stack, seed{seedCol, seedRow})

	changed := 0
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !img.InBounds(s.col, s.row) || img.word(s.col, s.row) != target {
			continue
		}

		// expand west
		left := s.col
		for left-1 >= 0 && img.word(left-1, s.row) == target {
			left--
		}
		// expand east
		right := s.col
		for right+1 < img.Width && img.word(right+1, s.row) == target {
			right++
		}

		for c := left; c <= right; c++ {
			img.setWord(c, s.row, fill)
			changed++
		}

		// seed the row above and below anywhere within [left,right] that
		// still matches the target color
		for _, adjRow := range [2]int{s.row - 1, s.row + 1} {
			if adjRow < 0 || adjRow >= img.Height {
				continue
			}
			c := left
			for c <= right {
				if img.word(c, adjRow) != target {
					c++
					continue
				}
				stack = append(stack, seed{c, adjRow})
				for c+1 <= right && img.word(c+1, adjRow) == target {
					c++
				}
				c++
			}
		}
	}
	return changed
}
