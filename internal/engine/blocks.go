package engine

// block is one body-level element of a block-granular document.
type block struct {
	width  int  // Content positions occupied
	pinned bool // Never deleted (section properties and the like)
}

// offsets returns the start position of every block and the total length.
func offsets(blocks []block) ([]int, int) {
	out := make([]int, len(blocks))
	pos := 0
	for i, b := range blocks {
		out[i] = pos
		pos += b.width
	}
	return out, pos
}

// deletionMask marks the blocks whose start position lies in [start, end).
// Deletion is block-granular: a block is removed whole or not at all.
func deletionMask(blocks []block, start, end int) []bool {
	offs, _ := offsets(blocks)
	mask := make([]bool, len(blocks))
	for i, b := range blocks {
		if b.pinned {
			continue
		}
		if offs[i] >= start && offs[i] < end {
			mask[i] = true
		}
	}
	return mask
}

func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start = end
	}
	return start, end
}
