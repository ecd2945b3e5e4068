package policy

import "github.com/bnema/cascade/internal/geometry"

// MinimumWindowDimension is the smallest width or height any window may have
const MinimumWindowDimension int32 = 5

// KeepSizeWithinLimits clamps a proposed size to the window's limits. When a
// dimension is clamped, the delta component that would move the window on
// that axis is zeroed so the window does not drift while pinned at a limit.
// A zero maximum means unbounded.
func KeepSizeWithinLimits(info *WindowInfo, delta *geometry.Displacement, newWidth, newHeight *int32) {
	minWidth := max(info.MinSize.Width, MinimumWindowDimension)
	minHeight := max(info.MinSize.Height, MinimumWindowDimension)

	if *newWidth < minWidth {
		*newWidth = minWidth
		if delta.DX > 0 {
			delta.DX = 0
		}
	}

	if *newHeight < minHeight {
		*newHeight = minHeight
		if delta.DY > 0 {
			delta.DY = 0
		}
	}

	if maxWidth := info.MaxSize.Width; maxWidth > 0 && *newWidth > maxWidth {
		*newWidth = maxWidth
		if delta.DX < 0 {
			delta.DX = 0
		}
	}

	if maxHeight := info.MaxSize.Height; maxHeight > 0 && *newHeight > maxHeight {
		*newHeight = maxHeight
		if delta.DY < 0 {
			delta.DY = 0
		}
	}
}
