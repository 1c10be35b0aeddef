package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func clampUint32(v, lo, hi uint32) uint32 {
	return max(lo, min(v, hi))
}

// clampExtent fits extent within [lo, hi] on both axes.
func clampExtent(extent, lo, hi gpu.Extent2D) gpu.Extent2D {
	return gpu.Extent2D{
		Width:  clampUint32(extent.Width, lo.Width, hi.Width),
		Height: clampUint32(extent.Height, lo.Height, hi.Height),
	}
}

// fullViewport covers extent with the default [0, 1] depth range.
func fullViewport(extent gpu.Extent2D) gpu.Viewport {
	return gpu.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

func fullRect(extent gpu.Extent2D) gpu.Rect2D {
	return gpu.Rect2D{Extent: extent}
}
