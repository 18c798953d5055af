package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/stackwm/internal/platform"
)

// Rect represents a window position and size
type Rect = platform.Rect

// Layout names a tiling strategy.
type Layout string

const (
	// LayoutSpiral gives each window a share of the remaining area,
	// alternating vertical and horizontal splits.
	LayoutSpiral Layout = "spiral"
	// LayoutGrid places windows in a near-square grid.
	LayoutGrid Layout = "grid"
)

// ParseLayout validates a layout name. Empty means spiral.
func ParseLayout(name string) (Layout, error) {
	switch Layout(name) {
	case "", LayoutSpiral:
		return LayoutSpiral, nil
	case LayoutGrid:
		return LayoutGrid, nil
	default:
		return "", fmt.Errorf("unsupported layout mode: %q", name)
	}
}

// Params carries the drawing settings of one workspace.
type Params struct {
	Layout     Layout
	Gap        int
	Ratio      float64
	Fullscreen bool
}

// Arrange computes geometries for n windows, TOS first. Fewer than n
// rectangles are returned when some windows should be hidden: in monocle
// mode (fullscreen, or a single window) only TOS is placed.
func Arrange(n int, area Rect, p Params) []Rect {
	if n == 0 {
		return nil
	}
	if p.Fullscreen || n == 1 {
		return []Rect{Monocle(area)}
	}
	if p.Layout == LayoutGrid {
		return CalculatePositions(n, area, p.Gap)
	}
	return Spiral(n, area, p.Ratio, p.Gap)
}

// Monocle covers the whole area without gaps.
func Monocle(area Rect) Rect {
	return area
}

// Spiral splits the area repeatedly. The first window takes ratio/2 of the
// width, the next ratio/2 of the remaining height, and so on; the last
// window fills whatever is left. Gap is the spacing between tiles and
// around the edge.
func Spiral(n int, area Rect, ratio float64, gap int) []Rect {
	if n == 0 {
		return nil
	}

	half := gap / 2
	x, y := area.X+half, area.Y+half
	w, h := area.Width-gap, area.Height-gap

	positions := make([]Rect, 0, n)
	vertical := true
	for i := 0; i < n-1; i++ {
		if vertical {
			lw := int(ratio * float64(w) / 2)
			positions = append(positions, tile(x+half, y+half, lw-gap, h-gap))
			w -= lw
			x += lw
		} else {
			lh := int(ratio * float64(h) / 2)
			positions = append(positions, tile(x+half, y+half, w-gap, lh-gap))
			h -= lh
			y += lh
		}
		vertical = !vertical
	}
	positions = append(positions, tile(x+half, y+half, w-gap, h-gap))

	return positions
}

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes window positions for a grid layout with gaps
func CalculatePositions(numWindows int, monitor Rect, gapSize int) []Rect {
	if numWindows == 0 {
		return nil
	}

	rows, cols := CalculateGrid(numWindows)

	// One gap before each column and one after the last.
	totalHorizontalGaps := (cols + 1) * gapSize
	totalVerticalGaps := (rows + 1) * gapSize

	cellWidth := (monitor.Width - totalHorizontalGaps) / cols
	cellHeight := (monitor.Height - totalVerticalGaps) / rows

	positions := make([]Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols

		positions[i] = tile(
			monitor.X+gapSize+col*(cellWidth+gapSize),
			monitor.Y+gapSize+row*(cellHeight+gapSize),
			cellWidth,
			cellHeight,
		)
	}

	return positions
}

// Offscreen returns a position just past the bottom-right corner of every
// display, where hidden windows are parked.
func Offscreen(displays []Rect) (x, y int) {
	for _, d := range displays {
		x = max(x, d.X+d.Width)
		y = max(y, d.Y+d.Height)
	}
	return x, y
}

func tile(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: max(w, 1), Height: max(h, 1)}
}
