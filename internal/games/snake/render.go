package snake

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/snake-arena/internal/core"
)

const (
	// CellWidth is the number of terminal columns per grid cell.
	CellWidth = 2
	// BoardWidth and BoardHeight include the border.
	BoardWidth  = GridSize*CellWidth + 2
	BoardHeight = GridSize + 2
)

// Render draws the board with its border at (originX, originY).
// Walls mode gets a solid border, pass-through a dotted one.
func Render(state GameState, dst *core.Screen, originX, originY int) {
	renderBorder(state.Mode, dst, originX, originY)

	cell := func(p Position, r rune, c core.Color) {
		x := originX + 1 + p.X*CellWidth
		y := originY + 1 + p.Y
		dst.SetColored(x, y, r, c)
		dst.SetColored(x+1, y, r, c)
	}

	blank := strings.Repeat(" ", GridSize*CellWidth)
	for y := 0; y < GridSize; y++ {
		dst.DrawText(originX+1, originY+1+y, blank)
	}

	cell(state.Food, '●', core.ColorBrightRed)

	// Tail first so the head wins if segments ever overlap.
	for i := len(state.Snake.Body) - 1; i >= 0; i-- {
		if i == 0 {
			c := core.ColorBrightGreen
			if state.Status == StatusGameOver {
				c = core.ColorRed
			}
			cell(state.Snake.Body[i], '█', c)
			continue
		}
		cell(state.Snake.Body[i], '▓', core.ColorGreen)
	}

	switch state.Status {
	case StatusIdle:
		renderBanner(dst, originX, originY, "Press Space to start", core.ColorYellow)
	case StatusPaused:
		renderBanner(dst, originX, originY, "Paused", core.ColorYellow)
	case StatusGameOver:
		renderBanner(dst, originX, originY, fmt.Sprintf("Game Over  score %d", state.Score), core.ColorBrightRed)
	}
}

func renderBorder(mode Mode, dst *core.Screen, originX, originY int) {
	if mode == ModeWalls {
		dst.DrawBox(core.NewRect(originX, originY, BoardWidth, BoardHeight), core.ColorCyan)
		return
	}
	c := core.ColorGray
	right := originX + BoardWidth - 1
	bottom := originY + BoardHeight - 1
	dst.DrawHLine(originX, originY, BoardWidth, '┄', c)
	dst.DrawHLine(originX, bottom, BoardWidth, '┄', c)
	for y := originY; y <= bottom; y++ {
		dst.SetColored(originX, y, '┆', c)
		dst.SetColored(right, y, '┆', c)
	}
}

// renderBanner writes a one-line message across the middle of the board.
func renderBanner(dst *core.Screen, originX, originY int, text string, c core.Color) {
	text = " " + text + " "
	n := len([]rune(text))
	x := originX + (BoardWidth-n)/2
	y := originY + BoardHeight/2
	dst.DrawTextColored(x, y, text, c)
}
