package browser

import (
	"context"
	"math/rand"
	"time"

	"go-career-hunter/utils"

	"github.com/playwright-community/playwright-go"
)

// MouseJiggle simulates a few random mouse movements inside the viewport
func MouseJiggle(ctx context.Context, page playwright.Page) error {
	viewportSize := page.ViewportSize()
	if viewportSize == nil || viewportSize.Width == 0 || viewportSize.Height == 0 {
		return nil
	}
	for i := 0; i < 3; i++ {
		x := rand.Intn(viewportSize.Width)
		y := rand.Intn(viewportSize.Height)
		if err := page.Mouse().Move(float64(x), float64(y)); err != nil {
			return err
		}
		if err := utils.RandomDelay(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
