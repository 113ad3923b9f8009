//go:build !cgo

package lcd

import (
	"context"
	"errors"

	"github.com/vovakirdan/snek/internal/core"
)

// Runner is the control loop behind the window.
type Runner interface {
	Run(ctx context.Context) error
}

// Run needs the ebiten window backend, which needs cgo.
func Run(_ context.Context, _ Runner, _ *Display, _ *core.InputLatch) error {
	return errors.New("lcd: window mode requires cgo (build/run with CGO_ENABLED=1)")
}
