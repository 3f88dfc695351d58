package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback. A failing start or ready hook aborts
// startup; a failing stop hook is logged and shutdown carries on.
type Hook func(ctx context.Context) error

type phase int

const (
	phaseStart phase = iota
	phaseReady
	phaseStop
)

var phaseNames = [...]string{phaseStart: "onStart", phaseReady: "onReady", phaseStop: "onStop"}

func (a *App[C]) addHooks(p phase, hooks []Hook) {
	a.hooks[p] = append(a.hooks[p], hooks...)
}

// OnStart hooks run once every component has started.
func (a *App[C]) OnStart(hooks ...Hook) { a.addHooks(phaseStart, hooks) }

// OnReady hooks run after the ready check, just before the startup summary.
func (a *App[C]) OnReady(hooks ...Hook) { a.addHooks(phaseReady, hooks) }

// OnStop hooks run before components stop, so they can still use them.
func (a *App[C]) OnStop(hooks ...Hook) { a.addHooks(phaseStop, hooks) }

func (a *App[C]) runHooks(ctx context.Context, p phase) error {
	for i, h := range a.hooks[p] {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook failed: hook %d: %w", phaseNames[p], i, err)
		}
	}
	return nil
}
