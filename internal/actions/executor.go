package actions

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ModeController gives the executor read/write access to the active mode
type ModeController interface {
	CurrentMode() int
	SetMode(index int) error
}

// Result is the outcome of executing one node of an action tree
type Result struct {
	Type ActionType
	Err  error

	// Children holds one result per executed child: every step of a
	// sequence, each repeat iteration that ran, or the chosen conditional
	// branch.
	Children []Result

	// Skipped is set for a conditional whose condition was false and that
	// has no else branch.
	Skipped bool
}

// OK reports whether the action completed without error
func (r Result) OK() bool {
	return r.Err == nil
}

// FailedIndices returns the indices of the children that failed
func (r Result) FailedIndices() []int {
	var failed []int
	for i, c := range r.Children {
		if c.Err != nil {
			failed = append(failed, i)
		}
	}
	return failed
}

// Executor interprets action trees against a Sink. Execution is synchronous
// and runs on the caller's goroutine.
type Executor struct {
	sink   Sink
	env    Environment
	modes  ModeController
	logger *slog.Logger
}

// NewExecutor creates a new action executor
func NewExecutor(sink Sink, env Environment, modes ModeController, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		sink:   sink,
		env:    env,
		modes:  modes,
		logger: logger,
	}
}

// Execute runs an action tree depth first. Failures are reported in the
// result, never returned as panics. Cancelling ctx interrupts delays and
// stops composite actions before their next child.
func (e *Executor) Execute(ctx context.Context, action *Action) Result {
	if action == nil {
		return Result{Err: &Error{Kind: KindExecutionFailed, Err: fmt.Errorf("action is nil")}}
	}
	return e.execute(ctx, action)
}

func (e *Executor) execute(ctx context.Context, a *Action) Result {
	res := Result{Type: a.Type}

	switch a.Type {
	case ActionTypeKeystroke:
		res.Err = e.call(a.Type, func() error { return e.sink.ExecuteKeystroke(a.Key, a.Modifiers) })

	case ActionTypeText:
		res.Err = e.call(a.Type, func() error { return e.sink.ExecuteText(a.Text) })

	case ActionTypeLaunch:
		res.Err = e.call(a.Type, func() error { return e.sink.ExecuteLaunch(a.App) })

	case ActionTypeShell:
		res.Err = e.call(a.Type, func() error { return e.sink.ExecuteShell(a.Command) })

	case ActionTypeVolume:
		if a.Volume == nil {
			res.Err = &Error{Kind: KindExecutionFailed, Action: a.Type, Err: fmt.Errorf("missing volume operation")}
			break
		}
		res.Err = e.call(a.Type, func() error { return e.sink.ExecuteVolume(*a.Volume) })

	case ActionTypeMouseClick:
		res.Err = e.call(a.Type, func() error { return e.sink.ExecuteMouse(a.Button, a.At) })

	case ActionTypeSendMidi:
		if a.Midi == nil {
			res.Err = &Error{Kind: KindExecutionFailed, Action: a.Type, Err: fmt.Errorf("missing midi message")}
			break
		}
		res.Err = e.call(a.Type, func() error { return e.sink.ExecuteMidi(*a.Midi) })

	case ActionTypeModeChange:
		if e.modes == nil {
			res.Err = &Error{Kind: KindInvalidMode, Action: a.Type, Err: fmt.Errorf("no mode controller")}
			break
		}
		if err := e.modes.SetMode(a.Mode); err != nil {
			res.Err = &Error{Kind: KindInvalidMode, Action: a.Type, Err: err}
		}

	case ActionTypeDelay:
		res.Err = sleep(ctx, a.Duration())

	case ActionTypeSequence:
		e.sequence(ctx, a, &res)

	case ActionTypeRepeat:
		e.repeat(ctx, a, &res)

	case ActionTypeConditional:
		e.conditional(ctx, a, &res)

	default:
		res.Err = &Error{Kind: KindExecutionFailed, Action: a.Type, Err: fmt.Errorf("unknown action type: %s", a.Type)}
	}

	if res.Err != nil && !a.Type.IsComposite() {
		e.logger.Debug("action failed", "action", a.String(), "error", res.Err)
	}
	return res
}

// sequence runs every child in order. A failing child does not stop the
// ones after it; only cancellation does.
func (e *Executor) sequence(ctx context.Context, a *Action, res *Result) {
	res.Children = make([]Result, 0, len(a.Actions))
	var seqErr SequenceError

	for i := range a.Actions {
		var child Result
		if ctx.Err() != nil {
			child = Result{Type: a.Actions[i].Type, Err: &Error{Kind: KindCancelled, Action: a.Actions[i].Type, Err: ctx.Err()}}
		} else {
			child = e.execute(ctx, &a.Actions[i])
		}
		res.Children = append(res.Children, child)
		if child.Err != nil {
			seqErr.Failed = append(seqErr.Failed, i)
			seqErr.Errs = append(seqErr.Errs, child.Err)
		}
	}

	if len(seqErr.Failed) > 0 {
		res.Err = &seqErr
	}
}

// repeat runs the wrapped action Count times and stops at the first failure
func (e *Executor) repeat(ctx context.Context, a *Action, res *Result) {
	if a.Action == nil {
		res.Err = &Error{Kind: KindExecutionFailed, Action: a.Type, Err: fmt.Errorf("missing repeated action")}
		return
	}

	for i := 0; i < a.Count; i++ {
		if err := ctx.Err(); err != nil {
			res.Err = &Error{Kind: KindCancelled, Action: a.Type, Err: err}
			return
		}
		child := e.execute(ctx, a.Action)
		res.Children = append(res.Children, child)
		if child.Err != nil {
			res.Err = fmt.Errorf("repeat iteration %d of %d: %w", i+1, a.Count, child.Err)
			return
		}
	}
}

// conditional evaluates the condition once and runs exactly one branch
func (e *Executor) conditional(ctx context.Context, a *Action, res *Result) {
	if a.Condition == nil {
		res.Err = &Error{Kind: KindExecutionFailed, Action: a.Type, Err: fmt.Errorf("missing condition")}
		return
	}

	mode := 0
	if e.modes != nil {
		mode = e.modes.CurrentMode()
	}
	ok, err := a.Condition.Evaluate(e.env, mode)
	if err != nil {
		res.Err = &Error{Kind: KindExecutionFailed, Action: a.Type, Err: err}
		return
	}

	branch := a.Else
	if ok {
		branch = a.Then
	}
	if branch == nil {
		res.Skipped = true
		return
	}

	child := e.execute(ctx, branch)
	res.Children = []Result{child}
	res.Err = child.Err
}

// call invokes a sink method, converting panics into errors so a faulty sink
// cannot take down the processing goroutine.
func (e *Executor) call(t ActionType, fn func() error) (err error) {
	if e.sink == nil {
		return &Error{Kind: KindExecutionFailed, Action: t, Err: fmt.Errorf("no action sink")}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindExecutionFailed, Action: t, Err: fmt.Errorf("sink panic: %v", r)}
		}
	}()
	return wrapError(t, fn())
}

// sleep blocks for d or until ctx is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return &Error{Kind: KindCancelled, Action: ActionTypeDelay, Err: ctx.Err()}
	}
}
