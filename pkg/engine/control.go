package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/oodx/meteor/pkg/types"
)

// ExecuteControlCommand dispatches a ctl:* invocation and appends exactly
// one ControlCommand record to the history, success or failure alike
// (spec.md S6.3, S8.1 invariant 9).
func (e *MeteorEngine) ExecuteControlCommand(kind types.ControlCommandKind, target string) error {
	err := e.dispatchControlCommand(kind, target)
	e.appendHistory(kind, target, err)
	return err
}

func (e *MeteorEngine) dispatchControlCommand(kind types.ControlCommandKind, target string) error {
	switch kind {
	case types.ControlDelete:
		_, err := e.Delete(target)
		return err

	case types.ControlReset:
		switch target {
		case "cursor":
			e.ResetCursor()
			return nil
		case "storage":
			e.storage.Clear()
			e.workspace.Clear()
			return nil
		case "all":
			e.ResetCursor()
			e.storage.Clear()
			e.workspace.Clear()
			return nil
		default:
			if err := validateContextTarget(types.Context(target)); err != nil {
				return err
			}
			e.deleteContext(types.Context(target))
			return nil
		}

	default:
		return types.Errf(op, types.KindUnknownControlCommand, "unknown control command kind %q", kind)
	}
}

func validateContextTarget(ctx types.Context) error {
	if ctx == "" {
		return types.Errf(op, types.KindInvalidContext, "empty reset target")
	}
	return nil
}

func (e *MeteorEngine) appendHistory(kind types.ControlCommandKind, target string, cmdErr error) {
	rec := types.ControlCommand{
		ID:      uuid.NewString(),
		Kind:    kind,
		Target:  target,
		Success: cmdErr == nil,
	}
	if cmdErr != nil {
		rec.Error = cmdErr.Error()
	}
	rec.Timestamp = now()

	e.history = append(e.history, rec)
	if max := e.profile.MaxCommandHistory; max > 0 && len(e.history) > max {
		e.history = e.history[len(e.history)-max:]
	}
}

// History returns the control-command audit trail, oldest first.
func (e *MeteorEngine) History() []types.ControlCommand {
	out := make([]types.ControlCommand, len(e.history))
	copy(out, e.history)
	return out
}

// now is a seam so tests can observe monotonic ordering without depending
// on wall-clock resolution.
var now = time.Now
