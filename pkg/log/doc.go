/*
Package log provides Meteor's CLI-layer structured logging, wrapping
zerolog with a global logger, JSON or console output, and a handful of
context-scoped child loggers.

This package is deliberately thin: the core engine (pkg/engine,
pkg/stream, pkg/storage, pkg/workspace) never logs — every failure there
returns a *types.Error instead. Logging only happens at the cmd/meteor
CLI boundary, where a command can choose to record what it did before
returning its error to the user.

# Usage

	import "github.com/oodx/meteor/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Info("engine ready")
	log.WithComponent("run").Debug().Int("applied", 4).Msg("stream processed")
	log.WithContext("app").Debug().Str("path", "app:main:key").Msg("set")

# Levels

Debug is for per-operation detail (set/get paths, snapshot loads);
Info is for process lifecycle; Warn for rejected tokens that don't stop
a stream; Error for a stream aborted by a fatal lexer error. Fatal is not used by
cmd/meteor — command errors are returned up to cobra and reported on
stderr instead of exiting the logger directly.
*/
package log
