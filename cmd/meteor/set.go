package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oodx/meteor/pkg/log"
)

var setCmd = &cobra.Command{
	Use:   "set <ctx:ns:key> <value>",
	Short: "Write one value by path",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	eng, store, err := newEngine(cmd)
	if err != nil {
		return err
	}
	if err := eng.Set(args[0], args[1]); err != nil {
		return err
	}
	if parts := strings.SplitN(args[0], ":", 2); len(parts) == 2 {
		log.WithContext(parts[0]).Debug().Str("path", args[0]).Msg("set")
	}
	if err := saveSnapshot(store, eng); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
