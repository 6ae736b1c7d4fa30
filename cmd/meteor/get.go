package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oodx/meteor/pkg/log"
)

var getCmd = &cobra.Command{
	Use:   "get <ctx:ns:key>",
	Short: "Read one value by path",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	eng, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	value, ok, err := eng.Get(args[0])
	if err != nil {
		return err
	}
	if !ok {
		if parts := strings.SplitN(args[0], ":", 3); len(parts) == 3 {
			log.WithNamespace(parts[1]).Debug().Str("path", args[0]).Msg("not found")
		}
		fmt.Fprintf(os.Stderr, "not found: %s\n", args[0])
		os.Exit(1)
	}
	fmt.Println(value)
	return nil
}
