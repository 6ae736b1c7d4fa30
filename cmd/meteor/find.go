package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oodx/meteor/pkg/types"
)

var findCmd = &cobra.Command{
	Use:   "find <pattern>",
	Short: "Glob-match keys within one (context, namespace)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().String("ctx", string(types.DefaultContext), "context to search")
	findCmd.Flags().String("ns", string(types.MainNamespace), "namespace to search")
}

func runFind(cmd *cobra.Command, args []string) error {
	eng, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	ctx, _ := cmd.Flags().GetString("ctx")
	ns, _ := cmd.Flags().GetString("ns")
	if err := eng.SwitchContext(types.Context(ctx)); err != nil {
		return err
	}
	if err := eng.SwitchNamespace(types.Namespace(ns)); err != nil {
		return err
	}

	results, err := eng.Find(args[0])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "yaml" {
		out, err := yaml.Marshal(results)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	for _, r := range results {
		fmt.Printf("%s=%s\n", r.Path, r.Value)
	}
	return nil
}
