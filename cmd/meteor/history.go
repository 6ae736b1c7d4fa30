package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the control-command audit trail",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	eng, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	records := eng.History()

	format, _ := cmd.Flags().GetString("format")
	if format == "yaml" {
		out, err := yaml.Marshal(records)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		fmt.Printf("%s  %-6s %-20s %s\n", r.Timestamp.Format("2006-01-02T15:04:05Z07:00"), r.Kind, r.Target, status)
	}
	return nil
}
