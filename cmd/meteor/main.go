package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oodx/meteor/pkg/engine"
	"github.com/oodx/meteor/pkg/limits"
	"github.com/oodx/meteor/pkg/log"
	"github.com/oodx/meteor/pkg/snapshot"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "meteor",
	Short:   "Meteor - an in-process hierarchical key-value engine and token-stream CLI",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"meteor version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("profile", "default", "Build profile (default, strict)")
	rootCmd.PersistentFlags().String("snapshot", "", "Optional bbolt file to load before and save after the command")
	rootCmd.PersistentFlags().String("format", "text", "Output format (text, yaml)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(historyCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// newEngine builds an engine for one CLI invocation, loading a snapshot
// file first if --snapshot was given.
func newEngine(cmd *cobra.Command) (*engine.MeteorEngine, *snapshot.BoltStore, error) {
	profileName, _ := cmd.Flags().GetString("profile")
	prof := limits.Default
	if profileName == "strict" {
		prof = limits.Strict
	}

	eng := engine.New(prof)

	path, _ := cmd.Flags().GetString("snapshot")
	if path == "" {
		return eng, nil, nil
	}
	store := snapshot.NewBoltStore(path)
	if _, err := os.Stat(path); err == nil {
		if err := store.Import(eng); err != nil {
			return nil, nil, fmt.Errorf("load snapshot: %w", err)
		}
		log.Logger.Debug().Str("path", path).Msg("loaded snapshot")
	}
	return eng, store, nil
}

func saveSnapshot(store *snapshot.BoltStore, eng *engine.MeteorEngine) error {
	if store == nil {
		return nil
	}
	return store.Export(eng)
}
