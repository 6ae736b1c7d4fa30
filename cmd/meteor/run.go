package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oodx/meteor/pkg/log"
	"github.com/oodx/meteor/pkg/stream"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Feed a token stream or meteor stream body into a fresh engine",
	Long: `Reads a stream body from -f (or stdin), applies it to a fresh
engine (or to the one loaded from --snapshot), and reports how many
tokens were applied.

Examples:
  meteor run -f session.tokens
  meteor run --dialect meteor -f batch.meteors`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "stream body to read (defaults to stdin)")
	runCmd.Flags().String("dialect", "token", "stream dialect (token, meteor)")
	runCmd.Flags().Bool("lenient", false, "meteor dialect only: allow mixed addresses within one meteor")
}

func runRun(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	dialect, _ := cmd.Flags().GetString("dialect")
	lenient, _ := cmd.Flags().GetBool("lenient")

	var body []byte
	var err error
	if filename == "" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(filename)
	}
	if err != nil {
		return fmt.Errorf("read stream body: %w", err)
	}

	eng, store, err := newEngine(cmd)
	if err != nil {
		return err
	}

	var applied int
	var tokenErrs []stream.TokenError
	var fatal error

	switch dialect {
	case "token":
		applied, tokenErrs, fatal = stream.NewTokenStream(eng).Process(string(body))
	case "meteor":
		var opts []stream.Option
		if lenient {
			opts = append(opts, stream.WithLenientAddressing())
		}
		applied, tokenErrs, fatal = stream.NewMeteorStream(eng, opts...).Process(string(body))
	default:
		return fmt.Errorf("unknown dialect %q (want token or meteor)", dialect)
	}

	cur := eng.Cursor()
	runLog := log.WithComponent("run").With().
		Str("context", string(cur.Context)).
		Str("namespace", string(cur.Namespace)).
		Logger()

	fmt.Printf("applied %d token(s)\n", applied)
	for _, te := range tokenErrs {
		runLog.Warn().Str("token", te.Token).Err(te.Err).Msg("token rejected")
		fmt.Fprintf(os.Stderr, "  token %q: %v\n", te.Token, te.Err)
	}
	if fatal != nil {
		runLog.Error().Err(fatal).Msg("stream aborted")
		fmt.Fprintf(os.Stderr, "stream aborted: %v\n", fatal)
	}

	if err := saveSnapshot(store, eng); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if fatal != nil {
		return fatal
	}
	return nil
}
