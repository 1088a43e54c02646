// Package cli implements the leverage command: offline mode resolution,
// question listing, default synthesis and batch scoring of requirement
// payloads.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"contractpilot/internal/requirements"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

type options struct {
	output  string
	verbose bool
}

// NewRootCmd builds the command tree writing results to out
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "leverage",
		Short:         "Offline strategic leverage tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputJSON, "Output format: json or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log normalization warnings to stderr")

	root.AddCommand(
		newModeCmd(opts),
		newQuestionsCmd(opts),
		newDefaultsCmd(opts),
		newScoreCmd(opts),
	)
	return root
}

// Execute runs the CLI against os.Args
func Execute() {
	if err := NewRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (o *options) logger() zerolog.Logger {
	if !o.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func (o *options) normalizer() *requirements.Normalizer {
	return requirements.NewNormalizer(o.logger(), nil)
}

// render writes v in the selected format. YAML goes through JSON first so
// both formats share the camelCase field names.
func (o *options) render(w io.Writer, v interface{}) error {
	switch o.output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

// readPayload loads a raw requirements payload. .json files are decoded
// as JSON, anything else as YAML.
func readPayload(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	raw := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", path, err)
	}
	return raw, nil
}
