package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"awaitlint/internal/trace"
)

// persistentStrings reads string flags of the root command in order.
func persistentStrings(cmd *cobra.Command, names ...string) ([]string, error) {
	flags := cmd.Root().PersistentFlags()
	values := make([]string, len(names))
	for i, name := range names {
		v, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		values[i] = v
	}
	return values, nil
}

// setupTracing attaches a tracer built from --trace, --trace-level and
// --trace-format to the command context. The cleanup closes the output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	v, err := persistentStrings(cmd, "trace", "trace-level", "trace-format")
	if err != nil {
		return nil, err
	}
	output := v[0]

	level, err := trace.ParseLevel(v[1])
	if err != nil {
		return nil, err
	}
	// --trace без --trace-level: границы фаз
	if output != "" && level == trace.LevelOff {
		level = trace.LevelPhase
	}
	format, err := trace.ParseFormat(v[2])
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{Level: level, Format: format, OutputPath: output})
	if err != nil {
		return nil, err
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}
