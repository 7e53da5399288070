package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"awaitlint/internal/prof"
)

// setupProfiling starts the profilers requested on the command line.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	v, err := persistentStrings(cmd, "cpu-profile", "mem-profile", "runtime-trace")
	if err != nil {
		return nil, err
	}
	opts := prof.Options{CPU: v[0], Mem: v[1], Trace: v[2]}
	if !opts.Enabled() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
