/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Command asyncrtctl is a small Cobra CLI for smoke-testing the asyncrt runtime by hand: it
// drives a thread executor, pipes values through a bounded channel, and prints the item count and
// timing; with metrics enabled, the channel's counters are also exposed over Prometheus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func buildRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "asyncrtctl",
		Short:   "asyncrtctl exercises the asyncrt runtime from the command line",
		Version: "0.1.0",
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "optional YAML config file path")

	root.AddCommand(buildRunCommand())
	root.AddCommand(buildBenchCommand())

	return root
}

func main() {
	if err := buildRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
