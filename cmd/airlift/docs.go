package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:    "gen-docs",
	Short:  "Write man pages or markdown docs for the command tree",
	Hidden: true,
	RunE:   runGenDocs,
}

func init() {
	docsCmd.Flags().String("format", "man", "man or markdown")
	docsCmd.Flags().String("dir", "docs", "directory to write the generated files into")
}

func runGenDocs(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format") //nolint:errcheck // flag name is hardcoded
	dir, _ := cmd.Flags().GetString("dir")       //nolint:errcheck // flag name is hardcoded

	if format != "man" && format != "markdown" {
		return fmt.Errorf("unknown format %q (use man or markdown)", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Docs cover the whole command tree, so generate from the root.
	root := cmd.Root()
	if format == "markdown" {
		return doc.GenMarkdownTree(root, dir)
	}
	header := &doc.GenManHeader{
		Title:   "AIRLIFT",
		Section: "1",
		Source:  "airlift " + version,
	}
	return doc.GenManTree(root, header, dir)
}
