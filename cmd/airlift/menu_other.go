//go:build !windows

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:           "menu",
	Short:         "Manage the Explorer context-menu entry",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		return errors.New("context-menu integration requires Windows")
	},
}
