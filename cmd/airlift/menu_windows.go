//go:build windows

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/windows/registry"
)

// menuVerb is the registry name of the context-menu entry. Registering
// under HKCU\Software\Classes needs no elevation.
const menuVerb = "airlift.upload"

var menuClasses = []string{`*`, `Directory`}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Manage the Explorer context-menu entry",
}

var menuInstallCmd = &cobra.Command{
	Use:           "install",
	Short:         `Add "Upload with airlift" to the Explorer context menu`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMenuInstall,
}

var menuRemoveCmd = &cobra.Command{
	Use:           "remove",
	Short:         "Remove the Explorer context-menu entry",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMenuRemove,
}

func init() {
	menuCmd.AddCommand(menuInstallCmd)
	menuCmd.AddCommand(menuRemoveCmd)
}

func runMenuInstall(_ *cobra.Command, _ []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	command := fmt.Sprintf(`"%s" "%%1"`, exe)

	for _, class := range menuClasses {
		base := `Software\Classes\` + class + `\shell\` + menuVerb

		k, _, err := registry.CreateKey(registry.CURRENT_USER, base, registry.SET_VALUE)
		if err != nil {
			return fmt.Errorf("create registry key %s: %w", base, err)
		}
		if err := k.SetStringValue("", "Upload with airlift"); err != nil {
			k.Close()
			return fmt.Errorf("set menu label: %w", err)
		}
		if err := k.SetStringValue("Icon", exe); err != nil {
			k.Close()
			return fmt.Errorf("set menu icon: %w", err)
		}
		k.Close()

		ck, _, err := registry.CreateKey(registry.CURRENT_USER, base+`\command`, registry.SET_VALUE)
		if err != nil {
			return fmt.Errorf("create registry key %s\\command: %w", base, err)
		}
		if err := ck.SetStringValue("", command); err != nil {
			ck.Close()
			return fmt.Errorf("set menu command: %w", err)
		}
		ck.Close()
	}

	fmt.Fprintln(os.Stdout, "context-menu entry installed")
	return nil
}

func runMenuRemove(_ *cobra.Command, _ []string) error {
	for _, class := range menuClasses {
		base := `Software\Classes\` + class + `\shell\` + menuVerb

		// The command subkey goes first; a key with subkeys cannot be deleted.
		for _, key := range []string{base + `\command`, base} {
			if err := registry.DeleteKey(registry.CURRENT_USER, key); err != nil &&
				!errors.Is(err, registry.ErrNotExist) {
				return fmt.Errorf("delete registry key %s: %w", key, err)
			}
		}
	}

	fmt.Fprintln(os.Stdout, "context-menu entry removed")
	return nil
}
