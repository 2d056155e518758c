package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"airlift/internal/config"
	"airlift/internal/remote"
	"airlift/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list [folder-hash]",
	Short: "List a remote folder's contents",
	Long: `List the contents of a remote folder. Without an argument the
configured base folder is listed. Logging in first lets private folders
be listed too.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runList,
}

func init() {
	listCmd.Flags().Bool("subfolders", false, "include subfolder contents")
	listCmd.Flags().String("service", remote.DefaultBaseURL, "service base URL")
	listCmd.Flags().String("config", "", "credentials file (default: XDG config dir)")
}

func runList(cmd *cobra.Command, args []string) error {
	subfolders, _ := cmd.Flags().GetBool("subfolders") //nolint:errcheck // flag name is hardcoded
	service, _ := cmd.Flags().GetString("service")     //nolint:errcheck // flag name is hardcoded
	configPath, _ := cmd.Flags().GetString("config")   //nolint:errcheck // flag name is hardcoded

	creds, err := config.LoadCredentials(configPath)
	if err != nil {
		return err
	}

	hash := creds.BaseFolderHash
	if len(args) == 1 {
		hash = args[0]
	}
	if hash == "" {
		return errors.New("no folder hash given and none configured; run \"airlift configure\" first")
	}

	client, err := remote.New(remote.Options{
		BaseURL:   service,
		UserAgent: "airlift/" + version,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A session cookie unlocks private folders; without credentials the
	// listing still works for public ones.
	if creds.Username != "" && creds.Password != "" {
		if _, err := client.Login(ctx, remote.Credentials{
			Username: creds.Username,
			Password: creds.Password,
		}); err != nil {
			return err
		}
	}

	entries, err := client.ListFolder(ctx, hash, subfolders)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "folder is empty")
		return nil
	}

	for _, e := range entries {
		size := "-"
		if !e.IsDir() {
			size = ui.FormatBytes(e.Size)
		}
		fmt.Fprintf(os.Stdout, "%-4s  %10s  %-36s  %s\n", e.Type, size, e.Name, e.Hash)
	}
	return nil
}
