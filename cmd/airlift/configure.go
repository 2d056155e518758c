package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"airlift/internal/config"
	"airlift/internal/remote"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Log in and save credentials",
	Long: `Log in to the file host and write the credentials file.

The service answers a successful login with the account's base folder
identity (hash and upload key); uploads land in that folder unless the
saved values are overridden with --folder and --key. The file holds the
account password, so it is written with 0600 permissions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConfigure,
}

func init() {
	configureCmd.Flags().String("service", remote.DefaultBaseURL, "service base URL")
	configureCmd.Flags().String("user", "", "account username (skips the prompt)")
	configureCmd.Flags().String("folder", "", "base folder hash (overrides the login response)")
	configureCmd.Flags().String("key", "", "base folder key (overrides the login response)")
	configureCmd.Flags().String("config", "", "credentials file (default: XDG config dir)")
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	service, _ := cmd.Flags().GetString("service") //nolint:errcheck // flag name is hardcoded
	userFlag, _ := cmd.Flags().GetString("user")   //nolint:errcheck // flag name is hardcoded
	folder, _ := cmd.Flags().GetString("folder")   //nolint:errcheck // flag name is hardcoded
	key, _ := cmd.Flags().GetString("key")         //nolint:errcheck // flag name is hardcoded
	path, _ := cmd.Flags().GetString("config")     //nolint:errcheck // flag name is hardcoded

	username := userFlag
	if username == "" {
		fmt.Fprint(os.Stderr, "username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return errors.New("username is required")
	}

	fmt.Fprint(os.Stderr, "password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password := string(pw)
	if password == "" {
		return errors.New("password is required")
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

	session, err := client.Login(ctx, remote.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	creds := config.Credentials{
		Username:       username,
		Password:       password,
		BaseFolderHash: session.FolderHash,
		FolderKey:      session.FolderKey,
	}
	if folder != "" {
		creds.BaseFolderHash = folder
	}
	if key != "" {
		creds.FolderKey = key
	}

	if err := config.SaveCredentials(path, creds); err != nil {
		return err
	}

	if path == "" {
		path = config.CredentialsPath()
	}
	fmt.Fprintf(os.Stdout, "credentials saved to %s\n", path)
	fmt.Fprintf(os.Stdout, "base folder: %s\n", creds.BaseFolderHash)
	return nil
}
