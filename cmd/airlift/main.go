package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"airlift/internal/config"
	"airlift/internal/engine"
	"airlift/internal/event"
	"airlift/internal/filter"
	"airlift/internal/history"
	"airlift/internal/remote"
	"airlift/internal/stats"
	"airlift/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

var _ pflag.Value = (*filterFlag)(nil)

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing and run phases
func run() int {
	var (
		verbose     bool
		quiet       bool
		noProgress  bool
		hashesFlag  bool
		verifyFlag  bool
		copyLink    bool
		openLink    bool
		noHistory   bool
		showVersion bool
		filterFile  string
		minSizeStr  string
		maxSizeStr  string
		serviceURL  string
		accessStr   string
		configPath  string
		logFile     string
	)

	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "airlift [flags] <path>",
		Short: "Upload a file or folder tree to your file host, keeping its structure",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "airlift %s\n", version)
				return nil
			}

			source := args[0]

			// Load optional defaults file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}

			// Apply config defaults for flags not explicitly set on CLI.
			applyConfigDefaults(cmd, cfg.Defaults,
				&serviceURL, &accessStr, &verifyFlag, &hashesFlag, &noProgress)

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			// Load account credentials and destination identity.
			creds, err := config.LoadCredentials(configPath)
			if err != nil {
				return err
			}
			if err := creds.Validate(); err != nil {
				return fmt.Errorf("%w; run \"airlift configure\" first", err)
			}

			access, err := parseAccess(accessStr)
			if err != nil {
				return err
			}

			// Load filter file if specified.
			if filterFile != "" {
				if err := chain.LoadFile(filterFile); err != nil {
					return fmt.Errorf("load filter file: %w", err)
				}
			}

			// Parse size filters.
			if minSizeStr != "" {
				n, err := filter.ParseSize(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid --min-size: %w", err)
				}
				chain.SetMinSize(n)
			}
			if maxSizeStr != "" {
				n, err := filter.ParseSize(maxSizeStr)
				if err != nil {
					return fmt.Errorf("invalid --max-size: %w", err)
				}
				chain.SetMaxSize(n)
			}

			// Set up context with signal handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Create stats collector; upload bodies stream byte deltas into it.
			collector := stats.NewCollector()

			client, err := remote.New(remote.Options{
				BaseURL:   serviceURL,
				Access:    access,
				UserAgent: "airlift/" + version,
				Progress:  func(n int64) { collector.AddBytesUploaded(n) },
			})
			if err != nil {
				return err
			}

			// Create events channel.
			events := make(chan event.Event, 256)

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding to the presenter.
			presenterEvents := (<-chan event.Event)(events)
			if logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
							slog.Int64("size", ev.Size),
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						slog.LogAttrs(context.Background(), slog.LevelInfo, "airlift.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			// Create presenter.
			width, isTTY := ui.Terminal(os.Stderr.Fd())
			presenter := ui.NewPresenter(ui.Config{
				Writer:     os.Stdout,
				ErrWriter:  os.Stderr,
				Stats:      collector,
				Width:      width,
				IsTTY:      isTTY,
				Quiet:      quiet,
				NoProgress: noProgress,
			})

			// Verification reads the per-file records, so it implies tracking.
			trackHashes := hashesFlag || verifyFlag

			engineCfg := engine.Config{
				Client: client,
				Events: event.ChanSink(events),
				Stats:  collector,
				Source: source,
				Credentials: remote.Credentials{
					Username: creds.Username,
					Password: creds.Password,
				},
				Base: remote.Folder{
					Hash:   creds.BaseFolderHash,
					AddKey: creds.FolderKey,
				},
				TrackHashes: trackHashes,
			}

			// Only set filter if it has rules/size constraints.
			if !chain.Empty() {
				engineCfg.Filter = chain
			}

			slog.Debug("starting upload",
				"source", source,
				"base", creds.BaseFolderHash,
				"service", serviceURL,
				"access", access,
				"verify", verifyFlag,
			)

			// Run presenter in background, engine in foreground.
			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			startedAt := time.Now()
			result := engine.Run(ctx, engineCfg)

			var verifyResult engine.VerifyResult
			if verifyFlag && result.Err == nil {
				verifyResult = engine.Verify(ctx, client, engine.VerifyConfig{
					Records: result.Uploaded,
					Events:  event.ChanSink(events),
					Stats:   collector,
				})
			}

			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				summary := presenter.Summary()
				if summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if hashesFlag {
				for _, rec := range result.Uploaded {
					fmt.Fprintf(os.Stdout, "%s  %s\n", rec.ID, rec.Path)
				}
			}

			// The share link is the run's product; it prints even with --quiet.
			if result.Root.Hash != "" {
				link := client.ShareURL(result.Root.Hash)
				fmt.Fprintln(os.Stdout, link)
				if copyLink {
					if cErr := clipboard.WriteAll(link); cErr != nil {
						slog.Warn("failed to copy link to clipboard", "error", cErr)
					}
				}
				if openLink {
					if oErr := open.Run(link); oErr != nil {
						slog.Warn("failed to open link", "error", oErr)
					}
				}
			}

			if !noHistory {
				appendHistory(source, creds.BaseFolderHash, startedAt, result)
			}

			if result.Err != nil {
				slog.Error("upload failed", "error", result.Err)
				if result.FilesUploaded > 0 {
					return &exitError{code: 1} // partial failure
				}
				return &exitError{code: 2} // total failure
			}
			if len(result.Failures) > 0 || verifyResult.Failed > 0 {
				return &exitError{code: 1}
			}

			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().
		BoolVarP(&quiet, "quiet", "q", false, "suppress progress output (the share link still prints)")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress display")
	rootCmd.Flags().
		BoolVar(&hashesFlag, "hashes", false, "request content hashes and print them after the upload")
	rootCmd.Flags().
		BoolVar(&verifyFlag, "verify", false, "verify uploads against the remote listing")
	rootCmd.Flags().BoolVar(&copyLink, "copy-link", false, "copy the share link to the clipboard")
	rootCmd.Flags().BoolVar(&openLink, "open", false, "open the share link in a browser")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false, "don't record this run in the history journal")

	// Filter flags use a custom pflag.Value so CLI ordering is preserved.
	rootCmd.Flags().
		Var(&filterFlag{chain: chain, include: false}, "exclude", "exclude files matching PATTERN (repeatable)")
	rootCmd.Flags().
		Var(&filterFlag{chain: chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	rootCmd.Flags().StringVar(&filterFile, "filter", "", "read filter rules from FILE")
	rootCmd.Flags().
		StringVar(&minSizeStr, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	rootCmd.Flags().
		StringVar(&maxSizeStr, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")

	rootCmd.Flags().StringVar(&serviceURL, "service", remote.DefaultBaseURL, "service base URL")
	rootCmd.Flags().
		StringVar(&accessStr, "access", string(remote.AccessLink), "access level for created folders (LINK or PRIVATE)")
	rootCmd.Flags().
		StringVar(&configPath, "config", "", "credentials file (default: XDG config dir)")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")

	// Register subcommands.
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// parseAccess validates the --access value.
func parseAccess(s string) (remote.Access, error) {
	switch remote.Access(s) {
	case remote.AccessLink, remote.AccessPrivate:
		return remote.Access(s), nil
	default:
		return "", fmt.Errorf("invalid --access %q (use LINK or PRIVATE)", s)
	}
}

// appendHistory records the finished run in the journal, best-effort.
func appendHistory(source, baseHash string, startedAt time.Time, result engine.Result) {
	store, err := history.Open()
	if err != nil {
		slog.Warn("failed to open history journal", "error", err)
		return
	}
	defer store.Close()

	rec := history.Record{
		// Job key groups runs by configured destination, not by the
		// folder each run created.
		JobKey:        history.JobKey(source, baseHash),
		Source:        source,
		DestHash:      result.Root.Hash,
		StartedAt:     startedAt,
		Duration:      time.Since(startedAt),
		FilesUploaded: result.FilesUploaded,
		FilesFailed:   result.Stats.FilesFailed,
		Folders:       result.Stats.FoldersCreated,
		Bytes:         result.Stats.BytesUploaded,
		Success:       result.Success,
	}
	if err := store.Append(rec); err != nil {
		slog.Warn("failed to record run history", "error", err)
	}
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	service, access *string,
	verify, hashes, noProgress *bool,
) {
	if !cmd.Flags().Changed("service") && defaults.Service != nil {
		*service = *defaults.Service
	}
	if !cmd.Flags().Changed("access") && defaults.Access != nil {
		*access = *defaults.Access
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("hashes") && defaults.Hashes != nil {
		*hashes = *defaults.Hashes
	}
	if !cmd.Flags().Changed("no-progress") && defaults.NoProgress != nil {
		*noProgress = *defaults.NoProgress
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
