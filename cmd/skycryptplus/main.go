package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"skycryptplus/internal/config"
	apperrors "skycryptplus/internal/errors"
	"skycryptplus/internal/host"
	"skycryptplus/internal/logging"
	"skycryptplus/internal/prefs"
	"skycryptplus/internal/ui"
	"skycryptplus/internal/update"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultLauncher())
	stop()
	os.Exit(code)
}

// launcher holds the pieces of startup that tests replace.
type launcher struct {
	storeOptions []prefs.Option
	runOptions   ui.RunOptions
	runSetup     func(*prefs.Store, ui.RunOptions) (ui.SetupResult, error)
	runShell     func(context.Context, *prefs.Store, *host.Bridge, host.Window, ui.ShellOptions, ui.RunOptions) error
}

func defaultLauncher() launcher {
	return launcher{
		runOptions: ui.RunOptions{AltScreen: true},
		runSetup:   ui.RunSetup,
		runShell:   ui.RunShell,
	}
}

// run parses flags, brings up settings and logging, then launches the app.
// It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, l launcher) int {
	fs := flag.NewFlagSet("skycryptplus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	versionFlag := fs.Bool("version", false, "Print version information and exit")
	debugFlag := fs.Bool("debug", false, "Enable debug logging (or set SKYCRYPT_DEBUG=true)")
	skipUpdateFlag := fs.Bool("skip-update-check", false, "Skip the background update check (or set SKYCRYPT_SKIP_UPDATE_CHECK=true)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		printVersion(stdout)
		return 0
	}

	if err := config.Initialize(); err != nil {
		ui.RenderError(stderr, apperrors.New(apperrors.CodeConfigurationError, "load settings", err))
		return 1
	}

	overrides := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			overrides[config.KeyDebug] = *debugFlag
		case "skip-update-check":
			overrides[config.KeySkipUpdateCheck] = *skipUpdateFlag
		}
	})
	if err := config.ApplyOverrides(overrides); err != nil {
		ui.RenderError(stderr, apperrors.New(apperrors.CodeConfigurationError, "apply flags", err))
		return 1
	}

	if err := logging.Init(logging.Options{
		Path:    config.GetString(config.KeyLogPath),
		MaxSize: int64(config.GetInt(config.KeyLogMaxSizeMB)) * 1024 * 1024,
		Debug:   config.GetBool(config.KeyDebug),
	}); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: %v (logging to %s)\n", err, logging.Path())
	}
	defer logging.Close()

	if err := launch(ctx, l); err != nil {
		logging.Criticalf("Startup failed: %v", err)
		ui.RenderError(stderr, err)
		return 1
	}
	return 0
}

// launch prepares the preference file, runs setup on first start and then
// the shell.
func launch(ctx context.Context, l launcher) error {
	storeOpts := append([]prefs.Option{
		prefs.WithDir(config.GetString(config.KeyPrefsDir)),
		prefs.WithAppVersion(Version),
	}, l.storeOptions...)
	store := prefs.NewStore(storeOpts...)
	logging.Infof("Preferences at %s", store.Path())

	if imported, err := store.ImportLegacy(); err == nil && imported {
		logging.Infof("Imported preferences from an earlier install")
	}
	if _, err := store.MigrateVersion(Version); err != nil {
		logging.Warnf("Continuing without version migration: %v", err)
	}

	if _, ok := store.Load(); !ok {
		res, err := l.runSetup(store, l.runOptions)
		if err != nil {
			return err
		}
		if res.Cancelled {
			logging.Infof("Setup cancelled")
			return nil
		}
	}

	window := ui.NewTerminalWindow("", logging.Default())
	bridge := host.NewBridge(store, window, host.WithSiteURL(config.GetString(config.KeySiteURL)))
	if err := window.Load(bridge.CurrentURL()); err != nil {
		return apperrors.New(apperrors.CodeStartupFailed, "open stats page", err)
	}

	var pending *update.Pending
	if config.GetBool(config.KeySkipUpdateCheck) {
		logging.Infof("Update check skipped")
	} else {
		checker := update.NewChecker(
			config.GetString(config.KeyUpdateOwner),
			config.GetString(config.KeyUpdateRepo),
			update.WithTimeout(config.GetDuration(config.KeyUpdateTimeout)),
			update.WithDelay(config.GetDuration(config.KeyUpdateDelay)),
		)
		pending = checker.CheckAsync(ctx, Version, nil)
	}

	return l.runShell(ctx, store, bridge, window, ui.ShellOptions{
		Version: Version,
		Pending: pending,
	}, l.runOptions)
}
