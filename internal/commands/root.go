// Package commands implements the wslbuild command-line interface.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/existentialmutt/wsl-build/internal/config"
	"github.com/existentialmutt/wsl-build/internal/mounts"
	"github.com/existentialmutt/wsl-build/internal/pathconv"
)

type appContext struct {
	Config *config.Config
	Conv   *pathconv.Converter
	Log    *slog.Logger
}

var (
	appCtx     *appContext
	verbose    bool
	configFile string
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wslbuild",
		Short: "Run Windows-authored build definitions inside WSL",
		Long: `wslbuild translates build definitions written against Windows paths
(including Sublime Text .sublime-build files with a wsl_exec target) into
commands that run inside a WSL distribution: path variables gain unix_*
counterparts, environment values convert per their /p /l /u /w flags, and
the assembled command is relayed through wsl.exe or run directly.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			appCtx, err = initContext()
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.config/wslbuild/config.toml)")

	rootCmd.AddCommand(
		newRunCmd(),
		newEnvCmd(),
		newTranslateCmd(),
		newMountsCmd(),
		newVersionCmd(version),
	)

	return rootCmd
}

// Execute runs the CLI and returns the process exit code. A failed build
// propagates the build's own exit code.
func Execute(version string) int {
	if err := NewRootCommand(version).Execute(); err != nil {
		var exitErr *buildExitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintln(os.Stderr, "wslbuild:", err)
		return 1
	}
	return 0
}

func initContext() (*appContext, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	table, err := mounts.Resolve(cfg)
	if err != nil {
		// Best effort: translation falls back to the automount root.
		log.Debug("mount detection failed", "error", err)
	}
	conv := pathconv.NewConverter(cfg.Mounts.Root, table)

	return &appContext{Config: cfg, Conv: conv, Log: log}, nil
}

func getContext() *appContext { return appCtx }

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wslbuild version %s\n", version)
		},
	}
}
