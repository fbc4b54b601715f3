package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/existentialmutt/wsl-build/internal/allowlist"
	"github.com/existentialmutt/wsl-build/internal/buildspec"
	"github.com/existentialmutt/wsl-build/internal/config"
	"github.com/existentialmutt/wsl-build/internal/interop"
	"github.com/existentialmutt/wsl-build/internal/invoke"
	"github.com/existentialmutt/wsl-build/internal/vars"
)

// sourceFlags feed the editor variable set ($file, $folder, $project, ...).
type sourceFlags struct {
	file    string
	folder  string
	project string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "file", "", "Active source file ($file)")
	cmd.Flags().StringVar(&s.folder, "folder", "", "Project folder ($folder, defaults to the file's directory)")
	cmd.Flags().StringVar(&s.project, "project", "", "Project file ($project)")
}

func (s *sourceFlags) variables(ctx *appContext) vars.Set {
	variables := vars.Source{
		File:        s.file,
		Folder:      s.folder,
		ProjectFile: s.project,
	}.Extract()
	variables.AddUnixVariants(ctx.Conv)
	return variables
}

// buildExitError carries a failed build's exit code up to Execute.
type buildExitError struct {
	code int
}

func (e *buildExitError) Error() string {
	return fmt.Sprintf("build exited with code %d", e.code)
}

func newRunCmd() *cobra.Command {
	var (
		sources sourceFlags
		name    string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "run [build-file]",
		Short: "Assemble and launch a build target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getContext()

			target, err := loadTarget(ctx, args, name)
			if err != nil {
				return err
			}

			inv := invoke.Assemble(target, sources.variables(ctx), ctx.Conv, ctx.Config.ForwardedEnv(nil))
			for _, w := range inv.Warnings {
				ctx.Log.Warn(w)
			}

			lr, err := allowlist.Load(config.Dir())
			if err != nil {
				return err
			}
			if err := lr.Check(inv.Command); err != nil {
				return err
			}

			if dryRun {
				data, _ := json.MarshalIndent(inv, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			info, err := interop.Detect()
			if err != nil {
				return err
			}
			ctx.Log.Debug("detected environment", "mode", info.Mode.String(), "distro", info.Distro)

			launcher := &invoke.ExecLauncher{
				Info:   info,
				Distro: ctx.Config.Subsystem.Distro,
			}
			handle, err := launcher.Launch(cmd.Context(), inv)
			if err != nil {
				return err
			}
			res, err := handle.Wait()
			if err != nil {
				return err
			}
			if res.ExitCode != 0 {
				return &buildExitError{code: res.ExitCode}
			}
			return nil
		},
	}

	sources.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "Build target name (required with multiple targets)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the assembled invocation as JSON instead of launching")

	return cmd
}

// loadTarget resolves the build file path and selects one target from it.
func loadTarget(ctx *appContext, args []string, name string) (*buildspec.Target, error) {
	path, err := buildFilePath(ctx, args)
	if err != nil {
		return nil, err
	}
	ctx.Log.Debug("loading build file", "path", path)

	targets, err := buildspec.Load(path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = ctx.Config.Defaults.Target
	}
	return buildspec.Select(targets, name)
}

func buildFilePath(ctx *appContext, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if ctx.Config.Defaults.File != "" {
		return ctx.Config.Defaults.File, nil
	}

	candidates := []string{"wslbuild.yml", "wslbuild.yaml"}
	if matches, _ := filepath.Glob("*.sublime-build"); len(matches) > 0 {
		candidates = append(candidates, matches...)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", zerr.New("no build file found; pass one as an argument")
}
