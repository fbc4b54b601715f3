package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newEnvCmd previews the resolved environments without launching anything.
func newEnvCmd() *cobra.Command {
	var (
		sources sourceFlags
		name    string
	)

	cmd := &cobra.Command{
		Use:   "env [build-file]",
		Short: "Show the resolved subsystem and host environments for a target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getContext()

			target, err := loadTarget(ctx, args, name)
			if err != nil {
				return err
			}

			variables := sources.variables(ctx)
			resolved, misses := target.Env.Encode(variables, ctx.Conv)
			for _, m := range misses {
				ctx.Log.Warn("undefined variable", "name", m)
			}

			out := map[string]map[string]string{
				"subsystem": resolved.Subsystem,
				"host":      resolved.Host,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	sources.register(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "Build target name")

	return cmd
}
