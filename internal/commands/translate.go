package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existentialmutt/wsl-build/internal/pathconv"
)

// newTranslateCmd converts paths between Windows and subsystem syntax.
func newTranslateCmd() *cobra.Command {
	var (
		toWindows bool
		toUnix    bool
		list      bool
	)

	cmd := &cobra.Command{
		Use:   "translate <path>...",
		Short: "Translate paths between Windows and subsystem syntax",
		Long: `Translate paths between Windows and subsystem syntax.

Without a direction flag the syntax is sniffed per argument (a leading "/"
means POSIX) and the path converts to the opposite form. Unrecognized paths
pass through unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := getContext().Conv

			for _, arg := range args {
				fmt.Println(translateOne(conv, arg, toWindows, toUnix, list))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&toWindows, "windows", "w", false, "Force translation to Windows syntax")
	cmd.Flags().BoolVarP(&toUnix, "unix", "u", false, "Force translation to subsystem syntax")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "Treat each argument as a path list")
	cmd.MarkFlagsMutuallyExclusive("windows", "unix")

	return cmd
}

func translateOne(conv *pathconv.Converter, value string, toWindows, toUnix, list bool) string {
	if list {
		unix, win := conv.ConvertList(value)
		return pick(value, unix, win, toWindows, toUnix)
	}
	unix, win := conv.Convert(value)
	return pick(value, unix, win, toWindows, toUnix)
}

func pick(value, unix, win string, toWindows, toUnix bool) string {
	switch {
	case toWindows:
		return win
	case toUnix:
		return unix
	case pathconv.Sniff(value) == pathconv.SyntaxPosix:
		return win
	default:
		return unix
	}
}
