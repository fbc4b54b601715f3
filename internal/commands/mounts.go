package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// newMountsCmd prints the resolved drive mount table.
func newMountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mounts",
		Short: "Show the Windows drive to mount point table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getContext()

			fmt.Printf("automount root: %s\n", ctx.Config.Mounts.Root)

			table := ctx.Conv.Mounts()
			letters := make([]string, 0, len(table))
			for letter := range table {
				letters = append(letters, letter)
			}
			sort.Strings(letters)

			for _, letter := range letters {
				fmt.Printf("%s: -> %s\n", letter, table[letter])
			}
			return nil
		},
	}
}
