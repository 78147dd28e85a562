package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stale/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Validate actions against the cache and execute the stale ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			parallelism, _ := cmd.Flags().GetInt("jobs")

			return c.app.Run(cmd.Context(), app.RunOptions{
				ConfigPath:  c.configPath(cmd),
				Targets:     args,
				Force:       force,
				Parallelism: parallelism,
			})
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Execute all targets regardless of cache state")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of concurrent actions (0 = number of CPUs)")

	return cmd
}
