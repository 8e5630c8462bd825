package main

import (
	"github.com/spf13/cobra"

	"github.com/spraakbanken/saldowsd/internal/app"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lexicon lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
				if err := c.cfg.Validate(); err != nil {
					return err
				}
			}
			return app.Serve(cmd.Context(), c.cfg, c.log)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides SERVER_PORT)")
	return cmd
}
