package main

import (
	"github.com/caasmo/actiondispatch"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the HTTP server and dispatch requests until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, srv, err := actiondispatch.NewFromFile(*configPath, classOptions()...)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
