package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/clw/clarion/codebase"
	"github.com/dhamidi/clw/config"
)

func newLSPCmd() *cobra.Command {
	var transport string
	var addr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the Language Server Protocol server.

The transport and address come from the workspace config unless given as
flags. The workspace root itself is taken from the client's initialize
request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Discover(wd)
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.LSP.Transport = transport
			}
			if addr != "" {
				cfg.LSP.Address = addr
			}
			if cfg.LSP.Address == "" && cfg.LSP.Transport != "stdio" {
				cfg.LSP.Address = config.DefaultAddress
			}
			server := codebase.NewLSPServer(version)
			return server.Run(cfg)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "stdio, tcp or websocket")
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on for tcp and websocket")

	return cmd
}
