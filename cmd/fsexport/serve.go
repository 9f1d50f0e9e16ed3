package main

import (
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/taigrr/fsexport"
	"go.uber.org/zap"
)

// served is the root-confined FS the MCP tool handlers operate on.
var served *fsexport.FS

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [ROOT]",
		Short: "Run an MCP stdio server confined to ROOT",
		Long: `serve exposes export, pass, read_json, write_json, exists and list as
Model Context Protocol tools over stdio. Every path is relative to ROOT
(default: the current directory) and may not leave it.`,
		Example: `fsexport serve ~/project`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    a.runServer,
	}
}

func (a *app) runServer(cmd *cobra.Command, args []string) error {
	var root string
	if len(args) > 0 {
		root = args[0]
	} else {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	fsx, err := a.newFS(root)
	if err != nil {
		return err
	}
	served = fsx

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "fsexport",
		Version: version,
	}, nil)

	registerTools(server)

	a.log.Info("serving", zap.String("root", root), zap.String("version", version))
	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}
	return nil
}
