package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/fsexport"
)

func handleExport(ctx context.Context, req *mcp.CallToolRequest, input ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
	tree, err := served.ExportAsync(fsexport.ExportParams{
		Root: strings.TrimSpace(input.Path),
		Pick: input.Pick,
	}).AwaitContext(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ExportOutput{}, err
	}

	return nil, ExportOutput{Tree: tree}, nil
}

func handlePass(ctx context.Context, req *mcp.CallToolRequest, input PassInput) (*mcp.CallToolResult, PassOutput, error) {
	value, err := served.PassAsync(strings.TrimSpace(input.Path), input.Initial).AwaitContext(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, PassOutput{}, err
	}

	return nil, PassOutput{Value: value}, nil
}

func handleReadJSON(ctx context.Context, req *mcp.CallToolRequest, input ReadJSONInput) (*mcp.CallToolResult, ReadJSONOutput, error) {
	value, err := served.ReadJSON(strings.TrimSpace(input.Path))
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ReadJSONOutput{}, err
	}

	return nil, ReadJSONOutput{Value: value}, nil
}

func handleWriteJSON(ctx context.Context, req *mcp.CallToolRequest, input WriteJSONInput) (*mcp.CallToolResult, WriteJSONOutput, error) {
	path := strings.TrimSpace(input.Path)
	if err := served.WriteJSON(path, input.Value); err != nil {
		return &mcp.CallToolResult{IsError: true}, WriteJSONOutput{Success: false, Path: path}, err
	}

	return nil, WriteJSONOutput{Success: true, Path: path}, nil
}

func handleExists(ctx context.Context, req *mcp.CallToolRequest, input ExistsInput) (*mcp.CallToolResult, ExistsOutput, error) {
	path := strings.TrimSpace(input.Path)
	return nil, ExistsOutput{Path: path, Exists: served.PathExists(path)}, nil
}

func handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		path = "."
	}

	names, err := served.ListDirectory(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{Path: path}, err
	}

	entries := make([]ListEntry, 0, len(names))
	for _, name := range names {
		info, err := served.Stat(filepath.Join(path, name))
		if err != nil {
			// dangling symlinks and entries removed mid-listing
			entries = append(entries, ListEntry{Name: name})
			continue
		}
		entries = append(entries, ListEntry{Name: name, IsDirectory: info.IsDirectory, Size: info.Size})
	}

	return nil, ListOutput{Path: path, Entries: entries}, nil
}
