package main

import "github.com/modelcontextprotocol/go-sdk/mcp"

type (
	// ExportInput contains parameters for exporting a directory tree.
	ExportInput struct {
		Path string   `json:"path" jsonschema:"Directory to export, relative to the served root"`
		Pick []string `json:"pick,omitempty" jsonschema:"Extensions to include without the dot (default: js, json)"`
	}

	// ExportOutput contains the exported tree.
	ExportOutput struct {
		Tree map[string]any `json:"tree"`
	}

	// PassInput contains parameters for threading a value through modules.
	PassInput struct {
		Path    string `json:"path" jsonschema:"Directory whose module files are applied in name order"`
		Initial any    `json:"initial,omitempty" jsonschema:"Initial value (default: null)"`
	}

	// PassOutput contains the value returned by the last module.
	PassOutput struct {
		Value any `json:"value"`
	}

	// ReadJSONInput contains parameters for reading a JSON file.
	ReadJSONInput struct {
		Path string `json:"path" jsonschema:"JSON file relative to the served root"`
	}

	// ReadJSONOutput contains the parsed file.
	ReadJSONOutput struct {
		Value any `json:"value"`
	}

	// WriteJSONInput contains parameters for writing a JSON file.
	WriteJSONInput struct {
		Path  string `json:"path" jsonschema:"JSON file relative to the served root; parent directories are created"`
		Value any    `json:"value" jsonschema:"Value to write"`
	}

	// WriteJSONOutput contains the result of writing a JSON file.
	WriteJSONOutput struct {
		Success bool   `json:"success"`
		Path    string `json:"path"`
	}

	// ExistsInput contains parameters for the existence check.
	ExistsInput struct {
		Path string `json:"path" jsonschema:"Path relative to the served root"`
	}

	// ExistsOutput reports whether the path exists.
	ExistsOutput struct {
		Path   string `json:"path"`
		Exists bool   `json:"exists"`
	}

	// ListInput contains parameters for listing a directory.
	ListInput struct {
		Path string `json:"path,omitempty" jsonschema:"Directory relative to the served root (default: the root)"`
	}

	// ListEntry describes one directory entry.
	ListEntry struct {
		Name        string `json:"name"`
		IsDirectory bool   `json:"isDirectory"`
		Size        int64  `json:"size"`
	}

	// ListOutput contains the entries of a directory in name order.
	ListOutput struct {
		Path    string      `json:"path"`
		Entries []ListEntry `json:"entries"`
	}
)

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export",
		Description: "Export a directory tree as one nested object. JSON files are parsed, JavaScript files contribute their module.exports, other picked extensions contribute their text. Keys are file names without extension; directories nest under their full name.",
	}, handleExport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pass",
		Description: "Thread a value through every module file directly inside a directory, in name order. Each module must export a function; its result feeds the next one.",
	}, handlePass)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_json",
		Description: "Read and parse a JSON file.",
	}, handleReadJSON)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "write_json",
		Description: "Write a value to a file as indented JSON, creating parent directories.",
	}, handleWriteJSON)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "exists",
		Description: "Check whether a path exists. Never fails; invalid paths report false.",
	}, handleExists)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list",
		Description: "List a directory in name order with sizes and directory markers.",
	}, handleList)
}
