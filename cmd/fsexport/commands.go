package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/fsexport"
	"github.com/taigrr/fsexport/internal/codec"
	"github.com/taigrr/fsexport/internal/filesystem"
	"github.com/taigrr/fsexport/internal/loader"
	"go.uber.org/zap"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		pick      []string
		transform string
		compact   bool
	)

	cmd := &cobra.Command{
		Use:   "export DIR",
		Short: "Print a directory tree as JSON",
		Long: `Export walks DIR depth-first. Files whose extension is picked and has a
loader (json, js, plus any enabled with --loaders) become their loaded
value; other picked extensions become their text. Directories nest under
their full name, files under their name without the extension.`,
		Example: `fsexport export ./config
fsexport export ./content --pick md --pick txt --transform ./upper.js`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := fsexport.ExportParams{Root: args[0]}
			if cmd.Flags().Changed("pick") {
				params.Pick = pick
			}
			if transform != "" {
				fn, err := a.loadFunc(transform)
				if err != nil {
					return err
				}
				params.Transform = fn.Call
			}

			tree, err := a.fsx.Export(params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tree, !compact)
		},
	}

	cmd.Flags().StringSliceVarP(&pick, "pick", "p", nil, "extensions to include (default js,json)")
	cmd.Flags().StringVarP(&transform, "transform", "t", "", "module file whose exported function is applied to every value")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "print JSON on one line")
	return cmd
}

func newPassCmd(a *app) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "pass DIR [INITIAL]",
		Short: "Thread a value through every module in a directory",
		Long: `Pass calls the function exported by each module file directly inside
DIR, in name order, feeding each result to the next. INITIAL is parsed
as JSON and falls back to a plain string.`,
		Example: `fsexport pass ./steps 0
fsexport pass ./middleware '{"path": "/"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var initial any
			if len(args) > 1 {
				initial = parseLiteral(args[1])
			}

			result, err := a.fsx.Pass(args[0], initial)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result, !compact)
		},
	}

	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "print JSON on one line")
	return cmd
}

func newReadJSONCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-json FILE",
		Short: "Parse a JSON file and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.fsx.ReadJSON(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v, true)
		},
	}
}

func newWriteJSONCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write-json FILE [JSON]",
		Short: "Validate JSON from an argument or stdin and write it to a file",
		Example: `fsexport write-json out/config.json '{"port": 8080}'
cat config.json | fsexport write-json out/config.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) > 1 {
				data = []byte(args[1])
			} else {
				var err error
				if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			v, err := codec.Parse(data)
			if err != nil {
				return err
			}
			if err := a.fsx.WriteJSON(args[0], v); err != nil {
				return err
			}
			a.log.Info("json written", zap.String("path", args[0]))
			return nil
		},
	}
}

func newExistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists PATH",
		Short: "Print whether a path exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.fsx.PathExists(args[0]))
			return err
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls DIR",
		Short: "List a directory in name order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.fsx.ListDirectory(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				if !long {
					fmt.Fprintln(out, name)
					continue
				}
				info, err := a.fsx.Stat(filepath.Join(args[0], name))
				if err != nil {
					return err
				}
				if info.IsDirectory {
					name += "/"
				}
				fmt.Fprintf(out, "%10d  %s\n", info.Size, name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "show sizes and mark directories")
	return cmd
}

// loadFunc loads a single module file and returns its exported function.
func (a *app) loadFunc(path string) (*loader.Func, error) {
	reg := loader.NewRegistry(loader.Options{EvalTimeout: a.cfg.EvalTimeout, Logger: a.log})
	if err := reg.Enable(a.cfg.Loaders...); err != nil {
		return nil, err
	}

	src, err := filesystem.New("").ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	v, err := reg.Load(path, ext, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load transform %s: %w", path, err)
	}

	fn, ok := v.(*loader.Func)
	if !ok {
		return nil, fmt.Errorf("transform %s does not export a function", path)
	}
	return fn, nil
}

// parseLiteral reads s as JSON, or as a plain string when it is not JSON.
func parseLiteral(s string) any {
	v, err := codec.Parse([]byte(s))
	if err != nil {
		return s
	}
	return v
}

func printJSON(w io.Writer, v any, pretty bool) error {
	data, err := codec.Stringify(v, pretty)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if !pretty {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}
