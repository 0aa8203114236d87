package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyload/internal/logger"
	"github.com/samcharles93/plyload/pkg/ply"
)

func inspectCmd() *cli.Command {
	var (
		asJSON bool
		mmap   bool
	)
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header schema and data layout of a PLY file",
		ArgsUsage: "<file.ply>",
		Flags:     []cli.Flag{jsonFlag(&asJSON), mmapFlag(&mmap)},
		Action: func(ctx context.Context, c *cli.Command) error {
			applyOutputConfig(c, LoadConfig(), nil, &asJSON, &mmap)
			path := c.Args().First()
			if path == "" {
				return cli.Exit("error: missing PLY file argument", 2)
			}
			log := logger.FromContext(ctx)

			f, err := ply.Open(path, ply.WithLogger(log), ply.WithMmap(mmap))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			s := summarize(path, f)
			if asJSON {
				return writeJSON(os.Stdout, s)
			}
			printSummary(os.Stdout, s)
			return nil
		},
	}
}

func printSummary(w io.Writer, s fileSummary) {
	fmt.Fprintf(w, "File: %s\n", s.Path)
	fmt.Fprintf(w, "format: %s %s | data_offset=%d\n", s.Encoding, s.Version, s.DataOffset)
	for _, c := range s.Comments {
		fmt.Fprintf(w, "comment: %s\n", c)
	}
	for _, o := range s.ObjInfo {
		fmt.Fprintf(w, "obj_info: %s\n", o)
	}
	for _, e := range s.Elements {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "element %s: items=%d offset=%d properties=%d\n", e.Name, e.Count, e.Offset, len(e.Properties))
		for i, p := range e.Properties {
			typ := p.Type
			if p.ListType != "" {
				typ = fmt.Sprintf("list<%s,%s>", p.ListType, p.Type)
			}
			fmt.Fprintf(w, "  [%d] %-24s %-22s size=%s\n", i, p.Name, typ, formatBytes(p.Size))
		}
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
