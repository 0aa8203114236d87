package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/plyload/internal/logger"
	"github.com/samcharles93/plyload/pkg/ply"
)

func dumpCmd() *cli.Command {
	var (
		element string
		limit   int
		asJSON  bool
		mmap    bool
	)
	return &cli.Command{
		Name:      "dump",
		Usage:     "Materialize an element and print its first items",
		ArgsUsage: "<file.ply>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "element",
				Aliases:     []string{"e"},
				Usage:       "element to load",
				Value:       "vertex",
				Destination: &element,
			},
			&cli.StringSliceFlag{
				Name:    "property",
				Aliases: []string{"p"},
				Usage:   "property to load (repeatable, default all)",
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of items to print (0 = all)",
				Value:       10,
				Destination: &limit,
			},
			jsonFlag(&asJSON),
			mmapFlag(&mmap),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			applyOutputConfig(c, LoadConfig(), &limit, &asJSON, &mmap)
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

			names := c.StringSlice("property")
			if err := f.Request(element, names); err != nil {
				return cli.Exit(fmt.Sprintf("error: request %s: %v", element, err), 1)
			}
			cols, err := loadColumns(f, element, names)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			e, _ := f.Element(element)
			n := int(e.Count())
			if limit > 0 && limit < n {
				n = limit
			}
			log.Debug("dumping element", "element", element, "items", n, "columns", len(cols))

			if asJSON {
				return writeJSON(os.Stdout, rows(cols, n))
			}
			printRows(os.Stdout, element, e.Count(), cols, n)
			return nil
		},
	}
}

// column is one materialized property split into per-item values.
type column struct {
	name  string
	list  bool
	items [][]float64
}

func loadColumns(f *ply.File, element string, names []string) ([]column, error) {
	e, ok := f.Element(element)
	if !ok {
		return nil, ply.ErrElementNotFound
	}
	var props []*ply.Property
	if len(names) == 0 {
		for _, p := range e.Properties() {
			if p.Materialized() {
				props = append(props, p)
			}
		}
	} else {
		for _, name := range names {
			p, ok := e.Property(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s", ply.ErrPropertyNotFound, element, name)
			}
			props = append(props, p)
		}
	}

	cols := make([]column, 0, len(props))
	for _, p := range props {
		vals, err := p.AsFloat64s()
		if err != nil {
			return nil, err
		}
		col := column{name: p.Name(), list: p.IsList()}
		if !p.IsList() {
			col.items = make([][]float64, len(vals))
			for i := range vals {
				col.items[i] = vals[i : i+1]
			}
		} else {
			lengths, err := p.Lengths()
			if err != nil {
				return nil, err
			}
			col.items = make([][]float64, len(lengths))
			off := 0
			for i, l := range lengths {
				if off+l > len(vals) {
					return nil, errors.New("list lengths exceed value buffer")
				}
				col.items[i] = vals[off : off+l]
				off += l
			}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func rows(cols []column, n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range n {
		row := make(map[string]any, len(cols))
		for _, c := range cols {
			if c.list {
				row[c.name] = c.items[i]
			} else {
				row[c.name] = c.items[i][0]
			}
		}
		out[i] = row
	}
	return out
}

func printRows(w io.Writer, element string, total int64, cols []column, n int) {
	fmt.Fprintf(w, "show %d of %d items of element: %s\n", n, total, element)
	head := make([]string, len(cols))
	for i, c := range cols {
		head[i] = c.name
	}
	fmt.Fprintln(w, strings.Join(head, "\t"))
	for i := range n {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = formatItem(c.items[i], c.list)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func formatItem(vals []float64, list bool) string {
	parts := make([]string, 0, len(vals)+1)
	if list {
		parts = append(parts, strconv.Itoa(len(vals)))
	}
	for _, v := range vals {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}
