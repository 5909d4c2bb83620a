package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/query"
	"github.com/rickgao/tablesync/internal/schema"
)

var queryCmd = &cli.Command{
	Name:      "query",
	Usage:     "Run a statement and print its result",
	ArgsUsage: "SQL [ARGS...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "output format: table or json",
			Value: "table",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() < 1 {
			return fmt.Errorf("expected SQL argument")
		}
		format := cctx.String("format")
		if format != "table" && format != "json" {
			return fmt.Errorf("unknown format %q", format)
		}

		e, err := setup(cctx)
		if err != nil {
			return err
		}
		defer e.Close()

		args := make([]any, 0, cctx.NArg()-1)
		for _, a := range cctx.Args().Tail() {
			args = append(args, a)
		}

		frame, err := query.NewRunner(e.pool, e.logger).Run(cctx.Context, cctx.Args().First(), args...)
		if err != nil {
			return err
		}
		if frame == nil {
			_, err = fmt.Fprintln(cctx.App.Writer, "OK")
			return err
		}
		if format == "json" {
			return writeJSON(cctx.App.Writer, frame)
		}
		return writeTable(cctx.App.Writer, frame)
	},
}

var columnsCmd = &cli.Command{
	Name:      "columns",
	Usage:     "List a table's columns and types",
	ArgsUsage: "TABLE",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expected exactly one TABLE argument")
		}
		table, err := database.ParseTableName(cctx.Args().First())
		if err != nil {
			return err
		}

		e, err := setup(cctx)
		if err != nil {
			return err
		}
		defer e.Close()

		cols, err := schema.Columns(cctx.Context, e.pool, table)
		if err != nil {
			return err
		}
		return writeColumns(cctx.App.Writer, cols)
	},
}
