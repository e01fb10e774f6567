package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/config"
	"github.com/JonMunkholm/tcgmatch/internal/core"
	"github.com/JonMunkholm/tcgmatch/internal/logging"
	"github.com/JonMunkholm/tcgmatch/internal/storage"
)

const defaultOutputPath = "tcgplayer_upload.csv"

type convertFlags struct {
	output      string
	failures    string
	layout      string
	sqlitePath  string
	databaseURL string
	errors      int
}

func newConvertCommand() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <input.csv>",
		Short: "Convert a collection export into a marketplace import file",
		Long: "Convert resolves every row of a collection export against the card catalog\n" +
			"and writes the marketplace import file. Use -o - to write it to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", defaultOutputPath, "Output file path, or - for stdout")
	cmd.Flags().StringVar(&flags.failures, "failures", "", "Write rows that could not be converted to this path")
	cmd.Flags().StringVar(&flags.layout, "layout", string(core.LayoutFull), "Output layout: full, sku or quick")
	cmd.Flags().StringVar(&flags.sqlitePath, "sqlite", "", "Read the catalog from this SQLite snapshot")
	cmd.Flags().StringVar(&flags.databaseURL, "database-url", "", "Read the catalog from this PostgreSQL database")
	cmd.Flags().IntVar(&flags.errors, "errors", core.DefaultErrorSample, "Number of failure messages to print")
	cmd.MarkFlagsMutuallyExclusive("sqlite", "database-url")

	return cmd
}

func runConvert(cmd *cobra.Command, inputPath string, flags convertFlags) error {
	layout, err := core.ParseLayout(flags.layout)
	if err != nil {
		return err
	}

	cfg, err := config.Load(func(c *config.Config) {
		switch {
		case flags.sqlitePath != "":
			c.Database.Driver = config.DriverSQLite
			c.Database.SQLitePath = flags.sqlitePath
		case flags.databaseURL != "":
			c.Database.Driver = config.DriverPostgres
			c.Database.URL = flags.databaseURL
		}
	})
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	ctx := cmd.Context()
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	service := core.NewService(catalog.NewGateway(store), cfg.Convert)
	res, err := service.Convert(ctx, input, core.Options{
		Layout:          layout,
		IncludeFailures: flags.failures != "",
		ErrorSample:     flags.errors,
	})
	if err != nil {
		if core.IsUserFacing(err) {
			return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if flags.output == "-" {
		if _, err := out.Write(res.Output); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		// Keep stdout a clean CSV; the summary goes to stderr.
		out = cmd.ErrOrStderr()
	} else if err := writeFile(flags.output, res.Output); err != nil {
		return err
	}
	if flags.failures != "" && res.Failures != nil {
		if err := writeFile(flags.failures, res.Failures); err != nil {
			return err
		}
	}

	printSummary(out, res, flags)
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, res *core.Result, flags convertFlags) {
	s := res.Summary
	rows := [][]string{
		{"Input rows", strconv.Itoa(s.InputRows)},
		{"Output rows", strconv.Itoa(s.MatchedRows)},
		{"Merged rows", strconv.Itoa(s.AggregatedRows)},
		{"Failed rows", strconv.Itoa(s.ErrorCount)},
		{"Layout", string(res.Layout)},
		{"Duration", res.Duration.Round(time.Millisecond).String()},
	}
	if flags.output != "-" {
		rows = append(rows, []string{"Output", flags.output})
	}
	if flags.failures != "" {
		rows = append(rows, []string{"Failures", flags.failures})
	}
	fmt.Fprintln(w, keyValueTable(rows))

	if len(s.SampleErrors) > 0 {
		fmt.Fprintln(w)
		errRows := make([][]string, len(s.SampleErrors))
		for i, msg := range s.SampleErrors {
			errRows[i] = []string{strconv.Itoa(i + 1), msg}
		}
		fmt.Fprintln(w, renderTable([]string{"#", "Failure"}, errRows, []columnAlignment{alignRight, alignLeft}))
	}
}
