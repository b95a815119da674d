// cmd/viewctl/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/andresuchdata/workshop-dashboard/internal/filesource"
	"github.com/andresuchdata/workshop-dashboard/internal/repository"
	"github.com/andresuchdata/workshop-dashboard/internal/repository/postgres"
	"github.com/andresuchdata/workshop-dashboard/internal/service"
	"github.com/andresuchdata/workshop-dashboard/internal/view"
	"github.com/andresuchdata/workshop-dashboard/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "viewctl",
		Usage: "Render the account and sales dashboard views from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print a view as an aligned table",
				Flags:  viewFlags(),
				Action: runShow,
			},
			{
				Name:  "export",
				Usage: "Write a view to an .xlsx workbook",
				Flags: append(viewFlags(), &cli.StringFlag{
					Name:     "out",
					Usage:    "Output .xlsx path",
					Required: true,
				}),
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func viewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "kind", Value: string(domain.KindAccount), Usage: "account or sales"},
		&cli.StringFlag{Name: "file", Usage: "Read records from an .xlsx or .csv export"},
		&cli.StringFlag{Name: "db-url", Usage: "Database connection string", EnvVars: []string{"DATABASE_URL"}},
		&cli.StringFlag{Name: "group-by", Value: string(domain.GroupByNone), Usage: "none, branch, salesRep or workshopType"},
		&cli.StringFlag{Name: "search", Usage: "Free-text search over the ungrouped rows"},
		&cli.StringFlag{Name: "start", Usage: "Range start (YYYY-MM-DD for account, MM-YYYY for sales)"},
		&cli.StringFlag{Name: "end", Usage: "Range end, inclusive"},
		&cli.StringFlag{Name: "locale", Value: "en", Usage: "Currency locale"},
		&cli.StringFlag{Name: "symbol", Usage: "Currency symbol"},
		&cli.BoolFlag{Name: "queue", Usage: "Also print the upload queue"},
	}
}

func runShow(c *cli.Context) error {
	v, err := buildView(c)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "%s (%d rows)\n", v.Title, v.RowCount)
	if err := printTable(out, labels(v.Columns), v.Table); err != nil {
		return err
	}
	if c.Bool("queue") {
		fmt.Fprintln(out, "\nUploaded files")
		if err := printTable(out, labels(v.QueueColumns), v.QueueTable); err != nil {
			return err
		}
	}
	for _, failure := range v.Failures {
		fmt.Fprintf(out, "\nwarning: %s\n", failure.Message)
	}
	return nil
}

// buildView mounts a controller over the chosen source and replays the
// flags as filter changes in the order a user would make them.
func buildView(c *cli.Context) (view.View, error) {
	kind, err := domain.ParseKind(c.String("kind"))
	if err != nil {
		return view.View{}, err
	}
	desc := domain.MustDescribe(kind)

	records, queue, closeFn, err := openSource(c, kind)
	if err != nil {
		return view.View{}, err
	}
	defer closeFn()

	ctrl := view.NewController(desc, view.Options{
		Session: domain.Session{User: os.Getenv("USER")},
		Records: service.NewRecordService(records, nil),
		Queue:   service.NewQueueService(queue, nil),
		Money:   view.NewCurrencyFormatter(c.String("locale"), c.String("symbol")),
	})

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	v := ctrl.Mount(ctx)

	changes := []domain.FilterChange{
		{Control: domain.ControlStart, Value: c.String("start")},
		{Control: domain.ControlEnd, Value: c.String("end")},
		{Control: domain.ControlGroupBy, Value: c.String("group-by")},
		{Control: domain.ControlSearch, Value: c.String("search")},
	}
	for _, change := range changes {
		if change.Value == "" && change.Control != domain.ControlGroupBy {
			continue
		}
		if v, err = ctrl.Apply(ctx, change); err != nil {
			return v, fmt.Errorf("--%s: %w", flagName(change.Control), err)
		}
	}
	return v, nil
}

func openSource(c *cli.Context, kind domain.Kind) (repository.RecordRepository, repository.QueueRepository, func(), error) {
	switch {
	case c.String("file") != "":
		src, err := filesource.Open(kind, c.String("file"))
		if err != nil {
			return nil, nil, nil, err
		}
		return src, src, func() {}, nil
	case c.String("db-url") != "":
		db, err := postgres.Open("pgx", c.String("db-url"), 4)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewRecordRepository(db), postgres.NewQueueRepository(db), func() { _ = db.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("either --file or --db-url is required")
}

func flagName(control domain.FilterControl) string {
	switch control {
	case domain.ControlGroupBy:
		return "group-by"
	case domain.ControlSearch:
		return "search"
	}
	return string(control)
}

func labels[R any](cols []view.Column[R]) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = col.Label
	}
	return out
}

func printTable(w io.Writer, header []string, table [][]view.Cell) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range table {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell.Display
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
