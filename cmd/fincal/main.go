package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"

	"fincal/internal/amqp"
	"fincal/internal/backend"
	"fincal/internal/cli"
	"fincal/internal/core"
	"fincal/internal/events"
	"fincal/internal/format"
	applog "fincal/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentReport)

	cmd, args := "report", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg := cli.LoadAndValidateConfig(logger)
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	var publisher events.Publisher
	if cfg.AMQPURL != "" && bcfg.Type.IsLocal() && cmd != "report" && cmd != "list" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	res, err := backend.NewFactory(logger.Logger).CreateService(ctx, bcfg, publisher)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldBackend, cfg.DataBackend, applog.FieldError, err)
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	a := &app{out: os.Stdout, svc: res.Service, currency: res.Codec.Defaults().Currency, tag: format.TagFor(cfg.Locale)}
	switch cmd {
	case "report":
		err = a.report(ctx, args)
	case "list":
		err = a.list(ctx, args)
	case "add":
		err = a.add(ctx, args)
	case "delete":
		err = a.remove(ctx, args)
	default:
		err = fmt.Errorf("unknown command %q (want report, list, add or delete)", cmd)
	}
	if err != nil {
		logger.Error("Command failed", applog.FieldOperation, cmd, applog.FieldError, err)
		cancel()
		os.Exit(1)
	}
}

type app struct {
	out      io.Writer
	svc      *events.Service
	currency string
	tag      language.Tag
}

func (a *app) money(m core.Money) string {
	return format.Currency(m, a.currency, a.tag)
}

func (a *app) report(ctx context.Context, args []string) error {
	now := time.Now()
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	mode := fs.String("mode", string(core.ModeMonthly), "report mode: monthly or annual")
	year := fs.Int("year", now.Year(), "report year")
	month := fs.Int("month", int(now.Month()), "report month (1-12), monthly mode only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p := core.Period{Mode: core.Mode(*mode), Year: *year, Month: *month}
	if p.Mode == core.ModeAnnual {
		p.Month = 0
	}
	return a.run(ctx, p)
}

func (a *app) list(ctx context.Context, args []string) error {
	now := time.Now()
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", int(now.Month()), "month (1-12)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p := core.MonthlyPeriod(*year, *month)
	if err := p.Validate(); err != nil {
		return err
	}
	start, end := p.Range()
	evs, err := a.svc.List(ctx, start, end)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, e := range evs {
		amount := ""
		if e.Kind.IsFinancial() {
			amount = a.money(e.AmountOrZero())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Kind, e.Title, amount, e.Category)
	}
	return w.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "event title")
	date := fs.String("date", core.DateOf(time.Now()).String(), "date (YYYY-MM-DD)")
	kind := fs.String("type", string(core.KindExpense), "normal, income or expense")
	amount := fs.String("amount", "", "amount, financial events only")
	category := fs.String("category", "", "category")
	payment := fs.String("payment", "", "payment method")
	currency := fs.String("currency", "", "ISO currency code")
	notes := fs.String("notes", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d, err := core.ParseDate(*date)
	if err != nil {
		return err
	}
	var amt *core.Money
	if strings.TrimSpace(*amount) != "" {
		m, err := core.ParseAmount(*amount)
		if err != nil {
			return err
		}
		amt = &m
	}
	e, err := a.svc.Create(ctx, core.Event{
		Title:         *title,
		Description:   *notes,
		Date:          d,
		Kind:          core.Kind(*kind),
		Amount:        amt,
		Category:      *category,
		PaymentMethod: *payment,
		Currency:      *currency,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, e.ID)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "event id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("missing -id")
	}
	return a.svc.Delete(ctx, *id)
}

func (a *app) run(ctx context.Context, p core.Period) error {
	r, err := a.svc.Report(ctx, p)
	if err != nil {
		return err
	}
	money, tag := a.money, a.tag

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	title := fmt.Sprintf("%04d", p.Year)
	if p.Mode == core.ModeMonthly {
		title = fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	}
	fmt.Fprintf(w, "Report %s\n\n", title)
	fmt.Fprintf(w, "Income\t%s\n", money(r.Stats.TotalIncome))
	fmt.Fprintf(w, "Expenses\t%s\n", money(r.Stats.TotalExpenses))
	fmt.Fprintf(w, "Balance\t%s\n", money(r.Stats.Balance))

	printBreakdown(w, "Income by category", r.IncomeBreakdown, money, tag)
	printBreakdown(w, "Expenses by category", r.ExpenseBreakdown, money, tag)

	fmt.Fprintf(w, "\nTrend\tIncome\tExpenses\n")
	for _, b := range r.Stats.Trend {
		if b.Income.Cents == 0 && b.Expenses.Cents == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Label, money(b.Income), money(b.Expenses))
	}

	if len(r.Recent) > 0 {
		fmt.Fprintf(w, "\nRecent transactions\n")
		for _, e := range r.Recent {
			sign := "-"
			if e.Kind == core.KindIncome {
				sign = "+"
			}
			fmt.Fprintf(w, "%s\t%s\t%s%s\t%s\n", e.Date, e.Title, sign, money(e.AmountOrZero()), e.Category)
		}
	}
	if len(r.Upcoming) > 0 {
		fmt.Fprintf(w, "\nUpcoming\n")
		for _, e := range r.Upcoming {
			fmt.Fprintf(w, "%s\t%s\n", e.Date, e.Title)
		}
	}
	return w.Flush()
}

func printBreakdown(w io.Writer, heading string, rows []core.CategoryShare, money func(core.Money) string, tag language.Tag) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", heading)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Name, money(row.Amount), format.Percent(row.Percent, tag))
	}
}
