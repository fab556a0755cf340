package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"meetupsplit/adapter/jsonfile"
	"meetupsplit/adapter/rss"
	"meetupsplit/app"
	"meetupsplit/internal/config"
	"meetupsplit/internal/metrics"
)

func Split(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return split(ctx, args, os.Stdout)
}

func split(ctx context.Context, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("split", flag.ContinueOnError)
	if err := fset.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if fset.NArg() > 0 {
		cfg.InputPath = fset.Arg(0)
	}

	meetups, err := jsonfile.LoadMeetups(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("load meetups: %w", err)
	}

	m := metrics.New()
	splitter := app.NewSplitter(rss.NewHTTPFetcher(cfg.HTTPTimeout, cfg.UserAgent), rss.Classifier{}, app.Options{
		TargetYear:  cfg.TargetYear,
		SleepMin:    cfg.SleepMin,
		SleepMax:    cfg.SleepMax,
		SleepOnSkip: cfg.SleepOnSkip,
		Out:         out,
		Recorder:    m,
	})

	res, err := splitter.Run(ctx, meetups)
	if err != nil {
		return fmt.Errorf("run stopped, nothing written: %w", err)
	}

	if err := jsonfile.WriteMeetups(cfg.OutWith, res.With); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutWith, err)
	}
	if err := jsonfile.WriteMeetups(cfg.OutWithout, res.Without); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutWithout, err)
	}
	if err := jsonfile.WriteErrors(cfg.OutErrors, res.Errors); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutErrors, err)
	}

	fmt.Fprintln(out, "\nFINAL:")
	fmt.Fprintln(out, app.FormatTally(res.Tally))
	fmt.Fprintf(out, "Wrote: %s\n", cfg.OutWith)
	fmt.Fprintf(out, "Wrote: %s\n", cfg.OutWithout)
	fmt.Fprintf(out, "Wrote: %s\n", cfg.OutErrors)

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Printf("write metrics: %v", err)
		}
	}
	return nil
}
