package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"meetupsplit/adapter/rss"
	"meetupsplit/internal/config"
	"meetupsplit/internal/helper"
)

// Check classifies a single feed without touching any files.
func Check(args []string) error {
	return check(context.Background(), args, os.Stdout)
}

func check(ctx context.Context, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("check", flag.ContinueOnError)
	var feedURL string
	var year int
	fset.StringVar(&feedURL, "url", "", "feed URL")
	fset.IntVar(&year, "year", 0, "target year (default TARGET_YEAR)")
	if err := fset.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(feedURL) == "" {
		return fmt.Errorf("--url is required")
	}
	if err := helper.IsValidURL(feedURL); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if year == 0 {
		year = cfg.TargetYear
	}

	data, err := rss.NewHTTPFetcher(cfg.HTTPTimeout, cfg.UserAgent).Fetch(ctx, feedURL)
	if err != nil {
		return err
	}
	m, err := rss.Classify(data, year)
	if err != nil {
		return err
	}

	if m.Matched {
		fmt.Fprintf(out, "MATCH - pubDate year %d (pubDate tags: %d, parsed: %d)\n", year, m.Seen, m.Parsed)
	} else {
		fmt.Fprintf(out, "NO-MATCH - no pubDate with year %d (pubDate tags: %d, parsed: %d)\n", year, m.Seen, m.Parsed)
	}
	return nil
}
