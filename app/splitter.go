package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"meetupsplit/domain"
)

var separator = strings.Repeat("-", 72)

type Options struct {
	TargetYear  int
	SleepMin    time.Duration
	SleepMax    time.Duration
	SleepOnSkip bool

	Out      io.Writer       // progress lines; io.Discard if nil
	Sleeper  domain.Sleeper  // TimerSleeper if nil
	Recorder domain.Recorder // optional
}

// Result holds the three buckets. Every input record is in exactly one of
// With or Without; errored records are in Without and in Errors.
type Result struct {
	With    []domain.Meetup
	Without []domain.Meetup
	Errors  []domain.ErrorEntry
	Tally   domain.Tally
}

// Splitter classifies meetups one at a time, pausing between feed requests.
type Splitter struct {
	fetcher    domain.FeedFetcher
	classifier domain.FeedClassifier
	opts       Options

	randN func(n int64) int64
}

func NewSplitter(fetcher domain.FeedFetcher, classifier domain.FeedClassifier, opts Options) *Splitter {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Sleeper == nil {
		opts.Sleeper = TimerSleeper{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Splitter{fetcher: fetcher, classifier: classifier, opts: opts, randN: rand.Int64N}
}

// Run processes every record and returns the buckets. Per-record failures
// never stop the run; only a cancelled ctx does, in which case the partial
// result is discarded.
func (s *Splitter) Run(ctx context.Context, meetups []domain.Meetup) (Result, error) {
	total := len(meetups)
	res := Result{
		With:    make([]domain.Meetup, 0),
		Without: make([]domain.Meetup, 0),
		Errors:  make([]domain.ErrorEntry, 0),
		Tally:   domain.Tally{Total: total},
	}

	s.printf("Target pubDate year: %d\n", s.opts.TargetYear)
	s.printf("Total meetups to check: %d\n", total)
	s.printf("%s\n", separator)

	for i, m := range meetups {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		idx := i + 1
		label := m.Label(idx)
		prefix := fmt.Sprintf("%03d/%d [%s]", idx, total, label)

		if m.RSSURL == "" {
			s.fail(&res, m, label, prefix, domain.MissingURLError())
			s.printTally(res.Tally)
			if s.opts.SleepOnSkip {
				if err := s.pause(ctx, label); err != nil {
					return Result{}, err
				}
			}
			continue
		}

		s.printf("%s fetching RSS: %s\n", prefix, m.RSSURL)
		match, err := s.check(ctx, m.RSSURL)
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return Result{}, err
		}

		switch {
		case err != nil:
			s.fail(&res, m, label, prefix, domain.AsFeedError(err))
		case match.Matched:
			res.Tally.Processed++
			res.Tally.Matched++
			res.With = append(res.With, m)
			s.opts.Recorder.ObserveOutcome(domain.Matched, match, nil)
			s.printf("%s MATCH - pubDate year %d (pubDate tags: %d, parsed: %d)\n",
				prefix, s.opts.TargetYear, match.Seen, match.Parsed)
		default:
			res.Tally.Processed++
			res.Tally.NoMatch++
			res.Without = append(res.Without, m)
			s.opts.Recorder.ObserveOutcome(domain.Unmatched, match, nil)
			s.printf("%s NO-MATCH - no pubDate with year %d (pubDate tags: %d, parsed: %d)\n",
				prefix, s.opts.TargetYear, match.Seen, match.Parsed)
		}

		s.printTally(res.Tally)
		if err := s.pause(ctx, label); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func (s *Splitter) check(ctx context.Context, feedURL string) (domain.Match, error) {
	start := time.Now()
	data, err := s.fetcher.Fetch(ctx, feedURL)
	s.opts.Recorder.ObserveFetch(time.Since(start))
	if err != nil {
		return domain.Match{}, err
	}
	return s.classifier.Classify(data, s.opts.TargetYear)
}

// fail routes the record to Without and records the error.
func (s *Splitter) fail(res *Result, m domain.Meetup, label, prefix string, fe *domain.FeedError) {
	res.Tally.Processed++
	res.Tally.Errors++
	res.Without = append(res.Without, m)
	entry := domain.ErrorEntry{MeetupID: label, Error: fe.Error()}
	if fe.Kind != domain.KindMissingURL {
		entry.MeetupURLRSS = m.RSSURL
	}
	res.Errors = append(res.Errors, entry)
	s.opts.Recorder.ObserveOutcome(domain.Errored, domain.Match{}, fe)
	s.printf("%s ERROR - %s\n", prefix, fe.Error())
}

func (s *Splitter) printTally(t domain.Tally) {
	s.printf("%s\n%s\n", FormatTally(t), separator)
}

func (s *Splitter) pause(ctx context.Context, label string) error {
	d := s.delay()
	s.printf("[%s] sleeping %s ...\n", label, d)
	return s.opts.Sleeper.Sleep(ctx, d)
}

// delay picks a whole number of seconds in [SleepMin, SleepMax].
func (s *Splitter) delay() time.Duration {
	span := int64((s.opts.SleepMax - s.opts.SleepMin) / time.Second)
	if span <= 0 {
		return s.opts.SleepMin
	}
	return s.opts.SleepMin + time.Duration(s.randN(span+1))*time.Second
}

func (s *Splitter) printf(format string, args ...any) {
	fmt.Fprintf(s.opts.Out, format, args...)
}

func FormatTally(t domain.Tally) string {
	return fmt.Sprintf("TALLY processed %d/%d | MATCH %d | NO-MATCH %d | ERROR %d",
		t.Processed, t.Total, t.Matched, t.NoMatch, t.Errors)
}

// TimerSleeper sleeps for real, returning early if ctx is cancelled.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(time.Duration) {}
func (nopRecorder) ObserveOutcome(domain.Outcome, domain.Match, *domain.FeedError) {}
