package domain

import (
	"context"
	"time"
)

// FeedFetcher retrieves raw feed bytes. Failures are *FeedError.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// FeedClassifier decides whether a feed has an item published in year.
type FeedClassifier interface {
	Classify(data []byte, year int) (Match, error)
}

// Sleeper implements the politeness delay between feed requests.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Recorder receives per-record observations for metrics.
type Recorder interface {
	ObserveFetch(d time.Duration)
	ObserveOutcome(o Outcome, m Match, err *FeedError)
}
