package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"meetupsplit/adapter/rss"
	"meetupsplit/domain"
)

type fakeFetcher struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return []byte(f.bodies[url]), nil
}

type fakeSleeper struct {
	slept  []time.Duration
	cancel context.CancelFunc
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	if s.cancel != nil {
		s.cancel()
		return ctx.Err()
	}
	return nil
}

func rssWith(dates ...string) string {
	s := "<rss><channel>"
	for _, d := range dates {
		s += "<item><pubDate>" + d + "</pubDate></item>"
	}
	return s + "</channel></rss>"
}

func meetups(t *testing.T, js string) []domain.Meetup {
	t.Helper()
	var ms []domain.Meetup
	if err := json.Unmarshal([]byte(js), &ms); err != nil {
		t.Fatal(err)
	}
	return ms
}

func newTestSplitter(f domain.FeedFetcher, sl domain.Sleeper, out *bytes.Buffer) *Splitter {
	return NewSplitter(f, rss.Classifier{}, Options{
		TargetYear: 2026,
		SleepMin:   10 * time.Second,
		SleepMax:   60 * time.Second,
		Out:        out,
		Sleeper:    sl,
	})
}

const input = `[
	{"meetupID": "match", "meetupUrlRss": "http://feeds/match"},
	{"meetupID": "old", "meetupUrlRss": "http://feeds/old"},
	{"meetupID": "baddate", "meetupUrlRss": "http://feeds/baddate"},
	{"meetupID": "nourl", "meetupName": "No URL"},
	{"meetupName": "Gone", "meetupUrlRss": "http://feeds/404"},
	{"meetupUrlRss": "http://feeds/down"},
	{"meetupID": "html", "meetupUrlRss": "http://feeds/html"}
]`

func testFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: map[string]string{
			"http://feeds/match":   rssWith("Mon, 01 Jan 2024 10:00:00 GMT", "Tue, 14 Oct 2026 18:00:00 +0000"),
			"http://feeds/old":     rssWith("Mon, 01 Jan 2024 10:00:00 GMT", "Wed, 31 Dec 2025 10:00:00 GMT"),
			"http://feeds/baddate": rssWith("soon"),
			"http://feeds/html":    "<html><body>captcha</html>",
		},
		errs: map[string]error{
			"http://feeds/404":  domain.HTTPError(404, "Not Found"),
			"http://feeds/down": domain.NetworkError("connection refused", nil),
		},
	}
}

func TestSplitterRun(t *testing.T) {
	var out bytes.Buffer
	f := testFetcher()
	sl := &fakeSleeper{}
	ms := meetups(t, input)

	res, err := newTestSplitter(f, sl, &out).Run(context.Background(), ms)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.With)+len(res.Without) != len(ms) {
		t.Fatalf("partition lost records: %d + %d != %d", len(res.With), len(res.Without), len(ms))
	}
	if len(res.With) != 1 || res.With[0].ID != "match" {
		t.Fatalf("With = %+v", res.With)
	}
	if len(res.Errors) != 4 {
		t.Fatalf("Errors = %+v", res.Errors)
	}
	want := domain.Tally{Processed: 7, Total: 7, Matched: 1, NoMatch: 2, Errors: 4}
	if res.Tally != want {
		t.Fatalf("Tally = %+v, want %+v", res.Tally, want)
	}

	byID := map[string]domain.ErrorEntry{}
	for _, e := range res.Errors {
		byID[e.MeetupID] = e
	}
	if e := byID["nourl"]; e.Error != "missing meetupUrlRss" || e.MeetupURLRSS != "" {
		t.Fatalf("nourl entry = %+v", e)
	}
	if e := byID["Gone"]; e.Error != "HTTPError 404: Not Found" || e.MeetupURLRSS != "http://feeds/404" {
		t.Fatalf("Gone entry = %+v", e)
	}
	if e := byID["row-6"]; e.Error != "URLError: connection refused" {
		t.Fatalf("row-6 entry = %+v", e)
	}
	if e := byID["html"]; !strings.HasPrefix(e.Error, "XML ParseError: ") {
		t.Fatalf("html entry = %+v", e)
	}

	// every errored record is also in Without
	without := map[string]bool{}
	for _, m := range res.Without {
		without[m.Label(0)] = true
	}
	for id := range byID {
		if id != "row-6" && !without[id] {
			t.Fatalf("errored %q missing from Without", id)
		}
	}

	// six fetched records sleep; the missing URL does not
	if len(sl.slept) != 6 {
		t.Fatalf("slept %d times, want 6", len(sl.slept))
	}
	for _, d := range sl.slept {
		if d < 10*time.Second || d > 60*time.Second || d%time.Second != 0 {
			t.Fatalf("delay %s outside 10s..60s", d)
		}
	}
	if len(f.calls) != 6 {
		t.Fatalf("fetched %d feeds, want 6", len(f.calls))
	}

	text := out.String()
	for _, line := range []string{
		"Target pubDate year: 2026\n",
		"Total meetups to check: 7\n",
		"001/7 [match] fetching RSS: http://feeds/match\n",
		"001/7 [match] MATCH - pubDate year 2026 (pubDate tags: 2, parsed: 2)\n",
		"002/7 [old] NO-MATCH - no pubDate with year 2026 (pubDate tags: 2, parsed: 2)\n",
		"003/7 [baddate] NO-MATCH - no pubDate with year 2026 (pubDate tags: 1, parsed: 0)\n",
		"004/7 [nourl] ERROR - missing meetupUrlRss\n",
		"005/7 [Gone] ERROR - HTTPError 404: Not Found\n",
		"TALLY processed 7/7 | MATCH 1 | NO-MATCH 2 | ERROR 4\n" + separator + "\n",
		"[match] sleeping ",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("output missing %q", line)
		}
	}
}

func TestSplitterSleepOnSkip(t *testing.T) {
	sl := &fakeSleeper{}
	s := NewSplitter(testFetcher(), rss.Classifier{}, Options{TargetYear: 2026, Sleeper: sl, SleepOnSkip: true})
	if _, err := s.Run(context.Background(), meetups(t, `[{"meetupID":"a"},{"meetupID":"b"}]`)); err != nil {
		t.Fatal(err)
	}
	if len(sl.slept) != 2 {
		t.Fatalf("slept %d times, want 2", len(sl.slept))
	}
}

func TestSplitterIdempotent(t *testing.T) {
	run := func() Result {
		res, err := newTestSplitter(testFetcher(), &fakeSleeper{}, &bytes.Buffer{}).Run(context.Background(), meetups(t, input))
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Fatalf("runs differ:\n%s\n%s", ja, jb)
	}
}

func TestSplitterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := testFetcher()
	sl := &fakeSleeper{cancel: cancel}

	_, err := newTestSplitter(f, sl, &bytes.Buffer{}).Run(ctx, meetups(t, input))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(f.calls) != 1 {
		t.Fatalf("fetched %d feeds after cancel, want 1", len(f.calls))
	}
}

func TestSplitterUnknownErrorKeepsMessage(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"http://x": errors.New("body too large")}}
	res, err := newTestSplitter(f, &fakeSleeper{}, &bytes.Buffer{}).Run(context.Background(),
		meetups(t, `[{"meetupID":"x","meetupUrlRss":"http://x"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Error != "body too large" {
		t.Fatalf("Errors = %+v", res.Errors)
	}
	if len(res.Without) != 1 {
		t.Fatalf("Without = %+v", res.Without)
	}
}

func TestSplitterTextBeforeRootIsError(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		"http://x": "oops" + rssWith("Fri, 02 Jan 2026 10:00:00 GMT"),
		"http://y": "Service Unavailable <b>retry</b>",
	}}
	res, err := newTestSplitter(f, &fakeSleeper{}, &bytes.Buffer{}).Run(context.Background(),
		meetups(t, `[{"meetupID":"x","meetupUrlRss":"http://x"},{"meetupID":"y","meetupUrlRss":"http://y"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.With) != 0 || len(res.Without) != 2 {
		t.Fatalf("With = %d, Without = %d", len(res.With), len(res.Without))
	}
	if len(res.Errors) != 2 {
		t.Fatalf("Errors = %+v", res.Errors)
	}
	for _, e := range res.Errors {
		if !strings.HasPrefix(e.Error, "XML ParseError: ") {
			t.Fatalf("entry = %+v", e)
		}
	}
}

func TestDelayRange(t *testing.T) {
	s := NewSplitter(nil, nil, Options{SleepMin: 2 * time.Second, SleepMax: 2 * time.Second})
	if d := s.delay(); d != 2*time.Second {
		t.Fatalf("delay = %s, want 2s", d)
	}
	s = NewSplitter(nil, nil, Options{SleepMin: 0, SleepMax: 3 * time.Second})
	s.randN = func(n int64) int64 { return n - 1 }
	if d := s.delay(); d != 3*time.Second {
		t.Fatalf("delay = %s, want 3s", d)
	}
}
