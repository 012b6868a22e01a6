package schedule

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/async"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/ingest"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/notify"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/report"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
)

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestValidate(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"", false},
		{"  ", false},
		{"@every 15m", false},
		{"0 9 * * *", false},
		{"@daily", false},
		{"0 0 9 * * *", true},
		{"not a spec", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if err := Validate(tt.spec); (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestAddDisabledAndDuplicate(t *testing.T) {
	s := New(nil)
	job := funcJob{name: "noop", run: func(context.Context) error { return nil }}

	added, err := s.Add("", job)
	if err != nil || added {
		t.Fatalf("empty spec: added=%v err=%v", added, err)
	}
	if added, err = s.Add("@every 1h", job); err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	if _, err = s.Add("@every 1h", job); err == nil {
		t.Fatal("duplicate job should fail")
	}
	if _, err = s.Add("bogus", funcJob{name: "other", run: job.run}); err == nil {
		t.Fatal("bad spec should fail")
	}
}

func TestSchedulerRunsAndStops(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	stopped := make(chan struct{})
	var once sync.Once
	job := funcJob{name: "tick", run: func(ctx context.Context) error {
		runs.Add(1)
		<-ctx.Done()
		once.Do(func() { close(stopped) })
		return ctx.Err()
	}}
	if _, err := s.Add("@every 1s", job); err != nil {
		t.Fatal(err)
	}
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never ran")
		}
		time.Sleep(20 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case <-stopped:
	default:
		t.Fatal("running job was not cancelled")
	}
}

type fakeIngestor struct {
	results []ingest.IngestionResult
	err     error
	root    string
}

func (f *fakeIngestor) IngestPath(context.Context, string) (ingest.IngestionResult, error) {
	return ingest.IngestionResult{}, errors.New("not used")
}

func (f *fakeIngestor) IngestDirectory(_ context.Context, root string, _ bool) ([]ingest.IngestionResult, ingest.DirStats, error) {
	f.root = root
	return f.results, ingest.DirStats{Matched: uint32(len(f.results))}, f.err
}

type recordingQueue struct {
	jobs []async.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func TestInboxSweepQueuesNewDocuments(t *testing.T) {
	fresh := uuid.New()
	ing := &fakeIngestor{results: []ingest.IngestionResult{
		{SourcePath: "/inbox/a.pdf", DocumentID: fresh},
		{SourcePath: "/inbox/b.pdf", DocumentID: uuid.New(), Deduplicated: true},
		{SourcePath: "/inbox/c.pdf", Err: "permission denied"},
	}}
	q := &recordingQueue{}
	job := &InboxSweep{Root: "/inbox", Ingestor: ing, Queue: q}

	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ing.root != "/inbox" {
		t.Fatalf("root = %q", ing.root)
	}
	if len(q.jobs) != 1 || q.jobs[0].DocumentID != fresh || q.jobs[0].Path != "/inbox/a.pdf" {
		t.Fatalf("jobs = %+v", q.jobs)
	}
	if !strings.HasPrefix(q.jobs[0].TraceID, "sweep-") {
		t.Fatalf("trace id = %q", q.jobs[0].TraceID)
	}
}

func TestInboxSweepErrors(t *testing.T) {
	walkErr := errors.New("boom")
	job := &InboxSweep{Root: "/inbox", Ingestor: &fakeIngestor{err: walkErr}, Queue: &recordingQueue{}}
	if err := job.Run(context.Background()); !errors.Is(err, walkErr) {
		t.Fatalf("err = %v, want %v", err, walkErr)
	}

	job = &InboxSweep{
		Root:     "/inbox",
		Ingestor: &fakeIngestor{results: []ingest.IngestionResult{{SourcePath: "/inbox/a.pdf", DocumentID: uuid.New()}}},
		Queue:    &recordingQueue{err: async.ErrQueueClosed},
	}
	if err := job.Run(context.Background()); !errors.Is(err, async.ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

type stubReporter struct {
	daily report.Daily
	err   error
}

func (r stubReporter) Daily(context.Context) (report.Daily, error) { return r.daily, r.err }

type summaryNotifier struct {
	summaries []notify.Summary
	err       error
}

func (n *summaryNotifier) NotifyRejected(context.Context, notify.Rejection) error { return nil }

func (n *summaryNotifier) NotifySummary(_ context.Context, s notify.Summary) error {
	n.summaries = append(n.summaries, s)
	return n.err
}

func TestDailyReportSendsSummary(t *testing.T) {
	day := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	n := &summaryNotifier{}
	job := &DailyReport{
		Reports:  stubReporter{daily: report.Daily{Date: day, Counts: repository.Counts{Total: 4, Processed: 3, Rejected: 1, AvgFields: 9.5}}},
		Notifier: n,
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(n.summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(n.summaries))
	}
	s := n.summaries[0]
	if s.Title != "Daily BOL Processing Report - 2025-06-11" || !s.Date.Equal(day) {
		t.Fatalf("summary = %+v", s)
	}
	if !strings.Contains(s.Body, "Success Rate: 75.0%") {
		t.Fatalf("body = %q", s.Body)
	}
}

func TestDailyReportErrors(t *testing.T) {
	reportErr := errors.New("db down")
	n := &summaryNotifier{}
	job := &DailyReport{Reports: stubReporter{err: reportErr}, Notifier: n}
	if err := job.Run(context.Background()); !errors.Is(err, reportErr) {
		t.Fatalf("err = %v", err)
	}
	if len(n.summaries) != 0 {
		t.Fatal("summary sent despite report failure")
	}

	sendErr := errors.New("smtp 535")
	job = &DailyReport{Reports: stubReporter{}, Notifier: &summaryNotifier{err: sendErr}}
	if err := job.Run(context.Background()); !errors.Is(err, sendErr) {
		t.Fatalf("err = %v", err)
	}

	job = &DailyReport{Reports: stubReporter{}}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("no notifier: %v", err)
	}
}
