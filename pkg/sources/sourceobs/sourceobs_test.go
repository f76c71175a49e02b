package sourceobs

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/samvad-market-pulse/internal/domain"
	"github.com/samvad-hq/samvad-market-pulse/pkg/sources"
)

type stubFetcher struct {
	batch domain.Batch
	err   error
}

func (s stubFetcher) ID() string { return "stub" }
func (s stubFetcher) FetchBatch(context.Context, domain.BatchRequest) (domain.Batch, error) {
	return s.batch, s.err
}

type recordingLogger struct {
	warns  []string
	debugs []string
}

func (r *recordingLogger) InfoObj(string, string, interface{}) {}

func (r *recordingLogger) DebugObj(msg string, _ string, _ interface{}) {
	r.debugs = append(r.debugs, msg)
}

func (r *recordingLogger) WarnObj(msg string, _ string, _ interface{}) {
	r.warns = append(r.warns, msg)
}

func (r *recordingLogger) ErrorObj(string, string, interface{}) {}

func TestWrapPassesThroughBatch(t *testing.T) {
	log := &recordingLogger{}
	f := Wrap(stubFetcher{batch: domain.Batch{Articles: []domain.Article{{ID: "a"}}}}, log)

	if f.ID() != "stub" {
		t.Fatalf("ID not delegated")
	}
	batch, err := f.FetchBatch(context.Background(), domain.BatchRequest{Page: 1})
	if err != nil || len(batch.Articles) != 1 {
		t.Fatalf("unexpected result %+v %v", batch, err)
	}
	if len(log.debugs) != 1 || len(log.warns) != 0 {
		t.Fatalf("expected one debug log, got debugs=%v warns=%v", log.debugs, log.warns)
	}
}

func TestWrapLogsFailuresWithoutChangingError(t *testing.T) {
	log := &recordingLogger{}
	want := &sources.FetchError{Kind: sources.KindTimeout, SourceID: "stub", Err: errors.New("slow")}
	_, err := Wrap(stubFetcher{err: want}, log).FetchBatch(context.Background(), domain.BatchRequest{Page: 2})

	if !errors.Is(err, want) {
		t.Fatalf("error should be returned unchanged, got %v", err)
	}
	if len(log.warns) != 1 {
		t.Fatalf("expected one warning, got %v", log.warns)
	}
}
