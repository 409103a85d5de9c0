package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"FishMoney/internal/domain/models"
)

type fakeSource struct {
	body string
	err  error
}

func (f *fakeSource) FetchAnalysisPayload(ctx context.Context, ticker string) (string, error) {
	return f.body, f.err
}

type fakeAudit struct {
	entries chan *models.AnalysisLogEntry
	err     error
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{entries: make(chan *models.AnalysisLogEntry, 4)}
}

func (f *fakeAudit) Log(ctx context.Context, entry *models.AnalysisLogEntry) error {
	f.entries <- entry
	return f.err
}
func (f *fakeAudit) Health(ctx context.Context) error { return nil }
func (f *fakeAudit) Close() error                     { return nil }

type fakeRecent struct {
	pushed chan *models.AnalysisRecord
}

func newFakeRecent() *fakeRecent {
	return &fakeRecent{pushed: make(chan *models.AnalysisRecord, 4)}
}

func (f *fakeRecent) Push(ctx context.Context, record *models.AnalysisRecord) error {
	f.pushed <- record
	return nil
}
func (f *fakeRecent) Recent(ctx context.Context, limit int) ([]*models.RecentAnalysis, error) {
	return nil, nil
}
func (f *fakeRecent) Close() error { return nil }

type fakeBroadcast struct {
	published []*models.AnalysisRecord
}

func (f *fakeBroadcast) Publish(record *models.AnalysisRecord) {
	f.published = append(f.published, record)
}

func waitEntry(t *testing.T, ch chan *models.AnalysisLogEntry) *models.AnalysisLogEntry {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for audit entry")
		return nil
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	source := &fakeSource{body: `{"ticker":"aapl","current_price":187.5,"summary":"solid"}`}
	audit := newFakeAudit()
	recent := newFakeRecent()
	bc := &fakeBroadcast{}
	a := NewAnalyzer(source, audit, recent, bc, nil, nil, time.Second)

	rec, err := a.Analyze(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if rec.Ticker != "AAPL" {
		t.Fatalf("unexpected ticker %q", rec.Ticker)
	}
	if rec.CurrentPrice != 187.5 {
		t.Fatalf("unexpected price %v", rec.CurrentPrice)
	}

	entry := waitEntry(t, audit.entries)
	if !entry.OK || entry.Record != rec {
		t.Fatalf("unexpected audit entry %+v", entry)
	}

	select {
	case pushed := <-recent.pushed:
		if pushed != rec {
			t.Fatalf("unexpected recent record %+v", pushed)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for recent push")
	}

	if len(bc.published) != 1 || bc.published[0] != rec {
		t.Fatalf("expected one broadcast, got %v", bc.published)
	}
}

func TestAnalyzeTransportFailureLogsFallback(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("all webhook attempts failed: boom")}
	audit := newFakeAudit()
	a := NewAnalyzer(source, audit, nil, nil, nil, nil, time.Second)

	_, err := a.Analyze(context.Background(), "tsla")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "TSLA") {
		t.Fatalf("error %q missing ticker", err.Error())
	}

	entry := waitEntry(t, audit.entries)
	if entry.OK {
		t.Fatalf("fallback entry should not be OK")
	}
	if entry.Record == nil || entry.Record.Ticker != "TSLA" {
		t.Fatalf("unexpected fallback record %+v", entry.Record)
	}
	if entry.Record.Sentiment != models.SentimentNeutral || entry.Record.CurrentPrice != 0 {
		t.Fatalf("fallback record not placeholder-shaped: %+v", entry.Record)
	}
	if entry.Diagnostic == "" {
		t.Fatalf("expected diagnostic")
	}
}

func TestAnalyzeUnrecognizedPayload(t *testing.T) {
	source := &fakeSource{body: "nothing resembling json"}
	audit := newFakeAudit()
	a := NewAnalyzer(source, audit, nil, nil, nil, nil, time.Second)

	_, err := a.Analyze(context.Background(), "IBM")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "unrecognized analysis payload") {
		t.Fatalf("unexpected error %q", err.Error())
	}

	entry := waitEntry(t, audit.entries)
	if entry.OK || entry.Record.Ticker != "IBM" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestAnalyzeDiagnosticPreviewTruncated(t *testing.T) {
	long := "x" + strings.Repeat("y", 2000)
	source := &fakeSource{body: long}
	a := NewAnalyzer(source, nil, nil, nil, nil, nil, time.Second)

	_, err := a.Analyze(context.Background(), "IBM")
	if err == nil {
		t.Fatalf("expected error")
	}
	// The preview appears after the fixed prefix; it must be capped.
	if len(err.Error()) > payloadPreviewLimit+len("unrecognized analysis payload for IBM: ") {
		t.Fatalf("diagnostic not truncated: %d chars", len(err.Error()))
	}
}

func TestAnalyzeSignalGateFailure(t *testing.T) {
	source := &fakeSource{body: `{"ticker":"AAPL"}`}
	a := NewAnalyzer(source, nil, nil, nil, nil, nil, time.Second)
	if _, err := a.Analyze(context.Background(), "AAPL"); err == nil {
		t.Fatalf("expected gate failure")
	}
}

func TestAnalyzeAuditFailureSwallowed(t *testing.T) {
	source := &fakeSource{body: `{"ticker":"AAPL","current_price":10,"summary":"ok"}`}
	audit := newFakeAudit()
	audit.err = fmt.Errorf("sink down")
	a := NewAnalyzer(source, audit, nil, nil, nil, nil, time.Second)

	rec, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("audit failure must not surface: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected record")
	}
	waitEntry(t, audit.entries)
}
