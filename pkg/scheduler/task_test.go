package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"TrendAgent/pkg/monitor"
	"TrendAgent/pkg/verify"
)

type memStore struct {
	values map[string]interface{}
	err    error
}

func (m *memStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func fixedReport(status verify.Status) VerifyFunc {
	return func(ctx context.Context) verify.Report {
		return verify.Report{Results: []verify.Result{{Name: "Database", Status: status}}}
	}
}

func TestRunOnceRecordsAndStores(t *testing.T) {
	mon := monitor.NewMonitor(nil)
	store := &memStore{values: map[string]interface{}{}}
	s := NewScheduler("@every 1h", fixedReport(verify.StatusPass), mon, store)

	if !s.RunOnce(context.Background()) {
		t.Fatalf("RunOnce should run")
	}
	if got := mon.GetStatus("Database"); got == nil || got.Status != monitor.StatusHealthy {
		t.Fatalf("Database status = %+v", got)
	}
	if _, ok := store.values[LastReportKey]; !ok {
		t.Fatalf("report was not stored")
	}
}

func TestRunOnceToleratesStoreError(t *testing.T) {
	mon := monitor.NewMonitor(nil)
	store := &memStore{values: map[string]interface{}{}, err: errors.New("redis down")}
	s := NewScheduler("@every 1h", fixedReport(verify.StatusFail), mon, store)

	s.RunOnce(context.Background())
	if got := mon.GetStatus("Database"); got.Status != monitor.StatusUnhealthy {
		t.Fatalf("Database status = %s, want unhealthy", got.Status)
	}
}

func TestRunOnceSkipsOverlap(t *testing.T) {
	mon := monitor.NewMonitor(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewScheduler("@every 1h", func(ctx context.Context) verify.Report {
		close(started)
		<-release
		return verify.Report{}
	}, mon, nil)

	done := make(chan bool)
	go func() { done <- s.RunOnce(context.Background()) }()
	<-started
	if s.RunOnce(context.Background()) {
		t.Fatalf("overlapping run should be skipped")
	}
	close(release)
	if !<-done {
		t.Fatalf("first run should complete")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler("every five minutes", fixedReport(verify.StatusPass), monitor.NewMonitor(nil), nil)
	if err := s.Start(); err == nil {
		t.Fatalf("Start should reject an invalid schedule")
	}

	ok := NewScheduler("@every 1h", fixedReport(verify.StatusPass), monitor.NewMonitor(nil), nil)
	if err := ok.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-ok.Stop().Done()
}
