package metrics

import (
	"testing"
	"time"
)

func TestCollectorTimings(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpSession, 100*time.Millisecond)
	c.RecordTiming(OpSession, 300*time.Millisecond)

	snap := c.Snapshot()
	if snap.Session == nil {
		t.Fatal("expected session snapshot")
	}
	if snap.Session.Count != 2 {
		t.Errorf("count = %d, want 2", snap.Session.Count)
	}
	if snap.Session.MinTimeMs != 100 {
		t.Errorf("min = %d, want 100", snap.Session.MinTimeMs)
	}
	if snap.Session.MaxTimeMs != 300 {
		t.Errorf("max = %d, want 300", snap.Session.MaxTimeMs)
	}
	if snap.Session.AvgTimeMs != 200 {
		t.Errorf("avg = %f, want 200", snap.Session.AvgTimeMs)
	}
}

func TestCollectorTokenUsage(t *testing.T) {
	c := NewCollector()

	c.RecordGeneration(OpGenerate, 50*time.Millisecond, 120, 40)
	c.RecordGeneration(OpGenerate, 70*time.Millisecond, 80, 60)

	snap := c.Snapshot()
	if snap.Generate == nil {
		t.Fatal("expected generate snapshot")
	}
	if snap.Generate.TotalInputTokens == nil || *snap.Generate.TotalInputTokens != 200 {
		t.Errorf("input tokens = %v, want 200", snap.Generate.TotalInputTokens)
	}
	if snap.Generate.TotalOutputTokens == nil || *snap.Generate.TotalOutputTokens != 100 {
		t.Errorf("output tokens = %v, want 100", snap.Generate.TotalOutputTokens)
	}
}

func TestSnapshotEmptyOps(t *testing.T) {
	c := NewCollector()

	snap := c.Snapshot()
	if snap.Generate != nil || snap.GenerateStream != nil || snap.Session != nil || snap.DBQuery != nil {
		t.Error("empty collector should produce nil operation snapshots")
	}
}
