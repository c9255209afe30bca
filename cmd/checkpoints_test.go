package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gabrielasuchopar/gocma/internal/store"
)

func makeInfos(ages ...time.Duration) []store.CheckpointInfo {
	now := time.Now()
	infos := make([]store.CheckpointInfo, len(ages))
	for i, age := range ages {
		infos[i] = store.CheckpointInfo{
			RunID:     "run-" + string(rune('a'+i)),
			Timestamp: now.Add(-age),
		}
	}
	return infos
}

func TestSelectCheckpointsForDeletionByAge(t *testing.T) {
	infos := makeInfos(
		1*time.Hour,
		48*time.Hour,
		10*24*time.Hour,
	)

	toDelete := selectCheckpointsForDeletion(infos, 0, 7)
	if len(toDelete) != 1 {
		t.Fatalf("got %d to delete, expected 1", len(toDelete))
	}
	if toDelete[0].RunID != "run-c" {
		t.Errorf("selected %s, expected run-c", toDelete[0].RunID)
	}
}

func TestSelectCheckpointsForDeletionKeepLast(t *testing.T) {
	infos := makeInfos(
		1*time.Hour,
		2*time.Hour,
		3*time.Hour,
		4*time.Hour,
	)

	toDelete := selectCheckpointsForDeletion(infos, 2, 0)
	if len(toDelete) != 2 {
		t.Fatalf("got %d to delete, expected 2", len(toDelete))
	}
	// The two oldest go.
	got := map[string]bool{}
	for _, info := range toDelete {
		got[info.RunID] = true
	}
	if !got["run-c"] || !got["run-d"] {
		t.Errorf("deleted %v, expected run-c and run-d", got)
	}
}

func TestSelectCheckpointsForDeletionCombined(t *testing.T) {
	infos := makeInfos(
		1*time.Hour,
		2*time.Hour,
		10*24*time.Hour,
	)

	// Age rule already selects run-c; keep-last 2 must not select it twice.
	toDelete := selectCheckpointsForDeletion(infos, 2, 7)
	if len(toDelete) != 1 {
		t.Fatalf("got %d to delete, expected 1", len(toDelete))
	}
	if toDelete[0].RunID != "run-c" {
		t.Errorf("selected %s, expected run-c", toDelete[0].RunID)
	}
}

func TestSelectCheckpointsForDeletionNoCriteria(t *testing.T) {
	infos := makeInfos(1*time.Hour, 2*time.Hour)

	if toDelete := selectCheckpointsForDeletion(infos, 0, 0); len(toDelete) != 0 {
		t.Errorf("got %d to delete with no criteria, expected 0", len(toDelete))
	}
}

func TestSelectCheckpointsForDeletionKeepAll(t *testing.T) {
	infos := makeInfos(1*time.Hour, 2*time.Hour)

	if toDelete := selectCheckpointsForDeletion(infos, 5, 0); len(toDelete) != 0 {
		t.Errorf("got %d to delete when keeping more than exist, expected 0", len(toDelete))
	}
}

func TestGetDirSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), make([]byte, 100), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.jsonl"), make([]byte, 50), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	size, err := getDirSize(dir)
	if err != nil {
		t.Fatalf("getDirSize failed: %v", err)
	}
	if size != 150 {
		t.Errorf("size = %d, expected 150", size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, expected %q", tt.bytes, got, tt.want)
		}
	}
}
