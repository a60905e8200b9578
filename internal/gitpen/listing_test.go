package gitpen_test

import (
	"testing"

	"gitpen-go/internal/gitpen"
)

func TestFolderStructure(t *testing.T) {
	t.Run("derives every ancestor prefix exactly once", func(t *testing.T) {
		t.Parallel()
		keys := []string{
			"r1/commits/c1/a.txt",
			"r1/commits/c1/b.txt",
			"r1/commits/c2/a.txt",
		}

		folders := gitpen.FolderStructure(keys)

		want := []string{"r1", "r1/commits", "r1/commits/c1", "r1/commits/c2"}
		if len(folders) != len(want) {
			t.Fatalf("folders = %v, want %v", folders, want)
		}
		for i, path := range want {
			if folders[i].Path != path {
				t.Errorf("folders[%d].Path = %q, want %q", i, folders[i].Path, path)
			}
		}
		if folders[2].Name != "c1" {
			t.Errorf("folders[2].Name = %q, want c1", folders[2].Name)
		}
	})

	t.Run("is independent of key order", func(t *testing.T) {
		t.Parallel()
		forward := gitpen.FolderStructure([]string{
			"r1/commits/c1/a.txt",
			"r1/commits/c2/b.txt",
		})
		reversed := gitpen.FolderStructure([]string{
			"r1/commits/c2/b.txt",
			"r1/commits/c1/a.txt",
		})

		if len(forward) != len(reversed) {
			t.Fatalf("lengths differ: %v vs %v", forward, reversed)
		}
		for i := range forward {
			if forward[i] != reversed[i] {
				t.Errorf("entry %d differs: %+v vs %+v", i, forward[i], reversed[i])
			}
		}
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()
		if folders := gitpen.FolderStructure(nil); len(folders) != 0 {
			t.Errorf("folders = %v, want empty", folders)
		}
	})
}

func TestCountByDay(t *testing.T) {
	t.Run("buckets by calendar day ascending", func(t *testing.T) {
		t.Parallel()
		commits := []gitpen.CommitRecord{
			{ID: "c3", Date: "2024-06-02T08:00:00+05:30"},
			{ID: "c1", Date: "2024-06-01T10:00:00+05:30"},
			{ID: "c2", Date: "2024-06-01T22:00:00+05:30"},
		}

		counts := gitpen.CountByDay(commits)

		want := []gitpen.DateCount{
			{Date: "2024-06-01", Count: 2},
			{Date: "2024-06-02", Count: 1},
		}
		if len(counts) != len(want) {
			t.Fatalf("counts = %v, want %v", counts, want)
		}
		for i := range want {
			if counts[i] != want[i] {
				t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
			}
		}
	})

	t.Run("handles no commits", func(t *testing.T) {
		t.Parallel()
		if counts := gitpen.CountByDay(nil); len(counts) != 0 {
			t.Errorf("counts = %v, want empty", counts)
		}
	})
}
