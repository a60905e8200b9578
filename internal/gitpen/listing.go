package gitpen

import (
	"sort"
	"strings"
)

// FileEntry describes one remote content file for display.
type FileEntry struct {
	Name string `json:"name"` // last path segment
	Path string `json:"path"` // full object key
	URL  string `json:"url"`  // time-limited signed access URL
}

// FolderEntry describes one inferred folder in the remote key space.
type FolderEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// DateCount is one bucket of the per-day commit histogram.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// FolderStructure derives the folder hierarchy implied by a flat key set.
// Every distinct prefix up to each "/" becomes a folder. The result is a
// pure function of the key set: order-independent, deduplicated, and
// sorted by path.
func FolderStructure(keys []string) []FolderEntry {
	seen := make(map[string]struct{})
	for _, key := range keys {
		parts := strings.Split(key, "/")
		for i := 1; i < len(parts); i++ {
			seen[strings.Join(parts[:i], "/")] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	folders := make([]FolderEntry, 0, len(paths))
	for _, p := range paths {
		folders = append(folders, FolderEntry{
			Name: p[strings.LastIndex(p, "/")+1:],
			Path: p,
		})
	}
	return folders
}

// sortCommitsByDate orders commits oldest-first. Dates share a fixed
// timezone offset, so RFC 3339 strings compare correctly as text.
func sortCommitsByDate(commits []CommitRecord) {
	sort.Slice(commits, func(i, j int) bool { return commits[i].Date < commits[j].Date })
}

// CountByDay groups commits into per-day buckets, ascending by date.
// Two commits on the same calendar day (in the fixed commit timezone)
// land in the same bucket regardless of time of day.
func CountByDay(commits []CommitRecord) []DateCount {
	byDay := make(map[string]int)
	for _, c := range commits {
		byDay[c.Day()]++
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	counts := make([]DateCount, 0, len(days))
	for _, d := range days {
		counts = append(counts, DateCount{Date: d, Count: byDay[d]})
	}
	return counts
}
