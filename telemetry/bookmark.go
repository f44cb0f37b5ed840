package telemetry

import (
	"fmt"
	"log/slog"
	"strings"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkDietExtinct     BookmarkType = "diet_extinct"
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkRecovery        BookmarkType = "population_recovery"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark marks a notable moment in the run.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches consecutive windows for notable changes.
type BookmarkDetector struct {
	crashDrop     float64
	stableWindows int

	prev       *WindowStats
	recentPeak int
	stableRun  int
}

// NewBookmarkDetector creates a detector.
// crashDrop is the fraction below the recent animal peak that counts as a crash.
// stableWindows is how many consecutive windows with every diet present count as stable.
func NewBookmarkDetector(crashDrop float64, stableWindows int) *BookmarkDetector {
	if stableWindows < 1 {
		stableWindows = 5
	}
	return &BookmarkDetector{crashDrop: crashDrop, stableWindows: stableWindows}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkRecovery(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if bd.prev != nil {
		if b := bd.checkDietExtinct(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStable(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.recentPeak = max(bd.recentPeak, stats.Animals())
	prev := stats
	bd.prev = &prev

	return bookmarks
}

func (bd *BookmarkDetector) checkRecovery(stats WindowStats) *Bookmark {
	if stats.Recoveries == 0 {
		return nil
	}
	// A recovery reseeds the population; the old peak no longer applies.
	bd.recentPeak = 0
	return &Bookmark{
		Type:        BookmarkRecovery,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population reseeded %d time(s), now generation %d", stats.Recoveries, stats.Generation),
	}
}

func (bd *BookmarkDetector) checkDietExtinct(stats WindowStats) *Bookmark {
	var lost []string
	if bd.prev.Herbivores > 0 && stats.Herbivores == 0 {
		lost = append(lost, "herbivores")
	}
	if bd.prev.Carnivores > 0 && stats.Carnivores == 0 {
		lost = append(lost, "carnivores")
	}
	if bd.prev.Omnivores > 0 && stats.Omnivores == 0 {
		lost = append(lost, "omnivores")
	}
	if len(lost) == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDietExtinct,
		Tick:        stats.WindowEndTick,
		Description: "Died out: " + strings.Join(lost, ", "),
	}
}

func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	n := stats.Animals()
	drop := 1.0 - float64(n)/float64(bd.recentPeak)
	if drop <= bd.crashDrop {
		return nil
	}

	oldPeak := bd.recentPeak
	bd.recentPeak = n
	return &Bookmark{
		Type:        BookmarkPopulationCrash,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Animals crashed %.0f%% from peak %d to %d", drop*100, oldPeak, n),
	}
}

func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.Herbivores == 0 || stats.Carnivores == 0 || stats.Omnivores == 0 {
		bd.stableRun = 0
		return nil
	}

	bd.stableRun++
	if bd.stableRun != bd.stableWindows { // trigger exactly once per run of windows
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStableEcosystem,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("All diets coexisting for %d windows (%d/%d/%d)", bd.stableWindows, stats.Herbivores, stats.Carnivores, stats.Omnivores),
	}
}
