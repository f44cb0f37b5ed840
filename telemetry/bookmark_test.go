package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(0.5, 5)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 60), Herbivores: 30, Carnivores: 10})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 240, Herbivores: 10, Carnivores: 5})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}

	// The peak resets after a crash, so holding steady does not retrigger.
	bookmarks = bd.Check(WindowStats{WindowEndTick: 300, Herbivores: 10, Carnivores: 5})
	if hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("crash triggered twice for the same drop")
	}
}

func TestBookmarkDetector_SmallDropIgnored(t *testing.T) {
	bd := NewBookmarkDetector(0.5, 5)
	bd.Check(WindowStats{Herbivores: 40})

	if bookmarks := bd.Check(WindowStats{Herbivores: 25}); hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("a 37% drop should not count as a crash")
	}
}

func TestBookmarkDetector_DietExtinct(t *testing.T) {
	bd := NewBookmarkDetector(0.9, 5)
	bd.Check(WindowStats{Herbivores: 12, Carnivores: 3, Omnivores: 4})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 60, Herbivores: 14, Omnivores: 4})
	if !hasBookmark(bookmarks, BookmarkDietExtinct) {
		t.Fatal("expected diet_extinct bookmark")
	}
	for _, bm := range bookmarks {
		if bm.Type == BookmarkDietExtinct && bm.Description != "Died out: carnivores" {
			t.Errorf("description = %q", bm.Description)
		}
	}
}

func TestBookmarkDetector_Recovery(t *testing.T) {
	bd := NewBookmarkDetector(0.5, 5)
	bd.Check(WindowStats{Herbivores: 30})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 60, Herbivores: 20, Recoveries: 1, Generation: 2})
	if !hasBookmark(bookmarks, BookmarkRecovery) {
		t.Error("expected population_recovery bookmark")
	}
	if hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("recovery window should not also report a crash")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(0.5, 5)

	triggered := 0
	for i := 0; i < 10; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick: int32(i * 60),
			Herbivores:    20,
			Carnivores:    5,
			Omnivores:     8,
		})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			if i != 4 {
				t.Errorf("stable_ecosystem at window %d, want 4", i)
			}
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("stable_ecosystem triggered %d times, want 1", triggered)
	}
}
