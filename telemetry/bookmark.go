package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkWarOutbreak      BookmarkType = "war_outbreak"
	BookmarkHarvestBoom      BookmarkType = "harvest_boom"
	BookmarkColonyCrash      BookmarkType = "colony_crash"
	BookmarkTermitesWipedOut BookmarkType = "termites_wiped_out"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
)

// Bookmark marks a noteworthy window of the run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentAntPeak      int // peak ant count since the last crash
	stableWindowsCount int // consecutive windows with stable populations
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		checks := []func(WindowStats) *Bookmark{
			bd.checkWarOutbreak,
			bd.checkHarvestBoom,
			bd.checkColonyCrash,
			bd.checkTermitesWipedOut,
			bd.checkStableEcosystem,
		}
		for _, check := range checks {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)
	if stats.Ants() > bd.recentAntPeak {
		bd.recentAntPeak = stats.Ants()
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

// checkWarOutbreak fires when kills jump past twice the rolling average.
func (bd *BookmarkDetector) checkWarOutbreak(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var totalKills int
	for _, h := range history {
		totalKills += h.Kills
	}
	avgKills := float64(totalKills) / float64(len(history))

	if stats.Kills >= 3 && float64(stats.Kills) > avgKills*2.0 {
		return &Bookmark{
			Type:        BookmarkWarOutbreak,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d kills against an average of %.1f", stats.Kills, avgKills),
		}
	}
	return nil
}

// checkHarvestBoom fires when deliveries jump past twice the rolling average.
func (bd *BookmarkDetector) checkHarvestBoom(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.FoodDelivered
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.FoodDelivered > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkHarvestBoom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Delivered %.1f food, %.1fx average (%.1f)", stats.FoodDelivered, stats.FoodDelivered/avg, avg),
		}
	}
	return nil
}

// checkColonyCrash fires when the ant population drops by over 30% from its
// recent peak.
func (bd *BookmarkDetector) checkColonyCrash(stats WindowStats) *Bookmark {
	if bd.recentAntPeak == 0 {
		return nil
	}

	ants := stats.Ants()
	dropPercent := 1.0 - float64(ants)/float64(bd.recentAntPeak)
	if dropPercent > 0.30 && ants < bd.recentAntPeak-10 {
		oldPeak := bd.recentAntPeak
		bd.recentAntPeak = ants

		return &Bookmark{
			Type:        BookmarkColonyCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Ants crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, ants),
		}
	}
	return nil
}

// checkTermitesWipedOut fires on the window the last termite dies.
func (bd *BookmarkDetector) checkTermitesWipedOut(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) == 0 || stats.Termites > 0 || history[len(history)-1].Termites == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkTermitesWipedOut,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Last termite gone, %d termite deaths this window", stats.TermiteDeaths),
	}
}

// checkStableEcosystem fires once ants and termites have coexisted with low
// variance for five windows.
func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Ants() < 10 || stats.Termites < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}
	recent := history[len(history)-4:]

	antCV2 := cv2(recent, func(s WindowStats) float64 { return float64(s.Ants()) })
	termiteCV2 := cv2(recent, func(s WindowStats) float64 { return float64(s.Termites) })

	if antCV2 < 0.04 && termiteCV2 < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d ants, %d termites over 5+ windows", stats.Ants(), stats.Termites),
		}
	}
	return nil
}

// cv2 returns the squared coefficient of variation of f over windows.
func cv2(windows []WindowStats, f func(WindowStats) float64) float64 {
	values := make([]float64, len(windows))
	for i, w := range windows {
		values[i] = f(w)
	}
	s := Summarize(values)
	if s.Mean == 0 {
		return 0
	}
	return (s.Std * s.Std) / (s.Mean * s.Mean)
}
