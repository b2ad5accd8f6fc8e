package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/starfield/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkRegimeChange   BookmarkType = "regime_change"
	BookmarkExtinctionWave BookmarkType = "extinction_wave"
	BookmarkMergerBurst    BookmarkType = "merger_burst"
	BookmarkStableField    BookmarkType = "stable_field"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type" msgpack:"type"`
	Tick        int32        `csv:"tick" json:"tick" msgpack:"tick"`
	Description string       `csv:"description" json:"description" msgpack:"description"`
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
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	gSign              int // sign of the last non-zero G
	recentLivePeak     int // peak live count since the last wave
	stableWindowsCount int // consecutive windows with a steady live count
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable field detection
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkRegimeChange(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkExtinctionWave(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkMergerBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableField(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.Live > bd.recentLivePeak {
		bd.recentLivePeak = stats.Live
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

// getHistory returns the recorded windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// checkRegimeChange fires when G flips between attraction and repulsion.
func (bd *BookmarkDetector) checkRegimeChange(stats WindowStats) *Bookmark {
	s := sign(stats.G)
	if s == 0 {
		return nil
	}
	prev := bd.gSign
	bd.gSign = s
	if prev == 0 || prev == s {
		return nil
	}

	regime := "attractive"
	if s < 0 {
		regime = "repulsive"
	}
	return &Bookmark{
		Type:        BookmarkRegimeChange,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Gravity became %s (G=%.3f) with %d stars", regime, stats.G, stats.Live),
	}
}

func (bd *BookmarkDetector) checkExtinctionWave(stats WindowStats) *Bookmark {
	if bd.recentLivePeak == 0 {
		return nil
	}

	drop := bd.recentLivePeak - stats.Live
	dropPercent := float64(drop) / float64(bd.recentLivePeak)
	if dropPercent > bd.cfg.ExtinctionWave.DropPercent && drop >= bd.cfg.ExtinctionWave.MinDrop {
		oldPeak := bd.recentLivePeak
		bd.recentLivePeak = stats.Live

		return &Bookmark{
			Type:        BookmarkExtinctionWave,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Live stars fell %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Live),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkMergerBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Absorptions
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	cfg := bd.cfg.MergerBurst
	if float64(stats.Absorptions) > avg*cfg.Multiplier && stats.Absorptions >= cfg.MinAbsorptions {
		return &Bookmark{
			Type:        BookmarkMergerBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d absorptions is %.1fx average (%.1f)", stats.Absorptions, float64(stats.Absorptions)/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableField(stats WindowStats) *Bookmark {
	cfg := bd.cfg.StableField
	if stats.Live < cfg.MinLive {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	live := make([]float64, 0, 5)
	for _, h := range history[len(history)-4:] {
		live = append(live, float64(h.Live))
	}
	live = append(live, float64(stats.Live))

	if CoefficientOfVariation(live) < cfg.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == cfg.StableWindows { // trigger once per stable run
		return &Bookmark{
			Type:        BookmarkStableField,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Star field steady at %d stars over %d windows", stats.Live, cfg.StableWindows),
		}
	}

	return nil
}
