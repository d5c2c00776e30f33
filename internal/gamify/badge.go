package gamify

import (
	"sort"

	"ecomind/tracker-service/internal/models"
)

// Badge is a one-time achievement flag. The set of badges is closed so rule
// evaluation can be exhaustive.
type Badge int

const (
	FirstSteps Badge = iota
	WeekWarrior
	ConsistencyKing
	EcoNovice
	GreenGuardian
	CarbonCrusher
	EcoChampion
	ImprovementMaster
)

type badgeInfo struct {
	name        string
	description string
	icon        string
}

var badgeCatalog = [...]badgeInfo{
	FirstSteps:        {"First Steps", "Track your first day of carbon emissions", "👶"},
	WeekWarrior:       {"Week Warrior", "Track emissions for 7 consecutive days", "📅"},
	ConsistencyKing:   {"Consistency King", "Track emissions for 30 consecutive days", "👑"},
	EcoNovice:         {"Eco Novice", "Reduce daily emissions below 2000g", "🌱"},
	GreenGuardian:     {"Green Guardian", "Reduce daily emissions below 1500g", "🌿"},
	CarbonCrusher:     {"Carbon Crusher", "Reduce daily emissions below 1000g", "💚"},
	EcoChampion:       {"Eco Champion", "Reduce daily emissions below 500g", "🏆"},
	ImprovementMaster: {"Improvement Master", "Reduce emissions by 50% from your starting average", "📈"},
}

// AllBadges returns every badge in catalog order.
func AllBadges() []Badge {
	badges := make([]Badge, len(badgeCatalog))
	for i := range badgeCatalog {
		badges[i] = Badge(i)
	}
	return badges
}

func (b Badge) String() string { return badgeCatalog[b].name }

// Description returns the human description of the badge.
func (b Badge) Description() string { return badgeCatalog[b].description }

// Icon returns the display icon of the badge.
func (b Badge) Icon() string { return badgeCatalog[b].icon }

// ParseBadge maps a stored badge name back to its Badge.
func ParseBadge(name string) (Badge, bool) {
	for _, b := range AllBadges() {
		if b.String() == name {
			return b, true
		}
	}
	return FirstSteps, false
}

// BadgeSet is the set of badges a user currently holds.
type BadgeSet map[Badge]struct{}

// NewBadgeSet builds a BadgeSet from stored badge names, ignoring names that
// are no longer in the catalog.
func NewBadgeSet(names []string) BadgeSet {
	set := make(BadgeSet, len(names))
	for _, name := range names {
		if b, ok := ParseBadge(name); ok {
			set[b] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains b.
func (s BadgeSet) Has(b Badge) bool {
	_, ok := s[b]
	return ok
}

// EvaluateBadges evaluates every badge rule against the full activity history
// and returns the badges newly satisfied, in catalog order. Badges already in
// held are never re-emitted, so evaluation is idempotent on unchanged input.
// An empty history yields no badges.
func EvaluateBadges(history []models.ActivityRecord, held BadgeSet) []Badge {
	if len(history) == 0 {
		return nil
	}

	// The store is not trusted to deliver a particular order.
	logs := make([]models.ActivityRecord, len(history))
	copy(logs, history)
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].LogDate.Before(logs[j].LogDate)
	})

	var newly []Badge
	award := func(b Badge, satisfied bool) {
		if satisfied && !held.Has(b) {
			newly = append(newly, b)
		}
	}

	award(FirstSteps, len(logs) >= 1)
	award(WeekWarrior, len(logs) >= 7 && consecutiveTail(logs, 7))
	award(ConsistencyKing, len(logs) >= 30 && consecutiveTail(logs, 30))

	// Emission thresholds are independent: several can land in one pass.
	if len(logs) >= 3 {
		recent := meanTail(logs, 7)
		award(EcoNovice, recent < 2000)
		award(GreenGuardian, recent < 1500)
		award(CarbonCrusher, recent < 1000)
		award(EcoChampion, recent < 500)
	}

	if len(logs) >= 14 {
		firstWeekAvg := meanHead(logs, 7)
		lastWeekAvg := meanTail(logs, 7)
		if firstWeekAvg > 0 {
			reduction := (firstWeekAvg - lastWeekAvg) / firstWeekAvg
			award(ImprovementMaster, reduction >= 0.5)
		}
	}

	return newly
}

// consecutiveTail reports whether the most recent n entries of a
// date-ascending history fall on exactly consecutive calendar days. Only the
// tail window is inspected; gaps earlier in the history do not matter, gaps
// inside the window disqualify it.
func consecutiveTail(logs []models.ActivityRecord, n int) bool {
	if len(logs) < n {
		return false
	}
	tail := logs[len(logs)-n:]
	for i := 1; i < len(tail); i++ {
		prev := tail[i-1].LogDate
		next := tail[i].LogDate
		y1, m1, d1 := prev.AddDate(0, 0, 1).Date()
		y2, m2, d2 := next.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	return true
}

func meanTail(logs []models.ActivityRecord, n int) float64 {
	if len(logs) > n {
		logs = logs[len(logs)-n:]
	}
	return mean(logs)
}

func meanHead(logs []models.ActivityRecord, n int) float64 {
	if len(logs) > n {
		logs = logs[:n]
	}
	return mean(logs)
}

func mean(logs []models.ActivityRecord) float64 {
	if len(logs) == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range logs {
		sum += rec.CO2Grams
	}
	return sum / float64(len(logs))
}
