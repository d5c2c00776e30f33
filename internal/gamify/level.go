package gamify

import "fmt"

// Level is a named score band. Bands are contiguous and exhaustive over
// [0, inf); Diamond is unbounded above.
type Level int

const (
	Bronze Level = iota
	Silver
	Gold
	Platinum
	Diamond
)

type levelBand struct {
	name  string
	color string
	min   int
	max   int // -1 means unbounded
}

var levelBands = [...]levelBand{
	Bronze:   {name: "Bronze", color: "#CD7F32", min: 0, max: 100},
	Silver:   {name: "Silver", color: "#C0C0C0", min: 101, max: 250},
	Gold:     {name: "Gold", color: "#FFD700", min: 251, max: 500},
	Platinum: {name: "Platinum", color: "#E5E4E2", min: 501, max: 1000},
	Diamond:  {name: "Diamond", color: "#B9F2FF", min: 1001, max: -1},
}

// Levels returns all levels in ascending order.
func Levels() []Level {
	return []Level{Bronze, Silver, Gold, Platinum, Diamond}
}

func (l Level) String() string { return levelBands[l].name }

// Color returns the display color associated with the level.
func (l Level) Color() string { return levelBands[l].color }

// MinScore returns the inclusive lower bound of the level's score band.
func (l Level) MinScore() int { return levelBands[l].min }

// MaxScore returns the inclusive upper bound of the level's score band and
// false when the band is unbounded.
func (l Level) MaxScore() (int, bool) {
	if levelBands[l].max < 0 {
		return 0, false
	}
	return levelBands[l].max, true
}

// ParseLevel maps a stored level name back to its Level.
func ParseLevel(name string) (Level, error) {
	for _, l := range Levels() {
		if l.String() == name {
			return l, nil
		}
	}
	return Bronze, fmt.Errorf("unknown level %q", name)
}

// LevelForScore returns the unique level whose band contains totalScore.
// Negative scores clamp to Bronze.
func LevelForScore(totalScore int) Level {
	for _, l := range Levels() {
		max, bounded := l.MaxScore()
		if !bounded || totalScore <= max {
			return l
		}
	}
	return Diamond
}

// Progress returns the position of totalScore inside its level band as a
// percentage clamped to [0, 100]. The unbounded top band always reports 100.
func Progress(totalScore int) float64 {
	l := LevelForScore(totalScore)
	max, bounded := l.MaxScore()
	if !bounded {
		return 100.0
	}
	span := max - l.MinScore()
	percent := float64(totalScore-l.MinScore()) / float64(span) * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// NextLevel reports the level above totalScore's band and how many points
// are still needed to reach it. ok is false at the top band.
func NextLevel(totalScore int) (next Level, pointsNeeded int, ok bool) {
	l := LevelForScore(totalScore)
	if l == Diamond {
		return Diamond, 0, false
	}
	next = l + 1
	pointsNeeded = next.MinScore() - totalScore
	if pointsNeeded < 0 {
		pointsNeeded = 0
	}
	return next, pointsNeeded, true
}
