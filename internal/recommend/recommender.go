// Package recommend selects eco tips from a static catalog based on a user's
// highest-impact activities.
package recommend

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"ecomind/tracker-service/internal/emission"
	"ecomind/tracker-service/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Tip is one actionable recommendation from the catalog.
type Tip struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	CO2Savings  int    `yaml:"co2_savings" json:"co2_savings"`
	Difficulty  string `yaml:"difficulty" json:"difficulty"`
}

// CategoryGeneral holds tips that apply regardless of activity profile.
const CategoryGeneral = "general"

// breakdown component -> catalog category
var categoryFor = map[string]string{
	"emails":        "email",
	"video_calls":   "video_calls",
	"streaming":     "streaming",
	"cloud_storage": "cloud_storage",
	"device_usage":  "device_usage",
}

// Recommender draws tips from the embedded catalog. The random source is
// injected so tests can make selection deterministic.
type Recommender struct {
	catalog map[string][]Tip

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRecommender loads the embedded catalog. A nil source seeds from the
// default shared source behavior with a fixed seed of the caller's choosing
// being preferred for tests.
func NewRecommender(src rand.Source) (*Recommender, error) {
	var catalog map[string][]Tip
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse tip catalog: %w", err)
	}
	if len(catalog[CategoryGeneral]) == 0 {
		return nil, fmt.Errorf("tip catalog has no %s category", CategoryGeneral)
	}

	if src == nil {
		src = rand.NewSource(rand.Int63())
	}
	return &Recommender{
		catalog: catalog,
		rng:     rand.New(src),
	}, nil
}

// ByCategory returns every tip in a category.
func (r *Recommender) ByCategory(category string) []Tip {
	return r.catalog[category]
}

// ForActivity returns up to three tips targeting the highest-impact
// activities of one day's log, padded with general tips.
func (r *Recommender) ForActivity(a emission.Activity) []Tip {
	impact := emission.Breakdown(a)

	type weighted struct {
		component string
		grams     float64
	}
	ranked := make([]weighted, 0, len(impact))
	for component, grams := range impact {
		ranked = append(ranked, weighted{component, grams})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].grams != ranked[j].grams {
			return ranked[i].grams > ranked[j].grams
		}
		return ranked[i].component < ranked[j].component
	})

	var tips []Tip
	for _, w := range ranked {
		if len(tips) == 3 {
			break
		}
		if w.grams <= 0 {
			continue
		}
		if tip, ok := r.pick(categoryFor[w.component], nil); ok {
			tips = append(tips, tip)
		}
	}

	return r.fillGeneral(tips, 3)
}

// General returns three random easy tips for users without history.
func (r *Recommender) General() []Tip {
	var easy []Tip
	for _, tips := range r.catalog {
		for _, tip := range tips {
			if tip.Difficulty == "easy" {
				easy = append(easy, tip)
			}
		}
	}
	sort.Slice(easy, func(i, j int) bool { return easy[i].Title < easy[j].Title })

	r.mu.Lock()
	r.rng.Shuffle(len(easy), func(i, j int) { easy[i], easy[j] = easy[j], easy[i] })
	r.mu.Unlock()

	if len(easy) > 3 {
		easy = easy[:3]
	}
	return easy
}

// ForHistory returns tips tuned to usage patterns over the full history:
// heavy average use of an activity earns harder tips.
func (r *Recommender) ForHistory(history []models.ActivityRecord) []Tip {
	if len(history) == 0 {
		return r.General()
	}

	n := float64(len(history))
	averages := map[string]float64{
		"email":         0,
		"video_calls":   0,
		"streaming":     0,
		"cloud_storage": 0,
		"device_usage":  0,
	}
	for _, rec := range history {
		averages["email"] += float64(rec.Emails) / n
		averages["video_calls"] += rec.VideoCallHours / n
		averages["streaming"] += rec.StreamingHours / n
		averages["cloud_storage"] += rec.CloudStorageGB / n
		averages["device_usage"] += rec.DeviceUsageHours / n
	}

	categories := make([]string, 0, len(averages))
	for category := range averages {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var tips []Tip
	for _, category := range categories {
		avg := averages[category]
		var difficulty string
		switch {
		case avg > 50:
			difficulty = "hard"
		case avg > 20:
			difficulty = "medium"
		default:
			continue
		}
		want := difficulty
		if tip, ok := r.pick(category, &want); ok {
			tips = append(tips, tip)
		}
	}

	tips = r.fillGeneral(tips, 3)
	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}

// pick draws one random tip from a category, optionally filtered by
// difficulty.
func (r *Recommender) pick(category string, difficulty *string) (Tip, bool) {
	candidates := r.catalog[category]
	if difficulty != nil {
		var filtered []Tip
		for _, tip := range candidates {
			if tip.Difficulty == *difficulty {
				filtered = append(filtered, tip)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 0 {
		return Tip{}, false
	}

	r.mu.Lock()
	tip := candidates[r.rng.Intn(len(candidates))]
	r.mu.Unlock()
	return tip, true
}

func (r *Recommender) fillGeneral(tips []Tip, target int) []Tip {
	general := r.catalog[CategoryGeneral]
	for i := 0; len(tips) < target && i < len(general)*2; i++ {
		tip, ok := r.pick(CategoryGeneral, nil)
		if !ok {
			break
		}
		if !containsTip(tips, tip) {
			tips = append(tips, tip)
		}
	}
	// Deterministic top-up when random draws kept colliding.
	for _, tip := range general {
		if len(tips) >= target {
			break
		}
		if !containsTip(tips, tip) {
			tips = append(tips, tip)
		}
	}
	return tips
}

func containsTip(tips []Tip, tip Tip) bool {
	for _, t := range tips {
		if t.Title == tip.Title {
			return true
		}
	}
	return false
}
