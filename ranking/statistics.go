package ranking

import (
	"context"
	"math"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/model"
)

// Summary is a compact character line inside Statistics.
type Summary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Race       string `json:"race"`
	Class      string `json:"class"`
	Level      int    `json:"level"`
	Experience int64  `json:"experience"`
}

// Statistics aggregates a user's active characters.
type Statistics struct {
	TotalCharacters int       `json:"total_characters"`
	AverageLevel    float64   `json:"average_level"`
	TotalExperience int64     `json:"total_experience"`
	FavoriteRace    string    `json:"favorite_race"`
	FavoriteClass   string    `json:"favorite_class"`
	HighestLevel    int       `json:"highest_level"`
	Characters      []Summary `json:"characters"`
}

// Statistics never fails for a user without characters; it returns zero
// values and empty favorites. Favorite ties go to the name seen first in
// storage order, which the database does not guarantee.
func (svc *Service) Statistics(ctx context.Context, userID int64) (*Statistics, error) {
	var chars []model.Character
	if err := svc.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Preload("Race").Preload("Class").
		Order("id").
		Find(&chars).Error; err != nil {
		return nil, apperr.Wrap(err, "load characters for statistics")
	}

	st := &Statistics{Characters: make([]Summary, 0, len(chars))}
	if len(chars) == 0 {
		return st, nil
	}

	races := newTally()
	classes := newTally()
	levels := 0
	for _, c := range chars {
		s := Summary{ID: c.ID, Name: c.Name, Level: c.Level, Experience: c.Experience}
		if c.Race != nil {
			s.Race = c.Race.Name
			races.add(c.Race.Name)
		}
		if c.Class != nil {
			s.Class = c.Class.Name
			classes.add(c.Class.Name)
		}
		st.Characters = append(st.Characters, s)
		levels += c.Level
		st.TotalExperience += c.Experience
		st.HighestLevel = max(st.HighestLevel, c.Level)
	}
	st.TotalCharacters = len(chars)
	st.AverageLevel = math.Round(float64(levels)/float64(len(chars))*10) / 10
	st.FavoriteRace = races.top()
	st.FavoriteClass = classes.top()
	return st, nil
}

// tally counts names and remembers first-seen order for ties.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally { return &tally{counts: make(map[string]int)} }

func (t *tally) add(name string) {
	if _, seen := t.counts[name]; !seen {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t *tally) top() string {
	best, bestN := "", 0
	for _, name := range t.order {
		if n := t.counts[name]; n > bestN {
			best, bestN = name, n
		}
	}
	return best
}
