package ranking

import (
	"context"
	"sort"
	"strconv"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/character"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
)

// Entry is one leaderboard row.
type Entry struct {
	Rank         int    `json:"rank"`
	CharacterID  int64  `json:"character_id"`
	Name         string `json:"name"`
	Owner        string `json:"owner"`
	Race         string `json:"race"`
	RaceEmoji    string `json:"race_emoji"`
	Class        string `json:"class"`
	ClassEmoji   string `json:"class_emoji"`
	Level        int    `json:"level"`
	Experience   int64  `json:"experience"`
	CombatPower  int64  `json:"combat_power"`
	MagicalPower int64  `json:"magical_power"`
}

// clampLimit applies the configured default and maximum.
func (svc *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return svc.rules.LeaderboardSize
	}
	return min(limit, svc.rules.LeaderboardMax)
}

// Leaderboard ranks active characters of every user by level, then
// experience, then id. The cached sorted set supplies the candidate ids; the
// database is used directly when the cache is empty or unavailable.
func (svc *Service) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	limit = svc.clampLimit(limit)

	chars, err := svc.fromCache(ctx, limit)
	if err != nil {
		svc.logger.Warn("leaderboard cache unavailable, using database", zap.Error(err))
		chars = nil
	}
	if chars == nil {
		if chars, err = svc.fromDB(ctx, limit); err != nil {
			return nil, err
		}
	}

	owners, err := svc.usernames(ctx, chars)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(chars))
	for i := range chars {
		c := &chars[i]
		e := Entry{
			Rank:         i + 1,
			CharacterID:  c.ID,
			Name:         c.Name,
			Owner:        owners[c.UserID],
			Level:        c.Level,
			Experience:   c.Experience,
			CombatPower:  character.CombatPower(c),
			MagicalPower: character.MagicalPower(c),
		}
		if c.Race != nil {
			e.Race, e.RaceEmoji = c.Race.Name, c.Race.Emoji
		}
		if c.Class != nil {
			e.Class, e.ClassEmoji = c.Class.Name, c.Class.Emoji
		}
		out[i] = e
	}
	return out, nil
}

// fromCache returns nil, nil when the set is empty or holds ids that no
// longer name an active character. Those ids are removed so the next call
// can use the cache again.
func (svc *Service) fromCache(ctx context.Context, limit int) ([]model.Character, error) {
	members, err := svc.cache.ZRevRange(ctx, BoardKey, 0, int64(limit-1))
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	var chars []model.Character
	if err := svc.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Preload("Race").Preload("Class").
		Find(&chars).Error; err != nil {
		return nil, apperr.Wrap(err, "load leaderboard characters")
	}

	if len(chars) < len(members) {
		live := make(map[string]struct{}, len(chars))
		for _, c := range chars {
			live[strconv.FormatInt(c.ID, 10)] = struct{}{}
		}
		var stale []string
		for _, m := range members {
			if _, ok := live[m]; !ok {
				stale = append(stale, m)
			}
		}
		if err := svc.cache.ZRem(ctx, BoardKey, stale...); err != nil {
			svc.logger.Warn("prune leaderboard cache", zap.Strings("members", stale), zap.Error(err))
		}
		return nil, nil
	}
	sortRanked(chars)
	return chars, nil
}

func (svc *Service) fromDB(ctx context.Context, limit int) ([]model.Character, error) {
	var chars []model.Character
	if err := svc.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("level DESC, experience DESC, id ASC").
		Limit(limit).
		Preload("Race").Preload("Class").
		Find(&chars).Error; err != nil {
		return nil, apperr.Wrap(err, "load leaderboard")
	}
	return chars, nil
}

func (svc *Service) usernames(ctx context.Context, chars []model.Character) (map[int64]string, error) {
	out := make(map[int64]string)
	if len(chars) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(chars))
	for _, c := range chars {
		ids = append(ids, c.UserID)
	}
	var users []model.User
	if err := svc.db.WithContext(ctx).
		Select("id, username").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, apperr.Wrap(err, "load leaderboard owners")
	}
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out, nil
}

func sortRanked(chars []model.Character) {
	sort.SliceStable(chars, func(i, j int) bool {
		a, b := chars[i], chars[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.Experience != b.Experience {
			return a.Experience > b.Experience
		}
		return a.ID < b.ID
	})
}
