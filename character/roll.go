package character

import (
	"math"
	"slices"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/model"
)

// RollResult is one set of six ability scores.
type RollResult struct {
	Attributes model.Attributes `json:"attributes"`
	Values     []int            `json:"values"`
	Total      int              `json:"total"`
	Average    float64          `json:"average"`
	RawAverage float64          `json:"raw_average"`
}

// RollAbility rolls 4d6 and sums the highest three.
func RollAbility(r Roller) (int, error) {
	rolls, err := r.RollN(4, 6)
	if err != nil {
		return 0, apperr.Wrap(err, "roll 4d6")
	}
	if len(rolls) != 4 {
		return 0, apperr.Newf(apperr.CodeInternal, "roller returned %d dice, want 4", len(rolls))
	}
	sorted := slices.Clone(rolls)
	slices.Sort(sorted)
	return sorted[1] + sorted[2] + sorted[3], nil
}

// RollAttributes rolls one score per attribute, in AttributeNames order.
func RollAttributes(r Roller) (RollResult, error) {
	values := make([]int, len(model.AttributeNames))
	total := 0
	for i := range values {
		v, err := RollAbility(r)
		if err != nil {
			return RollResult{}, err
		}
		values[i] = v
		total += v
	}
	raw := float64(total) / float64(len(values))
	return RollResult{
		Attributes: model.Attributes{
			Strength:     values[0],
			Dexterity:    values[1],
			Constitution: values[2],
			Intelligence: values[3],
			Wisdom:       values[4],
			Charisma:     values[5],
		},
		Values:     values,
		Total:      total,
		Average:    round1(raw),
		RawAverage: raw,
	}, nil
}

// RollAttributes rolls with the service's roller.
func (svc *Service) RollAttributes() (RollResult, error) {
	return RollAttributes(svc.roller)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
