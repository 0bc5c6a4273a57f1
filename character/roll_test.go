package character_test

import (
	"errors"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/character"
	charactermock "github.com/kasuganosora/middleearth/character/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// scriptedRoller hands out fixed 4d6 results in order.
type scriptedRoller struct {
	sets [][]int
	n    int
}

func (s *scriptedRoller) Roll(int) (int, error) { return 1, nil }

func (s *scriptedRoller) RollN(count, _ int) ([]int, error) {
	set := s.sets[s.n%len(s.sets)]
	s.n++
	return append([]int(nil), set[:count]...), nil
}

func TestRollAbility_DropsLowest(t *testing.T) {
	r := &scriptedRoller{sets: [][]int{{1, 6, 3, 5}}}
	v, err := character.RollAbility(r)
	require.NoError(t, err)
	assert.Equal(t, 14, v)
}

func TestRollAttributes_Scripted(t *testing.T) {
	r := &scriptedRoller{sets: [][]int{
		{6, 6, 6, 1}, // 18
		{1, 1, 1, 1}, // 3
		{2, 3, 4, 5}, // 12
		{4, 4, 4, 4}, // 12
		{6, 5, 1, 2}, // 13
		{3, 3, 2, 6}, // 12
	}}
	res, err := character.RollAttributes(r)
	require.NoError(t, err)
	assert.Equal(t, []int{18, 3, 12, 12, 13, 12}, res.Values)
	assert.Equal(t, 18, res.Attributes.Strength)
	assert.Equal(t, 3, res.Attributes.Dexterity)
	assert.Equal(t, 12, res.Attributes.Charisma)
	assert.Equal(t, 70, res.Total)
	assert.InDelta(t, 70.0/6.0, res.RawAverage, 1e-9)
	assert.Equal(t, 11.7, res.Average)
}

func TestRollAttributes_MockRoller(t *testing.T) {
	ctrl := gomock.NewController(t)
	roller := charactermock.NewMockRoller(ctrl)

	roller.EXPECT().RollN(4, 6).Return([]int{5, 5, 5, 2}, nil).Times(6)

	res, err := character.RollAttributes(roller)
	require.NoError(t, err)
	assert.Equal(t, 90, res.Total)
	assert.Equal(t, 15.0, res.Average)
}

func TestRollAttributes_RollerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	roller := charactermock.NewMockRoller(ctrl)

	boom := errors.New("entropy exhausted")
	roller.EXPECT().RollN(4, 6).Return([]int{6, 6, 6, 6}, nil)
	roller.EXPECT().RollN(4, 6).Return(nil, boom)

	_, err := character.RollAttributes(roller)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestRollAttributes_Distribution(t *testing.T) {
	const trials = 10000
	sum := 0
	for i := 0; i < trials; i++ {
		res, err := character.RollAttributes(dice.DefaultRoller)
		require.NoError(t, err)
		for _, v := range res.Values {
			require.GreaterOrEqual(t, v, 3)
			require.LessOrEqual(t, v, 18)
		}
		sum += res.Total
	}
	mean := float64(sum) / float64(trials*6)
	assert.InDelta(t, 12.24, mean, 0.1)
}
