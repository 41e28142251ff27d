package systems

import (
	"testing"

	"github.com/gonewx/horde/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFootprint = utils.Size{Width: 25, Height: 25}

// TestFindSpawnPositionDeterministic 相同种子、相同输入得到相同结果
func TestFindSpawnPositionDeterministic(t *testing.T) {
	occupied := []utils.Rect{utils.RectFromCenter(utils.Vec2{X: 300, Y: 300}, testFootprint)}

	run := func() (utils.Vec2, bool, int) {
		s := NewSpawnPlacementSystem(newTestRNG(42), newTestMap(), 1280, 100)
		pos, ok := s.FindSpawnPosition(200, utils.Vec2{}, testFootprint, 0, occupied)
		return pos, ok, s.Attempts()
	}

	pos1, ok1, attempts1 := run()
	pos2, ok2, attempts2 := run()

	require.True(t, ok1)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, pos1, pos2)
	assert.Equal(t, attempts1, attempts2)
}

func TestFindSpawnPositionNoSolutionIsDeterministic(t *testing.T) {
	run := func() (bool, int) {
		s := NewSpawnPlacementSystem(newTestRNG(7), newTestMap(), 1280, 100)
		_, ok := s.FindSpawnPosition(1e9, utils.Vec2{}, testFootprint, 0, nil)
		return ok, s.Attempts()
	}

	ok1, attempts1 := run()
	ok2, attempts2 := run()
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.Equal(t, 100, attempts1, "耗尽全部采样次数")
	assert.Equal(t, attempts1, attempts2)
}

func TestFindSpawnPositionRespectsConstraints(t *testing.T) {
	s := NewSpawnPlacementSystem(newTestRNG(1), newTestMap(), 1280, 100)
	origin := utils.Vec2{X: 50, Y: -20}

	for i := 0; i < 200; i++ {
		pos, ok := s.FindSpawnPosition(200, origin, testFootprint, 600, nil)
		require.True(t, ok)

		d := pos.Distance(origin)
		assert.GreaterOrEqual(t, d, 200.0)
		assert.LessOrEqual(t, d, 600.0)

		area := s.SamplingArea(testFootprint)
		assert.True(t, area.Contains(pos), "位置必须在采样区域内")
		assert.LessOrEqual(t, pos.X, 1280/2-testFootprint.Width/2)
	}
}

func TestFindSpawnPositionRejections(t *testing.T) {
	tests := []struct {
		name      string
		mapQuery  *testMap
		occupied  []utils.Rect
		footprint utils.Size
		wantTries int
	}{
		{
			name:      "地图处处有障碍",
			mapQuery:  &testMap{bottom: -100, top: 100, blockAll: true},
			footprint: testFootprint,
			wantTries: 100,
		},
		{
			name:      "敌人占满采样区域",
			mapQuery:  &testMap{bottom: -100, top: 100},
			occupied:  []utils.Rect{{Min: utils.Vec2{X: -1000, Y: -1000}, Max: utils.Vec2{X: 1000, Y: 1000}}},
			footprint: testFootprint,
			wantTries: 100,
		},
		{
			name:      "占地比视口还宽",
			mapQuery:  newTestMap(),
			footprint: utils.Size{Width: 2000, Height: 10},
			wantTries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpawnPlacementSystem(newTestRNG(3), tt.mapQuery, 1280, 0)
			_, ok := s.FindSpawnPosition(0, utils.Vec2{}, tt.footprint, 0, tt.occupied)
			assert.False(t, ok)
			assert.Equal(t, tt.wantTries, s.Attempts())
		})
	}
}

func TestPlacementCheckFunctions(t *testing.T) {
	origin := utils.Vec2{}
	assert.True(t, CheckExclusionRadius(utils.Vec2{X: 200}, origin, 200), "恰好等于半径视为合法")
	assert.False(t, CheckExclusionRadius(utils.Vec2{X: 199}, origin, 200))

	assert.True(t, CheckMaxRadius(utils.Vec2{X: 1e6}, origin, 0), "0 表示不限制")
	assert.False(t, CheckMaxRadius(utils.Vec2{X: 601}, origin, 600))

	occupied := []utils.Rect{utils.RectFromCenter(utils.Vec2{X: 10, Y: 10}, testFootprint)}
	assert.False(t, CheckUnoccupied(utils.Vec2{X: 10, Y: 10}, occupied))
	assert.True(t, CheckUnoccupied(utils.Vec2{X: 100, Y: 10}, occupied))
}
