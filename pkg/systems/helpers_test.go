package systems

import (
	"math/rand"

	"github.com/gonewx/horde/pkg/utils"
)

// testMap 测试用地图：纵向边界固定，可选的阻挡区域
type testMap struct {
	bottom, top float64
	blocked     []utils.Rect
	blockAll    bool
}

func newTestMap() *testMap {
	return &testMap{bottom: -1500, top: 1500}
}

func (m *testMap) IsPositionClear(position utils.Vec2, _ utils.Size) bool {
	if m.blockAll {
		return false
	}
	for _, r := range m.blocked {
		if r.Contains(position) {
			return false
		}
	}
	return true
}

func (m *testMap) VerticalBounds() (float64, float64) {
	return m.bottom, m.top
}

func newTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
