package game

import (
	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/utils"
)

// RectMap 由矩形障碍物组成的简单地图
// 实现 systems.MapQuery，供调试界面、批量模拟和测试使用
type RectMap struct {
	bottom, top float64
	obstacles   []utils.Rect
}

// NewRectMap 创建地图
func NewRectMap(bottom, top float64, obstacles ...utils.Rect) *RectMap {
	return &RectMap{bottom: bottom, top: top, obstacles: obstacles}
}

// NewRectMapFromConfig 按配置的纵向边界和 map.obstacles 创建地图
// extra 追加在配置障碍物之后
func NewRectMapFromConfig(cfg *config.SimulationConfig, extra ...utils.Rect) *RectMap {
	obstacles := make([]utils.Rect, 0, len(cfg.Map.Obstacles)+len(extra))
	obstacles = append(obstacles, cfg.Map.Obstacles...)
	obstacles = append(obstacles, extra...)
	return NewRectMap(cfg.Map.Bottom, cfg.Map.Top, obstacles...)
}

// Obstacles 所有障碍物
func (m *RectMap) Obstacles() []utils.Rect {
	return m.obstacles
}

// IsPositionClear 以 position 为中心的占地矩形不与任何障碍物相交
func (m *RectMap) IsPositionClear(position utils.Vec2, footprint utils.Size) bool {
	if position.Y < m.bottom || position.Y > m.top {
		return false
	}
	body := utils.RectFromCenter(position, footprint)
	for _, o := range m.obstacles {
		if body.Intersects(o) {
			return false
		}
	}
	return true
}

// VerticalBounds 纵向边界
func (m *RectMap) VerticalBounds() (float64, float64) {
	return m.bottom, m.top
}
