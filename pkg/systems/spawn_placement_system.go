package systems

import (
	"log"
	"math/rand"

	"github.com/gonewx/horde/pkg/utils"
)

// DefaultMaxPlacementAttempts 默认采样次数上限
const DefaultMaxPlacementAttempts = 100

// MapQuery 地图查询接口（外部协作者）
type MapQuery interface {
	// IsPositionClear 位置是否没有静态障碍物
	IsPositionClear(position utils.Vec2, footprint utils.Size) bool
	// VerticalBounds 地图的纵向边界
	VerticalBounds() (bottom, top float64)
}

// SpawnPlacementSystem 生成位置求解系统
//
// 在可玩区域内均匀采样候选点，逐一检查约束，返回第一个合法位置。
// 采样区域：X ∈ [-视口宽/2 + 占地宽/2, 视口宽/2 - 占地宽/2]，Y ∈ [地图底边, 地图顶边]。
//
// 每次采样依次从随机源取 X、Y 两个值，因此同一种子、同样输入下结果可复现。
type SpawnPlacementSystem struct {
	rng           *rand.Rand
	mapQuery      MapQuery
	viewportWidth float64
	maxAttempts   int

	// lastAttempts 最近一次 FindSpawnPosition 使用的采样次数
	lastAttempts int

	verbose bool
}

// NewSpawnPlacementSystem 创建生成位置求解系统
//
// 参数：
//   - rng: 专用随机源（不要与其他系统共享，否则会破坏可复现性）
//   - mapQuery: 地图查询协作者
//   - viewportWidth: 视口宽度，决定横向采样范围
//   - maxAttempts: 采样次数上限，<= 0 时使用 DefaultMaxPlacementAttempts
func NewSpawnPlacementSystem(rng *rand.Rand, mapQuery MapQuery, viewportWidth float64, maxAttempts int) *SpawnPlacementSystem {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPlacementAttempts
	}
	return &SpawnPlacementSystem{
		rng:           rng,
		mapQuery:      mapQuery,
		viewportWidth: viewportWidth,
		maxAttempts:   maxAttempts,
	}
}

// SetVerbose 设置是否输出详细日志
func (s *SpawnPlacementSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// SamplingArea 指定占地尺寸下的采样矩形
func (s *SpawnPlacementSystem) SamplingArea(footprint utils.Size) utils.Rect {
	bottom, top := s.mapQuery.VerticalBounds()
	half := s.viewportWidth / 2
	return utils.Rect{
		Min: utils.Vec2{X: -half + footprint.Width/2, Y: bottom},
		Max: utils.Vec2{X: half - footprint.Width/2, Y: top},
	}
}

// FindSpawnPosition 寻找合法的生成位置
//
// 参数：
//   - excludeRadius: 与 excludeOrigin 的最小距离
//   - excludeOrigin: 排斥中心（通常是玩家位置）
//   - footprint: 待生成实体的占地尺寸
//   - maxRadius: 与 excludeOrigin 的最大距离，<= 0 表示不限制
//   - occupied: 现有敌人的占地矩形，候选点落在其中任一矩形内即被拒绝
//
// 返回：
//   - utils.Vec2: 合法位置
//   - bool: false 表示在采样上限内没有找到（调用方应跳过本次生成，而不是报错）
func (s *SpawnPlacementSystem) FindSpawnPosition(
	excludeRadius float64,
	excludeOrigin utils.Vec2,
	footprint utils.Size,
	maxRadius float64,
	occupied []utils.Rect,
) (utils.Vec2, bool) {
	s.lastAttempts = 0

	area := s.SamplingArea(footprint)
	if area.Min.X > area.Max.X || area.Min.Y > area.Max.Y {
		if s.verbose {
			log.Printf("[SpawnPlacementSystem] Sampling area empty for footprint %.0fx%.0f", footprint.Width, footprint.Height)
		}
		return utils.Vec2{}, false
	}

	for s.lastAttempts < s.maxAttempts {
		s.lastAttempts++

		candidate := utils.Vec2{
			X: area.Min.X + s.rng.Float64()*(area.Max.X-area.Min.X),
			Y: area.Min.Y + s.rng.Float64()*(area.Max.Y-area.Min.Y),
		}

		if !CheckExclusionRadius(candidate, excludeOrigin, excludeRadius) {
			continue
		}
		if !CheckMaxRadius(candidate, excludeOrigin, maxRadius) {
			continue
		}
		if !CheckUnoccupied(candidate, occupied) {
			continue
		}
		if !s.mapQuery.IsPositionClear(candidate, footprint) {
			continue
		}
		return candidate, true
	}

	if s.verbose {
		log.Printf("[SpawnPlacementSystem] No valid position after %d attempts (exclude=%.0f max=%.0f)",
			s.lastAttempts, excludeRadius, maxRadius)
	}
	return utils.Vec2{}, false
}

// Attempts 最近一次求解使用的采样次数
func (s *SpawnPlacementSystem) Attempts() int {
	return s.lastAttempts
}

// CheckExclusionRadius 候选点与原点距离不小于排斥半径
// 独立纯函数，无副作用
func CheckExclusionRadius(candidate, origin utils.Vec2, radius float64) bool {
	return candidate.Distance(origin) >= radius
}

// CheckMaxRadius 候选点与原点距离不超过最大半径（maxRadius <= 0 表示不限制）
// 独立纯函数，无副作用
func CheckMaxRadius(candidate, origin utils.Vec2, maxRadius float64) bool {
	if maxRadius <= 0 {
		return true
	}
	return candidate.Distance(origin) <= maxRadius
}

// CheckUnoccupied 候选点不在任何已占用矩形内
// 独立纯函数，无副作用
func CheckUnoccupied(candidate utils.Vec2, occupied []utils.Rect) bool {
	for _, r := range occupied {
		if r.Contains(candidate) {
			return false
		}
	}
	return true
}
