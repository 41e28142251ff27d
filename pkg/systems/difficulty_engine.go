package systems

import (
	"math"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/config"
)

// maxWaveEnemies 单一种类敌人数上限，防止累乘模式下整数溢出
const maxWaveEnemies = 1 << 20

// DifficultyEngine 难度引擎
// 纯函数集合：循环序号 -> 波次参数，Boss 击败次数 -> 敌人属性
//
// 两种升级机制相互独立：
//   - 循环升级：完成一整轮波次后重建波次表（敌人数 × 倍数，间隔递减）
//   - Boss 升级：每击败一次 Boss，敌人基础属性增加固定值，宽限期缩短
type DifficultyEngine struct {
	difficulty     config.DifficultyConfig
	baseWaves      []components.WaveComponent
	bossBonus      components.EnemyStats
	minGrace       float64
	graceReduction float64
}

// NewDifficultyEngine 创建新的难度引擎实例
func NewDifficultyEngine(cfg *config.SimulationConfig) *DifficultyEngine {
	base := make([]components.WaveComponent, len(cfg.Waves))
	copy(base, cfg.Waves)
	return &DifficultyEngine{
		difficulty:     cfg.Difficulty,
		baseWaves:      base,
		bossBonus:      cfg.Director.BossDefeatBonus,
		minGrace:       cfg.Director.MinGracePeriod,
		graceReduction: cfg.Director.GraceReductionPerBoss,
	}
}

// CountMultiplier 计算指定循环的敌人数倍数
// 公式:
//
//	cycle == 0: 1
//	非累乘: CountMultiplier
//	累乘:   CountMultiplier ^ cycle
func (d *DifficultyEngine) CountMultiplier(cycle int) int {
	if cycle <= 0 {
		return 1
	}
	if !d.difficulty.Compound {
		return d.difficulty.CountMultiplier
	}
	m := 1
	for i := 0; i < cycle; i++ {
		m *= d.difficulty.CountMultiplier
		if m >= maxWaveEnemies {
			return maxWaveEnemies
		}
	}
	return m
}

// SpawnInterval 计算指定循环下的生成间隔
// 间隔递减后不低于 MinSpawnInterval；Boss 波次（间隔 0）保持不变
func (d *DifficultyEngine) SpawnInterval(base float64, cycle int) float64 {
	if cycle <= 0 || base <= 0 {
		return base
	}
	reduction := d.difficulty.IntervalReduction
	if d.difficulty.Compound {
		reduction *= float64(cycle)
	}
	return math.Max(d.difficulty.MinSpawnInterval, base-reduction)
}

// BuildCycle 构建指定循环的完整波次表
// 返回的切片是新分配的，生成进度计数器全部为 0
func (d *DifficultyEngine) BuildCycle(cycle int) []components.WaveComponent {
	mult := d.CountMultiplier(cycle)
	waves := make([]components.WaveComponent, len(d.baseWaves))
	for i, base := range d.baseWaves {
		w := base
		w.SpawnedRegular, w.SpawnedCharger, w.SpawnedExploder = 0, 0, 0
		if !w.IsBoss {
			w.RegularEnemies = scaleCount(w.RegularEnemies, mult)
			w.ChargerEnemies = scaleCount(w.ChargerEnemies, mult)
			w.ExploderEnemies = scaleCount(w.ExploderEnemies, mult)
			w.SpawnInterval = d.SpawnInterval(w.SpawnInterval, cycle)
		}
		waves[i] = w
	}
	return waves
}

// ApplyBossDefeat 计算击败 Boss 后的属性和宽限期
// 参数:
//
//	stats - 当前敌人属性
//	grace - 当前宽限期（秒）
//
// 返回:
//
//	增加固定值后的属性，以及缩短后的宽限期（不低于 MinGracePeriod）
func (d *DifficultyEngine) ApplyBossDefeat(stats components.EnemyStats, grace float64) (components.EnemyStats, float64) {
	stats.ZombieHealth += d.bossBonus.ZombieHealth
	stats.ZombieSpeed += d.bossBonus.ZombieSpeed
	stats.WizardHealth += d.bossBonus.WizardHealth
	return stats, math.Max(d.minGrace, grace-d.graceReduction)
}

// CycleLength 每轮波次数
func (d *DifficultyEngine) CycleLength() int {
	return len(d.baseWaves)
}

func scaleCount(n, mult int) int {
	if n <= 0 {
		return n
	}
	if n > maxWaveEnemies/mult {
		return maxWaveEnemies
	}
	return n * mult
}
