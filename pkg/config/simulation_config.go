package config

import (
	"fmt"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/embedded"
	"github.com/gonewx/horde/pkg/utils"
	"gopkg.in/yaml.v3"
)

// DefaultSimulationConfigPath 内置配置文件路径（嵌入在二进制中）
const DefaultSimulationConfigPath = "data/simulation.yaml"

// 生成失败处理策略
const (
	// SpawnRetryNone 放置失败时本次节拍不再重试，配额留到下一次节拍
	SpawnRetryNone = "none"
	// SpawnRetrySameTick 放置失败时在同一节拍内最多重试 MaxSpawnRetries 次
	SpawnRetrySameTick = "sameTick"
)

// 清场波次与宽限期的关系
const (
	// ClearanceGraceImmediate 待击败数归零时立即切换，取消正在进行的宽限倒计时
	ClearanceGraceImmediate = "immediate"
	// ClearanceGraceAfterGrace 宽限倒计时若已开始，等待其结束后再切换
	ClearanceGraceAfterGrace = "afterGrace"
)

// ViewportConfig 视口尺寸（世界单位）
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// MapConfig 地图纵向边界与静态障碍物
type MapConfig struct {
	Bottom float64 `yaml:"bottom"`
	Top    float64 `yaml:"top"`
	// Obstacles 世界坐标矩形，敌人不会生成或被重新安置到与之相交的位置
	Obstacles []utils.Rect `yaml:"obstacles"`
}

// PlacementConfig 生成位置求解参数
type PlacementConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
	// RegularExcludeRadius 普通敌人与玩家的最小生成距离
	RegularExcludeRadius float64 `yaml:"regularExcludeRadius"`
	// SpecialRadiusMultiplier 冲锋/自爆敌人的排斥半径倍数
	SpecialRadiusMultiplier float64 `yaml:"specialRadiusMultiplier"`
	// DespawnDistance 最大生成距离，<= 0 表示不限制
	DespawnDistance float64 `yaml:"despawnDistance"`
}

// ChargerConfig 冲锋敌人参数
type ChargerConfig struct {
	Footprint       utils.Size `yaml:"footprint"`
	BurstInterval   float64    `yaml:"burstInterval"`
	BurstDuration   float64    `yaml:"burstDuration"`
	BurstMultiplier float64    `yaml:"burstMultiplier"`
}

// ExploderConfig 自爆敌人参数
type ExploderConfig struct {
	Footprint         utils.Size `yaml:"footprint"`
	ExplosionRange    float64    `yaml:"explosionRange"`
	ExplosionCooldown float64    `yaml:"explosionCooldown"`
	PreparationTime   float64    `yaml:"preparationTime"`
}

// BossConfig Boss 参数
type BossConfig struct {
	Footprint       utils.Size `yaml:"footprint"`
	SpeedMultiplier float64    `yaml:"speedMultiplier"` // 相对 zombieSpeed
}

// SeparationConfig 重叠分离参数
type SeparationConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Padding    float64 `yaml:"padding"`    // 目标距离 = 半宽之和 + Padding
	PushFactor float64 `yaml:"pushFactor"` // 每帧推开重叠量的比例
}

// InactivityConfig 不活跃剔除参数
type InactivityConfig struct {
	Enabled           bool    `yaml:"enabled"`
	PositionThreshold float64 `yaml:"positionThreshold"`
	Duration          float64 `yaml:"duration"`
	// FarDistanceFactor 远离玩家的判定距离 = 视口宽度 × FarDistanceFactor
	FarDistanceFactor float64 `yaml:"farDistanceFactor"`
}

// RelocationConfig 掉队敌人重定位参数
type RelocationConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Radius      float64 `yaml:"radius"`      // 超出此距离的敌人被移回玩家附近
	Distance    float64 `yaml:"distance"`    // 新位置与玩家的距离
	SafeRadius  float64 `yaml:"safeRadius"`  // 新位置与玩家的最小距离
	MaxAttempts int     `yaml:"maxAttempts"` // 每个敌人的采样上限
}

// DamageCooldownConfig 各伤害来源的冷却（秒）
type DamageCooldownConfig struct {
	Contact float64 `yaml:"contact"`
	Area    float64 `yaml:"area"`
	Shield  float64 `yaml:"shield"`
}

// EnemiesConfig 敌人相关配置
type EnemiesConfig struct {
	RegularFootprint utils.Size           `yaml:"regularFootprint"`
	Charger          ChargerConfig        `yaml:"charger"`
	Exploder         ExploderConfig       `yaml:"exploder"`
	Boss             BossConfig           `yaml:"boss"`
	Separation       SeparationConfig     `yaml:"separation"`
	Inactivity       InactivityConfig     `yaml:"inactivity"`
	Relocation       RelocationConfig     `yaml:"relocation"`
	DamageCooldowns  DamageCooldownConfig `yaml:"damageCooldowns"`
}

// DirectorConfig 波次导演配置
type DirectorConfig struct {
	InitialGracePeriod    float64               `yaml:"initialGracePeriod"`
	MinGracePeriod        float64               `yaml:"minGracePeriod"`
	GraceReductionPerBoss float64               `yaml:"graceReductionPerBoss"`
	BossIntroDelay        float64               `yaml:"bossIntroDelay"`
	PostBossDelay         float64               `yaml:"postBossDelay"`
	InitialStats          components.EnemyStats `yaml:"initialStats"`
	BossDefeatBonus       components.EnemyStats `yaml:"bossDefeatBonus"`
	SpawnRetry            string                `yaml:"spawnRetry"`
	MaxSpawnRetries       int                   `yaml:"maxSpawnRetries"`
	ClearanceGrace        string                `yaml:"clearanceGrace"`
	ArenaCenter           utils.Vec2            `yaml:"arenaCenter"`
	ArenaInset            utils.Size            `yaml:"arenaInset"`
	BossSpawnOffsetY      float64               `yaml:"bossSpawnOffsetY"`
}

// DifficultyConfig 循环升级配置
type DifficultyConfig struct {
	CountMultiplier   int     `yaml:"countMultiplier"`
	Compound          bool    `yaml:"compound"` // true 时倍数按循环次数累乘
	IntervalReduction float64 `yaml:"intervalReduction"`
	MinSpawnInterval  float64 `yaml:"minSpawnInterval"`
}

// SimulationConfig 模拟核心的完整配置
type SimulationConfig struct {
	// TickRate 速度参数的参考帧率（速度单位为"每参考帧移动距离"）
	TickRate   float64                    `yaml:"tickRate"`
	Viewport   ViewportConfig             `yaml:"viewport"`
	Map        MapConfig                  `yaml:"map"`
	Placement  PlacementConfig            `yaml:"placement"`
	Enemies    EnemiesConfig              `yaml:"enemies"`
	Director   DirectorConfig             `yaml:"director"`
	Difficulty DifficultyConfig           `yaml:"difficulty"`
	Waves      []components.WaveComponent `yaml:"waves"`
}

// DefaultBaseWaves 基础循环的 7 个波次
func DefaultBaseWaves() []components.WaveComponent {
	return []components.WaveComponent{
		{WaveNumber: 1, RegularEnemies: 10, SpawnInterval: 3.0},
		{WaveNumber: 2, RegularEnemies: 15, SpawnInterval: 2.8},
		{WaveNumber: 3, RegularEnemies: 30, IsHorde: true, SpawnInterval: 1.0},
		{WaveNumber: 4, RegularEnemies: 30, ChargerEnemies: 5, SpawnInterval: 2.3},
		{WaveNumber: 5, RegularEnemies: 30, ChargerEnemies: 5, ExploderEnemies: 5, SpawnInterval: 2.1},
		{WaveNumber: 6, RegularEnemies: 30, ChargerEnemies: 8, ExploderEnemies: 8, IsHorde: true, SpawnInterval: 1.0, RequiresFullClearance: true},
		{WaveNumber: 7, IsBoss: true},
	}
}

// DefaultSimulationConfig 返回内置默认配置
// 与 data/simulation.yaml 的内容保持一致，库使用者和测试无需读取文件
func DefaultSimulationConfig() *SimulationConfig {
	return &SimulationConfig{
		TickRate: 60,
		Viewport: ViewportConfig{Width: 1280, Height: 720},
		Map: MapConfig{
			Bottom: -1500,
			Top:    1500,
			Obstacles: []utils.Rect{
				{Min: utils.Vec2{X: -900, Y: 400}, Max: utils.Vec2{X: -700, Y: 520}},
				{Min: utils.Vec2{X: 600, Y: -650}, Max: utils.Vec2{X: 820, Y: -520}},
			},
		},
		Placement: PlacementConfig{
			MaxAttempts:             100,
			RegularExcludeRadius:    200,
			SpecialRadiusMultiplier: 1.6,
			DespawnDistance:         0,
		},
		Enemies: EnemiesConfig{
			RegularFootprint: utils.Size{Width: 25, Height: 25},
			Charger: ChargerConfig{
				Footprint:       utils.Size{Width: 30, Height: 30},
				BurstInterval:   3.0,
				BurstDuration:   0.6,
				BurstMultiplier: 3.0,
			},
			Exploder: ExploderConfig{
				Footprint:         utils.Size{Width: 28, Height: 28},
				ExplosionRange:    100,
				ExplosionCooldown: 1.0,
				PreparationTime:   2.0,
			},
			Boss: BossConfig{
				Footprint:       utils.Size{Width: 80, Height: 80},
				SpeedMultiplier: 1.0,
			},
			Separation: SeparationConfig{Enabled: true, Padding: 10, PushFactor: 0.1},
			Inactivity: InactivityConfig{
				Enabled:           true,
				PositionThreshold: 50,
				Duration:          15,
				FarDistanceFactor: 0.5,
			},
			Relocation: RelocationConfig{
				Enabled:     false,
				Radius:      400,
				Distance:    250,
				SafeRadius:  150,
				MaxAttempts: 100,
			},
			DamageCooldowns: DamageCooldownConfig{Contact: 1.0, Area: 0.5, Shield: 0.5},
		},
		Director: DirectorConfig{
			InitialGracePeriod:    7.0,
			MinGracePeriod:        1.0,
			GraceReductionPerBoss: 2.0,
			BossIntroDelay:        3.0,
			PostBossDelay:         3.0,
			InitialStats:          components.EnemyStats{ZombieHealth: 3, ZombieSpeed: 0.4, WizardHealth: 15},
			BossDefeatBonus:       components.EnemyStats{ZombieHealth: 3, ZombieSpeed: 0.1, WizardHealth: 15},
			SpawnRetry:            SpawnRetryNone,
			MaxSpawnRetries:       3,
			ClearanceGrace:        ClearanceGraceImmediate,
			ArenaCenter:           utils.Vec2{},
			ArenaInset:            utils.Size{Width: 75, Height: 200},
			BossSpawnOffsetY:      100,
		},
		Difficulty: DifficultyConfig{
			CountMultiplier:   2,
			Compound:          false,
			IntervalReduction: 1.0,
			MinSpawnInterval:  0.5,
		},
		Waves: DefaultBaseWaves(),
	}
}

// LoadSimulationConfig 从 YAML 文件加载模拟配置
// 参数：
//
//	path - 配置文件路径，"data/" 开头时从嵌入资源读取
//
// 返回：
//
//	*SimulationConfig - 在默认值基础上覆盖文件内容后的配置
//	error - 如果文件读取、解析或校验失败，返回错误信息
func LoadSimulationConfig(path string) (*SimulationConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config %s: %w", path, err)
	}

	cfg, err := ParseSimulationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid simulation config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseSimulationConfig 解析 YAML 内容，未出现的字段保留默认值
func ParseSimulationConfig(data []byte) (*SimulationConfig, error) {
	cfg := DefaultSimulationConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize 补全可推导的字段
func (c *SimulationConfig) normalize() {
	for i := range c.Waves {
		if c.Waves[i].WaveNumber == 0 {
			c.Waves[i].WaveNumber = i + 1
		}
	}
	if c.Director.SpawnRetry == "" {
		c.Director.SpawnRetry = SpawnRetryNone
	}
	if c.Director.ClearanceGrace == "" {
		c.Director.ClearanceGrace = ClearanceGraceImmediate
	}
}

// Validate 验证配置的完整性和合法性
func (c *SimulationConfig) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tickRate must be positive, got %v", c.TickRate)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Map.Top <= c.Map.Bottom {
		return fmt.Errorf("map top (%v) must be above bottom (%v)", c.Map.Top, c.Map.Bottom)
	}
	for i, o := range c.Map.Obstacles {
		if o.IsEmpty() {
			return fmt.Errorf("map.obstacles[%d] is empty: min=%v max=%v", i, o.Min, o.Max)
		}
	}
	if c.Placement.MaxAttempts < 1 {
		return fmt.Errorf("placement.maxAttempts must be at least 1, got %d", c.Placement.MaxAttempts)
	}
	if c.Placement.RegularExcludeRadius < 0 || c.Placement.SpecialRadiusMultiplier < 0 {
		return fmt.Errorf("placement radii cannot be negative")
	}

	if err := c.validateEnemies(); err != nil {
		return fmt.Errorf("enemies: %w", err)
	}
	if err := c.validateDirector(); err != nil {
		return fmt.Errorf("director: %w", err)
	}
	if err := c.validateDifficulty(); err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}
	if err := ValidateWaves(c.Waves); err != nil {
		return fmt.Errorf("waves: %w", err)
	}
	return nil
}

func (c *SimulationConfig) validateEnemies() error {
	e := c.Enemies
	footprints := []struct {
		name string
		size utils.Size
	}{
		{"regular", e.RegularFootprint},
		{"charger", e.Charger.Footprint},
		{"exploder", e.Exploder.Footprint},
		{"boss", e.Boss.Footprint},
	}
	for _, fp := range footprints {
		if fp.size.Width <= 0 || fp.size.Height <= 0 {
			return fmt.Errorf("%s footprint must be positive, got %vx%v", fp.name, fp.size.Width, fp.size.Height)
		}
	}
	if e.Charger.BurstInterval <= 0 || e.Charger.BurstDuration < 0 || e.Charger.BurstMultiplier < 1 {
		return fmt.Errorf("charger burst settings invalid: interval=%v duration=%v multiplier=%v",
			e.Charger.BurstInterval, e.Charger.BurstDuration, e.Charger.BurstMultiplier)
	}
	if e.Exploder.ExplosionRange <= 0 || e.Exploder.PreparationTime <= 0 || e.Exploder.ExplosionCooldown < 0 {
		return fmt.Errorf("exploder settings invalid: range=%v preparation=%v cooldown=%v",
			e.Exploder.ExplosionRange, e.Exploder.PreparationTime, e.Exploder.ExplosionCooldown)
	}
	if e.Separation.PushFactor < 0 || e.Separation.PushFactor > 1 {
		return fmt.Errorf("separation.pushFactor must be within [0,1], got %v", e.Separation.PushFactor)
	}
	if e.Inactivity.Enabled && (e.Inactivity.Duration <= 0 || e.Inactivity.PositionThreshold < 0) {
		return fmt.Errorf("inactivity settings invalid: duration=%v threshold=%v",
			e.Inactivity.Duration, e.Inactivity.PositionThreshold)
	}
	if e.Relocation.Enabled && (e.Relocation.MaxAttempts < 1 || e.Relocation.Distance < e.Relocation.SafeRadius) {
		return fmt.Errorf("relocation settings invalid: distance=%v safeRadius=%v attempts=%d",
			e.Relocation.Distance, e.Relocation.SafeRadius, e.Relocation.MaxAttempts)
	}
	return nil
}

func (c *SimulationConfig) validateDirector() error {
	d := c.Director
	if d.InitialGracePeriod < 0 || d.MinGracePeriod < 0 || d.GraceReductionPerBoss < 0 {
		return fmt.Errorf("grace period settings cannot be negative")
	}
	if d.BossIntroDelay < 0 || d.PostBossDelay < 0 {
		return fmt.Errorf("boss delays cannot be negative")
	}
	if d.InitialStats.ZombieHealth <= 0 || d.InitialStats.WizardHealth <= 0 {
		return fmt.Errorf("initial health must be positive")
	}
	if d.InitialStats.ZombieSpeed < 0 {
		return fmt.Errorf("initial zombie speed cannot be negative")
	}
	switch d.SpawnRetry {
	case SpawnRetryNone, SpawnRetrySameTick:
	default:
		return fmt.Errorf("unknown spawnRetry %q (expected %q or %q)", d.SpawnRetry, SpawnRetryNone, SpawnRetrySameTick)
	}
	if d.MaxSpawnRetries < 0 {
		return fmt.Errorf("maxSpawnRetries cannot be negative, got %d", d.MaxSpawnRetries)
	}
	switch d.ClearanceGrace {
	case ClearanceGraceImmediate, ClearanceGraceAfterGrace:
	default:
		return fmt.Errorf("unknown clearanceGrace %q (expected %q or %q)", d.ClearanceGrace, ClearanceGraceImmediate, ClearanceGraceAfterGrace)
	}
	return nil
}

func (c *SimulationConfig) validateDifficulty() error {
	d := c.Difficulty
	if d.CountMultiplier < 1 {
		return fmt.Errorf("countMultiplier must be at least 1, got %d", d.CountMultiplier)
	}
	if d.IntervalReduction < 0 {
		return fmt.Errorf("intervalReduction cannot be negative, got %v", d.IntervalReduction)
	}
	if d.MinSpawnInterval <= 0 {
		return fmt.Errorf("minSpawnInterval must be positive, got %v", d.MinSpawnInterval)
	}
	return nil
}

// ValidateWaves 验证波次循环定义
func ValidateWaves(waves []components.WaveComponent) error {
	if len(waves) == 0 {
		return fmt.Errorf("at least one wave is required")
	}

	hasBoss := false
	for i, w := range waves {
		if w.RegularEnemies < 0 || w.ChargerEnemies < 0 || w.ExploderEnemies < 0 {
			return fmt.Errorf("wave %d: enemy counts cannot be negative", w.WaveNumber)
		}
		if w.IsBoss {
			if hasBoss {
				return fmt.Errorf("wave %d: only one boss wave per cycle is allowed", w.WaveNumber)
			}
			if i != len(waves)-1 {
				return fmt.Errorf("wave %d: boss wave must be the last wave of the cycle", w.WaveNumber)
			}
			hasBoss = true
			continue
		}
		if w.SpawnInterval <= 0 {
			return fmt.Errorf("wave %d: spawnInterval must be positive for non-boss waves, got %v", w.WaveNumber, w.SpawnInterval)
		}
		if w.TotalEnemies() == 0 {
			return fmt.Errorf("wave %d: non-boss wave must contain at least one enemy", w.WaveNumber)
		}
	}
	if !hasBoss {
		return fmt.Errorf("the cycle must end with a boss wave")
	}
	return nil
}
