// Package game 组装模拟核心：敌人注册表、波次导演、难度引擎和事件队列
//
// Session 是唯一的组合根，宿主（ebiten 调试界面、批量模拟工具、测试）
// 只通过它推进时间、调用战斗钩子、读取表现层数据。
package game

import (
	"encoding/binary"
	"hash/fnv"
	"log"
	"math/rand"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/ecs"
	"github.com/gonewx/horde/pkg/events"
	"github.com/gonewx/horde/pkg/systems"
	"github.com/gonewx/horde/pkg/utils"
)

// 各子系统随机源的标签
const (
	rngLabelPlacement = "placement"
	rngLabelBehavior  = "behavior"
	rngLabelDirector  = "director"
)

// PlayerLocator 玩家位置（只读协作者）
type PlayerLocator interface {
	Position() utils.Vec2
}

// SessionStats 一局模拟的累计统计
type SessionStats struct {
	Spawned        int
	Defeated       map[events.DefeatReason]int
	PlayerDamage   float64
	PlayerHits     int
	BossesDefeated int
	HighestWave    int
	HighestCycle   int
}

// TotalDefeated 所有原因的击败总数
func (s SessionStats) TotalDefeated() int {
	n := 0
	for _, c := range s.Defeated {
		n += c
	}
	return n
}

// Session 一局模拟
//
// 单线程：所有方法都应在同一个 goroutine（宿主的更新循环）中调用。
// 每个子系统使用由 seed 和标签派生的独立随机源，同一 seed 的两局完全一致。
type Session struct {
	cfg    *config.SimulationConfig
	seed   int64
	player PlayerLocator

	queue      *events.Queue
	placement  *systems.SpawnPlacementSystem
	registry   *systems.EnemyRegistry
	difficulty *systems.DifficultyEngine
	director   *systems.WaveDirectorSystem

	placementRNG *rand.Rand
	behaviorRNG  *rand.Rand
	directorRNG  *rand.Rand

	now     float64
	paused  bool
	started bool
	stats   SessionStats
}

// NewSession 创建一局模拟（尚未开始，需调用 Start）
//
// 参数：
//   - cfg: 已校验的模拟配置
//   - seed: 随机种子
//   - mapQuery: 地图协作者
//   - player: 玩家位置协作者
func NewSession(cfg *config.SimulationConfig, seed int64, mapQuery systems.MapQuery, player PlayerLocator) *Session {
	s := &Session{
		cfg:          cfg,
		seed:         seed,
		player:       player,
		queue:        events.NewQueue(),
		placementRNG: rand.New(rand.NewSource(subsystemSeed(seed, rngLabelPlacement))),
		behaviorRNG:  rand.New(rand.NewSource(subsystemSeed(seed, rngLabelBehavior))),
		directorRNG:  rand.New(rand.NewSource(subsystemSeed(seed, rngLabelDirector))),
	}

	s.placement = systems.NewSpawnPlacementSystem(s.placementRNG, mapQuery, cfg.Viewport.Width, cfg.Placement.MaxAttempts)
	s.registry = systems.NewEnemyRegistry(cfg, s.placement, s.queue, s.behaviorRNG)
	s.difficulty = systems.NewDifficultyEngine(cfg)
	s.director = systems.NewWaveDirectorSystem(cfg, s.registry, s.difficulty, s.queue, s.directorRNG)
	s.stats = newSessionStats()

	log.Printf("[Session] Created (seed=%d)", seed)
	return s
}

func newSessionStats() SessionStats {
	return SessionStats{Defeated: make(map[events.DefeatReason]int)}
}

// subsystemSeed 由主种子和标签派生子系统种子
func subsystemSeed(seed int64, label string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	h.Write([]byte(label))
	return int64(h.Sum64())
}

// SetVerbose 设置子系统详细日志
func (s *Session) SetVerbose(verbose bool) {
	s.placement.SetVerbose(verbose)
	s.registry.SetVerbose(verbose)
	s.director.SetVerbose(verbose)
}

// Start 开始第一波
func (s *Session) Start() {
	if s.started {
		return
	}
	s.started = true
	s.registry.Sync(s.now, s.player.Position())
	s.director.Start()
	s.route()
}

// Tick 推进 dt 秒
// 顺序：敌人行为 -> 事件路由 -> 导演计时 -> 事件路由
func (s *Session) Tick(dt float64) {
	if !s.started || s.paused || dt <= 0 {
		return
	}
	s.now += dt

	s.registry.UpdateAll(s.now, dt, s.player.Position())
	s.route()
	s.director.Update(dt)
	s.route()
}

// route 把新事件投递给导演并更新统计
func (s *Session) route() {
	s.queue.Dispatch(func(e events.Event) {
		s.director.HandleEvent(e)
		s.record(e)
	})
}

func (s *Session) record(e events.Event) {
	switch e.Type {
	case events.EnemySpawned:
		s.stats.Spawned++
	case events.EnemyDefeated:
		s.stats.Defeated[e.Reason]++
	case events.PlayerDamaged:
		s.stats.PlayerHits++
		s.stats.PlayerDamage += e.Amount
	case events.BossDefeated:
		s.stats.BossesDefeated++
	case events.WaveStarted:
		if e.WaveNumber > s.stats.HighestWave {
			s.stats.HighestWave = e.WaveNumber
		}
	case events.CycleEscalated:
		if e.Cycle > s.stats.HighestCycle {
			s.stats.HighestCycle = e.Cycle
		}
	}
}

// Pause 暂停：导演计时器冻结，蓄力中的自爆敌人放弃蓄力
func (s *Session) Pause() {
	if s.paused {
		return
	}
	s.paused = true
	s.director.Pause()
	s.registry.PauseAll()
	log.Printf("[Session] Paused at %.2fs", s.now)
}

// Resume 从暂停处继续
func (s *Session) Resume() {
	if !s.paused {
		return
	}
	s.paused = false
	s.director.Resume()
	s.registry.ResumeAll()
	log.Printf("[Session] Resumed at %.2fs", s.now)
}

// IsPaused 是否暂停
func (s *Session) IsPaused() bool {
	return s.paused
}

// Reset 取消所有计时器、清空敌人和事件，用同一种子重新开始
// 重置前的事件全部丢弃；若当时处于 Boss 竞技场，队列以 ArenaBoundsCleared 开头
func (s *Session) Reset() {
	s.queue.Clear()
	s.director.Reset()
	s.registry.ResumeAll()

	s.placementRNG.Seed(subsystemSeed(s.seed, rngLabelPlacement))
	s.behaviorRNG.Seed(subsystemSeed(s.seed, rngLabelBehavior))
	s.directorRNG.Seed(subsystemSeed(s.seed, rngLabelDirector))

	s.now = 0
	s.paused = false
	s.started = false
	s.stats = newSessionStats()
	log.Printf("[Session] Reset (seed=%d)", s.seed)

	s.Start()
}

// Now 模拟时间（秒，暂停期间不增加）
func (s *Session) Now() float64 {
	return s.now
}

// Seed 随机种子
func (s *Session) Seed() int64 {
	return s.seed
}

// Config 模拟配置
func (s *Session) Config() *config.SimulationConfig {
	return s.cfg
}

// ========== 战斗协作者接口 ==========

// ApplyDamage 对敌人（含 Boss）造成伤害
func (s *Session) ApplyDamage(id ecs.EntityID, amount float64) bool {
	ok := s.registry.ApplyDamage(id, amount)
	s.route()
	return ok
}

// ApplyDamageFrom 带来源冷却的伤害，冷却时长取自配置
func (s *Session) ApplyDamageFrom(id ecs.EntityID, amount float64, source systems.DamageSource) bool {
	var cooldown float64
	switch source {
	case systems.DamageSourceContact:
		cooldown = s.cfg.Enemies.DamageCooldowns.Contact
	case systems.DamageSourceArea:
		cooldown = s.cfg.Enemies.DamageCooldowns.Area
	case systems.DamageSourceShield:
		cooldown = s.cfg.Enemies.DamageCooldowns.Shield
	}
	ok := s.registry.ApplyDamageFrom(id, amount, source, s.now, cooldown)
	s.route()
	return ok
}

// NotifyEnemyDefeated 外部判定敌人死亡
// 幂等：已移除的敌人返回 false，不会重复计数
func (s *Session) NotifyEnemyDefeated(id ecs.EntityID) bool {
	ok := s.registry.Defeat(id, events.ReasonExternal)
	s.route()
	return ok
}

// NotifyBossDefeated 外部判定 Boss 死亡
func (s *Session) NotifyBossDefeated() {
	s.registry.NotifyBossDefeated()
	s.route()
}

// Freeze 冻结敌人 duration 秒
func (s *Session) Freeze(id ecs.EntityID, duration float64) bool {
	return s.registry.Freeze(id, s.now, duration)
}

// Slow 减速到基础速度的 factor 倍
func (s *Session) Slow(id ecs.EntityID, factor float64) bool {
	return s.registry.Slow(id, factor)
}

// RestoreSpeed 恢复基础速度
func (s *Session) RestoreSpeed(id ecs.EntityID) bool {
	return s.registry.RestoreSpeed(id)
}

// ========== 表现层接口 ==========

// Enemies 存活的非 Boss 敌人
func (s *Session) Enemies() []systems.EnemyView {
	return s.registry.Enemies()
}

// Boss 当前 Boss
func (s *Session) Boss() (systems.EnemyView, bool) {
	return s.registry.Boss()
}

// Progress HUD 进度
func (s *Session) Progress() systems.WaveProgress {
	return s.director.Progress()
}

// ArenaBounds Boss 竞技场边界
func (s *Session) ArenaBounds() (utils.Rect, bool) {
	return s.director.ArenaBounds()
}

// DirectorState 导演状态快照
func (s *Session) DirectorState() components.WaveDirectorComponent {
	return s.director.State()
}

// Stats 累计统计
func (s *Session) Stats() SessionStats {
	out := s.stats
	out.Defeated = make(map[events.DefeatReason]int, len(s.stats.Defeated))
	for k, v := range s.stats.Defeated {
		out.Defeated[k] = v
	}
	return out
}

// DrainEvents 取走本帧之前的全部事件
func (s *Session) DrainEvents() []events.Event {
	return s.queue.Drain()
}
