package systems

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/ecs"
	"github.com/gonewx/horde/pkg/events"
	"github.com/gonewx/horde/pkg/utils"
)

// 计时器名称（日志用）
const (
	spawnTimerName       = "spawn_cadence"
	graceTimerName       = "grace_period"
	bossIntroTimerName   = "boss_intro"
	postBossTimerName    = "post_boss"
	hudTextBoss          = "Defeat the boss!"
	hudTextWaiting       = "Waiting for next wave..."
	hudTextEnemiesFormat = "Enemies left: %d"
)

// announcedKinds 需要首次登场提示的敌人种类（按提示顺序）
var announcedKinds = []components.EnemyKind{
	components.EnemyKindCharger,
	components.EnemyKindExploder,
	components.EnemyKindBoss,
}

// EnemySpawner 导演对敌人注册表的命令接口
// 导演只发命令，不读取注册表中的存活敌人
type EnemySpawner interface {
	SpawnRegular(health, speed float64) (ecs.EntityID, bool)
	SpawnCharger(health, speed float64) (ecs.EntityID, bool)
	SpawnExploder(health, speed float64) (ecs.EntityID, bool)
	SpawnBoss(health, speed float64, at utils.Vec2) ecs.EntityID
	RemoveAll()
}

// WaveProgress HUD 进度信息
type WaveProgress struct {
	WaveNumber     int
	Cycle          int
	Phase          components.DirectorPhase
	PendingEnemies int
	EnemiesToSpawn int
	IsBossStage    bool
	Text           string
}

// WaveDirectorSystem 波次导演系统
//
// 职责：
//   - 按波次表依次开始波次，按间隔生成敌人（在有剩余配额的种类中等概率选择）
//   - 维护待击败敌人数，决定宽限期、清场等待与波次切换
//   - Boss 阶段：清场、登场延迟、竞技场边界、击败后的难度提升与间歇
//   - 完成一整轮后按 DifficultyEngine 重建波次表
//
// 所有等待都是可暂停的逻辑计时器，由 Update(dt) 推进。
// 待击败数只由导演自己维护，从不根据注册表的存活数量反推。
type WaveDirectorSystem struct {
	cfg        *config.SimulationConfig
	spawner    EnemySpawner
	difficulty *DifficultyEngine
	queue      *events.Queue
	rng        *rand.Rand

	state     components.WaveDirectorComponent
	waves     []components.WaveComponent
	announced map[components.EnemyKind]bool

	// now 导演自己的模拟时钟（只在未暂停时推进），用于事件时间戳
	now float64

	verbose bool
}

// NewWaveDirectorSystem 创建波次导演系统
//
// 参数：
//   - cfg: 模拟配置
//   - spawner: 敌人生成命令接口（通常是 *EnemyRegistry）
//   - difficulty: 难度引擎
//   - queue: 事件队列
//   - rng: 专用随机源（种类选择）
func NewWaveDirectorSystem(
	cfg *config.SimulationConfig,
	spawner EnemySpawner,
	difficulty *DifficultyEngine,
	queue *events.Queue,
	rng *rand.Rand,
) *WaveDirectorSystem {
	s := &WaveDirectorSystem{
		cfg:        cfg,
		spawner:    spawner,
		difficulty: difficulty,
		queue:      queue,
		rng:        rng,
	}
	s.initState()
	return s
}

// SetVerbose 设置是否输出详细日志
func (s *WaveDirectorSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// initState 恢复初始属性、宽限期和基础波次表
func (s *WaveDirectorSystem) initState() {
	s.state = components.WaveDirectorComponent{
		Phase:       components.PhaseIdle,
		GracePeriod: s.cfg.Director.InitialGracePeriod,
		Stats:       s.cfg.Director.InitialStats,
	}
	s.waves = s.difficulty.BuildCycle(0)
	s.announced = make(map[components.EnemyKind]bool, len(announcedKinds))
	s.now = 0
}

// Start 开始第一波
func (s *WaveDirectorSystem) Start() {
	if s.state.Phase != components.PhaseIdle {
		log.Printf("[WaveDirectorSystem] Start ignored: already in phase %s", s.state.Phase)
		return
	}
	log.Printf("[WaveDirectorSystem] Starting: %d waves per cycle, grace=%.1fs", s.difficulty.CycleLength(), s.state.GracePeriod)
	s.startNextWave()
}

// Update 推进计时器并检查波次进度
func (s *WaveDirectorSystem) Update(dt float64) {
	st := &s.state
	if st.IsPaused || st.Phase == components.PhaseIdle || dt <= 0 {
		return
	}
	s.now += dt

	switch st.Phase {
	case components.PhaseWaveActive:
		if AdvanceTimer(&st.SpawnTimer, dt) {
			s.spawnNextEnemy()
		}
	case components.PhaseGracePeriod:
		if AdvanceTimer(&st.TransitionTimer, dt) {
			s.onGracePeriodExpired()
		}
	case components.PhaseBossIntro:
		if AdvanceTimer(&st.TransitionTimer, dt) {
			s.spawnBoss()
		}
	case components.PhasePostBossIntermission:
		if AdvanceTimer(&st.TransitionTimer, dt) {
			s.startNextWave()
		}
	}

	// 兜底检查：全部生成且无待击败敌人时进入宽限流程
	if st.Phase == components.PhaseWaveActive && !st.IsBossStage && st.PendingEnemies <= 0 {
		if w := s.currentWave(); w != nil && w.AllEnemiesSpawned() {
			s.handleWaveProgression()
		}
	}
}

// Pause 暂停：所有计时器冻结在当前已累计的时间
func (s *WaveDirectorSystem) Pause() {
	if s.state.IsPaused {
		return
	}
	s.state.IsPaused = true
	PauseTimer(&s.state.SpawnTimer)
	PauseTimer(&s.state.TransitionTimer)
	log.Printf("[WaveDirectorSystem] Paused in phase %s", s.state.Phase)
}

// Resume 从暂停处继续
func (s *WaveDirectorSystem) Resume() {
	if !s.state.IsPaused {
		return
	}
	s.state.IsPaused = false
	ResumeTimer(&s.state.SpawnTimer)
	ResumeTimer(&s.state.TransitionTimer)
	log.Printf("[WaveDirectorSystem] Resumed in phase %s", s.state.Phase)
}

// Reset 取消所有计时器，清空敌人，恢复初始属性和基础波次表
// 重置后处于 Idle，需要再次调用 Start
func (s *WaveDirectorSystem) Reset() {
	CancelTimer(&s.state.SpawnTimer)
	CancelTimer(&s.state.TransitionTimer)
	s.spawner.RemoveAll()

	if s.state.HasArena {
		s.queue.Push(events.Event{Type: events.ArenaBoundsCleared, Time: s.now})
	}
	s.initState()
	log.Printf("[WaveDirectorSystem] Reset to initial state")
}

// HandleEvent 处理注册表发出的事件
func (s *WaveDirectorSystem) HandleEvent(e events.Event) {
	switch e.Type {
	case events.EnemyDefeated:
		s.OnEnemyDefeated()
	case events.BossDefeated:
		s.OnBossDefeated()
	}
}

// ========== 波次流程 ==========

func (s *WaveDirectorSystem) currentWave() *components.WaveComponent {
	i := s.state.CurrentWaveIndex
	if i < 0 || i >= len(s.waves) {
		return nil
	}
	return &s.waves[i]
}

// startNextWave 开始当前索引的波次；索引越过波次表时先升级循环
func (s *WaveDirectorSystem) startNextWave() {
	st := &s.state
	if st.CurrentWaveIndex >= len(s.waves) {
		s.escalateCycle()
	}

	wave := s.currentWave()
	st.WaveCounter++
	total := wave.TotalEnemies()
	st.PendingEnemies += total
	st.EnemiesToSpawn += total

	s.queue.Push(events.Event{
		Type:       events.WaveStarted,
		Time:       s.now,
		WaveNumber: st.WaveCounter,
		Cycle:      st.Cycle,
		IsHorde:    wave.IsHorde,
	})
	log.Printf("[WaveDirectorSystem] Wave %d started (cycle %d, index %d): regular=%d charger=%d exploder=%d boss=%v horde=%v, pending=%d",
		st.WaveCounter, st.Cycle, st.CurrentWaveIndex, wave.RegularEnemies, wave.ChargerEnemies, wave.ExploderEnemies,
		wave.IsBoss, wave.IsHorde, st.PendingEnemies)

	for _, kind := range announcedKinds {
		if wave.Contains(kind) && !s.announced[kind] {
			s.announced[kind] = true
			s.queue.Push(events.Event{
				Type:       events.NewEnemyTypeIntroduced,
				Time:       s.now,
				WaveNumber: st.WaveCounter,
				Kind:       kind,
			})
		}
	}

	if wave.IsBoss {
		s.startBossStage()
		return
	}

	st.IsTransitioningWave = false
	st.IsGracePeriodActive = false
	st.Phase = components.PhaseWaveActive
	s.spawnNextEnemy()
}

// escalateCycle 重建下一轮波次表，从索引 0 重新开始
func (s *WaveDirectorSystem) escalateCycle() {
	st := &s.state
	st.Cycle++
	s.waves = s.difficulty.BuildCycle(st.Cycle)
	st.CurrentWaveIndex = 0
	st.PendingEnemies = 0
	st.EnemiesToSpawn = 0

	s.queue.Push(events.Event{Type: events.CycleEscalated, Time: s.now, Cycle: st.Cycle})
	log.Printf("[WaveDirectorSystem] Cycle escalated to %d (count multiplier x%d)",
		st.Cycle, s.difficulty.CountMultiplier(st.Cycle))
}

// advanceWave 切换到下一个索引的波次
func (s *WaveDirectorSystem) advanceWave() {
	CancelTimer(&s.state.TransitionTimer)
	s.state.IsGracePeriodActive = false
	s.state.CurrentWaveIndex++
	s.startNextWave()
}

// spawnNextEnemy 生成循环的一个节拍
//
// 全部生成完毕时进入宽限流程；否则在有剩余配额的种类中等概率选择一个生成。
// 放置失败时按 SpawnRetry 策略处理，配额只在成功时消耗。
func (s *WaveDirectorSystem) spawnNextEnemy() {
	st := &s.state
	wave := s.currentWave()
	if wave == nil || wave.IsBoss {
		return
	}
	if wave.AllEnemiesSpawned() {
		s.handleWaveProgression()
		return
	}

	tries := 1
	if s.cfg.Director.SpawnRetry == config.SpawnRetrySameTick {
		tries += s.cfg.Director.MaxSpawnRetries
	}
	for i := 0; i < tries; i++ {
		kind := s.pickKind(wave)
		if s.spawnKind(wave, kind) {
			if st.EnemiesToSpawn > 0 {
				st.EnemiesToSpawn--
			}
			break
		}
		if s.verbose {
			log.Printf("[WaveDirectorSystem] Spawn %s failed (try %d/%d)", kind, i+1, tries)
		}
	}

	if wave.SpawnInterval > 0 {
		StartTimer(&st.SpawnTimer, spawnTimerName, wave.SpawnInterval)
	}
}

// pickKind 在有剩余配额的种类中等概率选择（不按剩余数量加权）
func (s *WaveDirectorSystem) pickKind(wave *components.WaveComponent) components.EnemyKind {
	available := make([]components.EnemyKind, 0, 3)
	for _, kind := range []components.EnemyKind{
		components.EnemyKindRegular,
		components.EnemyKindCharger,
		components.EnemyKindExploder,
	} {
		if wave.Remaining(kind) > 0 {
			available = append(available, kind)
		}
	}
	return available[s.rng.Intn(len(available))]
}

func (s *WaveDirectorSystem) spawnKind(wave *components.WaveComponent, kind components.EnemyKind) bool {
	stats := s.state.Stats
	switch kind {
	case components.EnemyKindRegular:
		if _, ok := s.spawner.SpawnRegular(stats.ZombieHealth, stats.ZombieSpeed); ok {
			wave.SpawnedRegular++
			return true
		}
	case components.EnemyKindCharger:
		if _, ok := s.spawner.SpawnCharger(stats.ZombieHealth, stats.ZombieSpeed); ok {
			wave.SpawnedCharger++
			return true
		}
	case components.EnemyKindExploder:
		if _, ok := s.spawner.SpawnExploder(stats.ZombieHealth, stats.ZombieSpeed); ok {
			wave.SpawnedExploder++
			return true
		}
	}
	return false
}

// handleWaveProgression 开始宽限倒计时（同一波次只触发一次）
func (s *WaveDirectorSystem) handleWaveProgression() {
	st := &s.state
	if st.IsTransitioningWave {
		return
	}
	st.IsTransitioningWave = true
	st.IsGracePeriodActive = true
	st.Phase = components.PhaseGracePeriod
	CancelTimer(&st.SpawnTimer)
	StartTimer(&st.TransitionTimer, graceTimerName, st.GracePeriod)

	s.queue.Push(events.Event{
		Type:       events.GracePeriodStarted,
		Time:       s.now,
		WaveNumber: st.WaveCounter,
		Amount:     st.GracePeriod,
	})
	log.Printf("[WaveDirectorSystem] Wave %d fully spawned, grace period %.1fs (pending=%d)",
		st.WaveCounter, st.GracePeriod, st.PendingEnemies)
}

// onGracePeriodExpired 宽限结束：需要清场且仍有待击败敌人时阻塞等待，否则切换
func (s *WaveDirectorSystem) onGracePeriodExpired() {
	st := &s.state
	st.IsGracePeriodActive = false

	wave := s.currentWave()
	if wave != nil && wave.RequiresFullClearance && st.PendingEnemies > 0 {
		st.Phase = components.PhaseAwaitingClearance
		s.queue.Push(events.Event{
			Type:       events.ClearanceRequired,
			Time:       s.now,
			WaveNumber: st.WaveCounter,
			Amount:     float64(st.PendingEnemies),
		})
		log.Printf("[WaveDirectorSystem] Wave %d requires clearance, %d enemies left", st.WaveCounter, st.PendingEnemies)
		return
	}

	if st.PendingEnemies > 0 {
		log.Printf("[WaveDirectorSystem] Grace period over, %d enemies carry over", st.PendingEnemies)
	}
	s.advanceWave()
}

// OnEnemyDefeated 击败计数
//
// 待击败数减 1（不低于 0，已经为 0 时的重复通知是空操作）。
// 归零时：清场波次立即切换；其他波次在全部生成后进入宽限流程。
func (s *WaveDirectorSystem) OnEnemyDefeated() {
	st := &s.state
	if st.PendingEnemies <= 0 {
		st.PendingEnemies = 0
		return
	}
	st.PendingEnemies--
	if s.verbose {
		log.Printf("[WaveDirectorSystem] Enemy defeated, pending=%d", st.PendingEnemies)
	}
	if st.PendingEnemies > 0 || st.IsBossStage {
		return
	}

	switch st.Phase {
	case components.PhaseWaveActive, components.PhaseGracePeriod, components.PhaseAwaitingClearance:
	default:
		return
	}

	wave := s.currentWave()
	if wave == nil {
		return
	}

	if wave.RequiresFullClearance && wave.AllEnemiesSpawned() {
		if s.cfg.Director.ClearanceGrace == config.ClearanceGraceAfterGrace && st.IsGracePeriodActive {
			// 宽限结束时待击败数为 0，会直接切换
			return
		}
		log.Printf("[WaveDirectorSystem] Wave %d cleared", st.WaveCounter)
		s.advanceWave()
		return
	}

	if wave.AllEnemiesSpawned() {
		s.handleWaveProgression()
	}
}

// ========== Boss 阶段 ==========

// startBossStage 清空场上敌人，开始 Boss 登场倒计时
func (s *WaveDirectorSystem) startBossStage() {
	st := &s.state
	s.spawner.RemoveAll()
	CancelTimer(&st.SpawnTimer)

	st.IsBossStage = true
	st.IsTransitioningWave = false
	st.IsGracePeriodActive = false
	st.Phase = components.PhaseBossIntro
	StartTimer(&st.TransitionTimer, bossIntroTimerName, s.cfg.Director.BossIntroDelay)

	s.queue.Push(events.Event{
		Type:       events.BossIntroBegan,
		Time:       s.now,
		WaveNumber: st.WaveCounter,
		Amount:     s.cfg.Director.BossIntroDelay,
	})
	log.Printf("[WaveDirectorSystem] Boss stage begins in %.1fs", s.cfg.Director.BossIntroDelay)
}

// ArenaFor 指定中心点的 Boss 竞技场
// Min = center - viewport/2，尺寸 = viewport - inset
func ArenaFor(cfg *config.SimulationConfig, center utils.Vec2) utils.Rect {
	corner := utils.Vec2{
		X: center.X - cfg.Viewport.Width/2,
		Y: center.Y - cfg.Viewport.Height/2,
	}
	return utils.Rect{
		Min: corner,
		Max: utils.Vec2{
			X: corner.X + cfg.Viewport.Width - cfg.Director.ArenaInset.Width,
			Y: corner.Y + cfg.Viewport.Height - cfg.Director.ArenaInset.Height,
		},
	}
}

// spawnBoss 设置竞技场边界，在竞技场外侧生成 Boss
func (s *WaveDirectorSystem) spawnBoss() {
	st := &s.state
	arena := ArenaFor(s.cfg, s.cfg.Director.ArenaCenter)
	st.ArenaBounds = arena
	st.HasArena = true
	s.queue.Push(events.Event{Type: events.ArenaBoundsSet, Time: s.now, Arena: arena})

	at := utils.Vec2{X: arena.Min.X, Y: arena.Max.Y + s.cfg.Director.BossSpawnOffsetY}
	id := s.spawner.SpawnBoss(st.Stats.WizardHealth, st.Stats.ZombieSpeed, at)
	if st.EnemiesToSpawn > 0 {
		st.EnemiesToSpawn--
	}
	st.Phase = components.PhaseBossActive

	s.queue.Push(events.Event{
		Type:       events.BossSpawned,
		Time:       s.now,
		WaveNumber: st.WaveCounter,
		EnemyID:    id,
		Kind:       components.EnemyKindBoss,
		Position:   at,
		Amount:     st.Stats.WizardHealth,
		Arena:      arena,
	})
	log.Printf("[WaveDirectorSystem] Boss (ID: %d) spawned at (%.0f, %.0f), health=%.1f, arena=(%.0f,%.0f)-(%.0f,%.0f)",
		id, at.X, at.Y, st.Stats.WizardHealth, arena.Min.X, arena.Min.Y, arena.Max.X, arena.Max.Y)
}

// OnBossDefeated Boss 被击败
// 清除竞技场，提升敌人属性、缩短宽限期，间歇后继续下一波。不在 Boss 阶段时忽略
func (s *WaveDirectorSystem) OnBossDefeated() {
	st := &s.state
	if !st.IsBossStage {
		return
	}

	if st.HasArena {
		st.HasArena = false
		st.ArenaBounds = utils.Rect{}
		s.queue.Push(events.Event{Type: events.ArenaBoundsCleared, Time: s.now})
	}

	st.IsBossStage = false
	st.CurrentWaveIndex++
	st.PendingEnemies = 0
	st.EnemiesToSpawn = 0

	st.Stats, st.GracePeriod = s.difficulty.ApplyBossDefeat(st.Stats, st.GracePeriod)
	s.queue.Push(events.Event{
		Type:   events.DifficultyIncreased,
		Time:   s.now,
		Cycle:  st.Cycle,
		Amount: st.Stats.ZombieHealth,
	})
	log.Printf("[WaveDirectorSystem] Boss defeated: zombieHealth=%.1f zombieSpeed=%.2f wizardHealth=%.1f grace=%.1fs",
		st.Stats.ZombieHealth, st.Stats.ZombieSpeed, st.Stats.WizardHealth, st.GracePeriod)

	st.Phase = components.PhasePostBossIntermission
	StartTimer(&st.TransitionTimer, postBossTimerName, s.cfg.Director.PostBossDelay)
}

// ========== 只读查询 ==========

// State 导演状态快照
func (s *WaveDirectorSystem) State() components.WaveDirectorComponent {
	return s.state
}

// Phase 当前阶段
func (s *WaveDirectorSystem) Phase() components.DirectorPhase {
	return s.state.Phase
}

// CurrentWave 当前波次（含生成进度）
func (s *WaveDirectorSystem) CurrentWave() (components.WaveComponent, bool) {
	w := s.currentWave()
	if w == nil {
		return components.WaveComponent{}, false
	}
	return *w, true
}

// Waves 当前循环的波次表副本
func (s *WaveDirectorSystem) Waves() []components.WaveComponent {
	out := make([]components.WaveComponent, len(s.waves))
	copy(out, s.waves)
	return out
}

// ArenaBounds Boss 竞技场边界
func (s *WaveDirectorSystem) ArenaBounds() (utils.Rect, bool) {
	return s.state.ArenaBounds, s.state.HasArena
}

// Progress HUD 进度
func (s *WaveDirectorSystem) Progress() WaveProgress {
	st := s.state
	p := WaveProgress{
		WaveNumber:     st.WaveCounter,
		Cycle:          st.Cycle,
		Phase:          st.Phase,
		PendingEnemies: st.PendingEnemies,
		EnemiesToSpawn: st.EnemiesToSpawn,
		IsBossStage:    st.IsBossStage,
	}
	switch {
	case st.IsBossStage:
		p.Text = hudTextBoss
	case st.PendingEnemies > 0:
		p.Text = fmt.Sprintf(hudTextEnemiesFormat, st.PendingEnemies)
	default:
		p.Text = hudTextWaiting
	}
	return p
}
