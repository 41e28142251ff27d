package systems

import (
	"log"
	"math/rand"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/ecs"
	"github.com/gonewx/horde/pkg/events"
	"github.com/gonewx/horde/pkg/utils"
)

// DamageSource 伤害来源，不同来源各自有独立冷却
type DamageSource int

const (
	// DamageSourceDirect 直接伤害（投射物等），不受冷却限制
	DamageSourceDirect DamageSource = iota
	// DamageSourceContact 接触伤害（旋转刀刃等）
	DamageSourceContact
	// DamageSourceArea 范围伤害（护盾脉冲等）
	DamageSourceArea
	// DamageSourceShield 护盾撞击
	DamageSourceShield
)

// EnemyView 敌人只读快照，供表现层和测试使用
type EnemyView struct {
	ID            ecs.EntityID
	Kind          components.EnemyKind
	Position      utils.Vec2
	Footprint     utils.Size
	Health        float64
	MaxHealth     float64
	MovementSpeed float64
	IsFrozen      bool
	IsBursting    bool
	ExploderState components.ExploderState
}

// IsCharging 自爆敌人是否在蓄力
func (v EnemyView) IsCharging() bool {
	return v.Kind == components.EnemyKindExploder && v.ExploderState == components.ExploderCharging
}

// EnemyRegistry 敌人注册表
//
// 独占所有敌人实例（含至多一个 Boss），其他组件只能通过 ID 访问。
// 职责：
//   - 按种类生成敌人（位置由 SpawnPlacementSystem 求解）
//   - 每帧分发种类行为、解冻、重叠分离、不活跃剔除
//   - 伤害 / 击败 / 冻结 / 减速等战斗钩子
//   - 击败时发出 EnemyDefeated，Boss 死亡时只发出一次 BossDefeated
type EnemyRegistry struct {
	cfg       *config.SimulationConfig
	store     *ecs.EntityManager[*components.EnemyComponent]
	placement *SpawnPlacementSystem
	queue     *events.Queue
	rng       *rand.Rand

	bossID ecs.EntityID
	boss   *components.EnemyComponent

	now    float64
	player utils.Vec2
	paused bool

	verbose bool
}

// NewEnemyRegistry 创建敌人注册表
//
// 参数：
//   - cfg: 模拟配置
//   - placement: 生成位置求解器
//   - queue: 事件队列
//   - rng: 行为随机源（掉队重定位使用）
func NewEnemyRegistry(cfg *config.SimulationConfig, placement *SpawnPlacementSystem, queue *events.Queue, rng *rand.Rand) *EnemyRegistry {
	return &EnemyRegistry{
		cfg:       cfg,
		store:     ecs.NewEntityManager[*components.EnemyComponent](),
		placement: placement,
		queue:     queue,
		rng:       rng,
	}
}

// SetVerbose 设置是否输出详细日志
func (r *EnemyRegistry) SetVerbose(verbose bool) {
	r.verbose = verbose
}

// Sync 同步当前模拟时间和玩家位置（生成时用作排斥中心）
func (r *EnemyRegistry) Sync(now float64, player utils.Vec2) {
	r.now = now
	r.player = player
}

// ========== 生成 ==========

// SpawnRegular 生成普通敌人，找不到位置时返回 false
func (r *EnemyRegistry) SpawnRegular(health, speed float64) (ecs.EntityID, bool) {
	return r.spawn(components.EnemyKindRegular, health, speed, r.cfg.Enemies.RegularFootprint,
		r.cfg.Placement.RegularExcludeRadius)
}

// SpawnCharger 生成冲锋敌人，找不到位置时返回 false
func (r *EnemyRegistry) SpawnCharger(health, speed float64) (ecs.EntityID, bool) {
	return r.spawn(components.EnemyKindCharger, health, speed, r.cfg.Enemies.Charger.Footprint,
		r.cfg.Placement.RegularExcludeRadius*r.cfg.Placement.SpecialRadiusMultiplier)
}

// SpawnExploder 生成自爆敌人，找不到位置时返回 false
func (r *EnemyRegistry) SpawnExploder(health, speed float64) (ecs.EntityID, bool) {
	return r.spawn(components.EnemyKindExploder, health, speed, r.cfg.Enemies.Exploder.Footprint,
		r.cfg.Placement.RegularExcludeRadius*r.cfg.Placement.SpecialRadiusMultiplier)
}

func (r *EnemyRegistry) spawn(kind components.EnemyKind, health, speed float64, footprint utils.Size, excludeRadius float64) (ecs.EntityID, bool) {
	pos, ok := r.placement.FindSpawnPosition(excludeRadius, r.player, footprint,
		r.cfg.Placement.DespawnDistance, r.Occupied())
	if !ok {
		if r.verbose {
			log.Printf("[EnemyRegistry] Spawn %s skipped: no valid position", kind)
		}
		return ecs.InvalidEntityID, false
	}
	return r.SpawnAt(kind, health, speed, pos), true
}

// SpawnAt 在指定位置直接生成非 Boss 敌人（跳过位置求解）
func (r *EnemyRegistry) SpawnAt(kind components.EnemyKind, health, speed float64, pos utils.Vec2) ecs.EntityID {
	if kind == components.EnemyKindBoss {
		return r.SpawnBoss(health, speed, pos)
	}

	e := r.newEnemy(kind, health, speed, pos)
	id := r.store.CreateEntity(e)

	r.queue.Push(events.Event{
		Type:     events.EnemySpawned,
		Time:     r.now,
		EnemyID:  id,
		Kind:     kind,
		Position: pos,
	})
	if r.verbose {
		log.Printf("[EnemyRegistry] Spawned %s (ID: %d) at (%.0f, %.0f), health=%.1f speed=%.2f",
			kind, id, pos.X, pos.Y, health, speed)
	}
	return id
}

func (r *EnemyRegistry) newEnemy(kind components.EnemyKind, health, speed float64, pos utils.Vec2) *components.EnemyComponent {
	e := &components.EnemyComponent{
		Kind:                  kind,
		Health:                health,
		MaxHealth:             health,
		Position:              pos,
		MovementSpeed:         speed,
		BaseSpeed:             speed,
		LastContactDamageTime: components.NeverHappened,
		LastAreaDamageTime:    components.NeverHappened,
		LastShieldHitTime:     components.NeverHappened,
		IsPaused:              r.paused,
		Inactivity:            components.InactivityComponent{ReferencePosition: pos},
	}

	switch kind {
	case components.EnemyKindRegular:
		e.Footprint = r.cfg.Enemies.RegularFootprint
	case components.EnemyKindCharger:
		c := r.cfg.Enemies.Charger
		e.Footprint = c.Footprint
		e.Charger = &components.ChargerComponent{
			BurstInterval:   c.BurstInterval,
			BurstDuration:   c.BurstDuration,
			BurstMultiplier: c.BurstMultiplier,
		}
	case components.EnemyKindExploder:
		x := r.cfg.Enemies.Exploder
		e.Footprint = x.Footprint
		e.Exploder = &components.ExploderComponent{
			State:                    components.ExploderSeeking,
			ExplosionRange:           x.ExplosionRange,
			ExplosionCooldown:        x.ExplosionCooldown,
			LastExplosionAttemptTime: components.NeverHappened,
		}
	case components.EnemyKindBoss:
		e.Footprint = r.cfg.Enemies.Boss.Footprint
	}
	return e
}

// SpawnBoss 生成 Boss；已有 Boss 时先移除旧的（不计为击败）
func (r *EnemyRegistry) SpawnBoss(health, speed float64, at utils.Vec2) ecs.EntityID {
	if r.boss != nil {
		log.Printf("[EnemyRegistry] Replacing existing boss (ID: %d)", r.bossID)
		r.clearBoss()
	}

	r.bossID = r.store.AllocateID()
	r.boss = r.newEnemy(components.EnemyKindBoss, health, speed*r.cfg.Enemies.Boss.SpeedMultiplier, at)

	log.Printf("[EnemyRegistry] Boss spawned (ID: %d) at (%.0f, %.0f), health=%.1f", r.bossID, at.X, at.Y, health)
	return r.bossID
}

// ========== 移除 ==========

// Remove 删除敌人（不计为击败）
// 幂等：删除不存在的 ID 是空操作，返回 false
func (r *EnemyRegistry) Remove(id ecs.EntityID) bool {
	if r.boss != nil && id == r.bossID {
		r.clearBoss()
		return true
	}
	return r.store.Remove(id)
}

// RemoveAll 清空所有敌人和 Boss（波次 / Boss 阶段切换、重置时使用）
func (r *EnemyRegistry) RemoveAll() {
	n := r.store.Len()
	r.store.Clear()
	if r.boss != nil {
		n++
		r.clearBoss()
	}
	if r.verbose && n > 0 {
		log.Printf("[EnemyRegistry] Removed all %d enemies", n)
	}
}

func (r *EnemyRegistry) clearBoss() {
	r.boss = nil
	r.bossID = ecs.InvalidEntityID
}

// ========== 战斗钩子 ==========

// lookup 查找敌人（含 Boss）
func (r *EnemyRegistry) lookup(id ecs.EntityID) (*components.EnemyComponent, bool) {
	if r.boss != nil && id == r.bossID {
		return r.boss, true
	}
	return r.store.Get(id)
}

// ApplyDamage 对敌人造成伤害，生命值降到 0 时立即击败
// 返回 false 表示敌人不存在
func (r *EnemyRegistry) ApplyDamage(id ecs.EntityID, amount float64) bool {
	e, ok := r.lookup(id)
	if !ok {
		return false
	}
	r.damage(id, e, amount, events.ReasonKilled)
	return true
}

// ApplyDamageFrom 带来源冷却的伤害
// 距离同一来源上次命中不足 cooldown 秒时忽略本次伤害并返回 false
func (r *EnemyRegistry) ApplyDamageFrom(id ecs.EntityID, amount float64, source DamageSource, now, cooldown float64) bool {
	e, ok := r.lookup(id)
	if !ok {
		return false
	}

	var last *float64
	switch source {
	case DamageSourceContact:
		last = &e.LastContactDamageTime
	case DamageSourceArea:
		last = &e.LastAreaDamageTime
	case DamageSourceShield:
		last = &e.LastShieldHitTime
	}
	if last != nil {
		if now-*last < cooldown {
			return false
		}
		*last = now
	}

	r.damage(id, e, amount, events.ReasonKilled)
	return true
}

func (r *EnemyRegistry) damage(id ecs.EntityID, e *components.EnemyComponent, amount float64, reason events.DefeatReason) {
	if !e.TakeDamage(amount) {
		return
	}
	if e.Kind == components.EnemyKindBoss {
		r.checkBossDefeat()
		return
	}
	r.defeat(id, e, reason)
}

// Defeat 强制击败敌人（外部碰撞层判定死亡时调用）
// 幂等：已移除的敌人返回 false 且不发事件
func (r *EnemyRegistry) Defeat(id ecs.EntityID, reason events.DefeatReason) bool {
	e, ok := r.lookup(id)
	if !ok {
		return false
	}
	if e.Kind == components.EnemyKindBoss {
		e.Health = 0
		r.checkBossDefeat()
		return true
	}
	e.Health = 0
	r.defeat(id, e, reason)
	return true
}

// defeat 移除敌人并发出 EnemyDefeated
func (r *EnemyRegistry) defeat(id ecs.EntityID, e *components.EnemyComponent, reason events.DefeatReason) {
	if !r.store.Remove(id) {
		return
	}
	r.queue.Push(events.Event{
		Type:     events.EnemyDefeated,
		Time:     r.now,
		EnemyID:  id,
		Kind:     e.Kind,
		Position: e.Position,
		Reason:   reason,
	})
	if r.verbose {
		log.Printf("[EnemyRegistry] %s (ID: %d) defeated: %s", e.Kind, id, reason)
	}
}

// NotifyBossDefeated 外部通知 Boss 已被击败
func (r *EnemyRegistry) NotifyBossDefeated() {
	if r.boss == nil {
		return
	}
	r.boss.Health = 0
	r.checkBossDefeat()
}

// checkBossDefeat Boss 由存活变为死亡时发出一次 BossDefeated 并移除 Boss
func (r *EnemyRegistry) checkBossDefeat() {
	if r.boss == nil || !r.boss.IsDead() {
		return
	}
	id, pos := r.bossID, r.boss.Position
	r.clearBoss()

	r.queue.Push(events.Event{
		Type:     events.BossDefeated,
		Time:     r.now,
		EnemyID:  id,
		Kind:     components.EnemyKindBoss,
		Position: pos,
	})
	log.Printf("[EnemyRegistry] Boss (ID: %d) defeated", id)
}

// Freeze 冻结敌人 duration 秒；蓄力中的自爆敌人会放弃本次蓄力
func (r *EnemyRegistry) Freeze(id ecs.EntityID, now, duration float64) bool {
	e, ok := r.lookup(id)
	if !ok {
		return false
	}
	e.IsFrozen = true
	e.FreezeEndTime = now + duration
	abandonCharge(e)
	return true
}

// Slow 将速度设为基础速度的 factor 倍（factor 截断到 [0,1]）
func (r *EnemyRegistry) Slow(id ecs.EntityID, factor float64) bool {
	e, ok := r.lookup(id)
	if !ok {
		return false
	}
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	e.MovementSpeed = e.BaseSpeed * factor
	return true
}

// RestoreSpeed 恢复基础速度
func (r *EnemyRegistry) RestoreSpeed(id ecs.EntityID) bool {
	e, ok := r.lookup(id)
	if !ok {
		return false
	}
	e.MovementSpeed = e.BaseSpeed
	return true
}

// PauseAll 暂停所有敌人；蓄力中的自爆敌人放弃蓄力
func (r *EnemyRegistry) PauseAll() {
	r.paused = true
	r.store.Each(func(_ ecs.EntityID, e *components.EnemyComponent) bool {
		e.IsPaused = true
		abandonCharge(e)
		return true
	})
	if r.boss != nil {
		r.boss.IsPaused = true
	}
}

// ResumeAll 恢复所有敌人
func (r *EnemyRegistry) ResumeAll() {
	r.paused = false
	r.store.Each(func(_ ecs.EntityID, e *components.EnemyComponent) bool {
		e.IsPaused = false
		return true
	})
	if r.boss != nil {
		r.boss.IsPaused = false
	}
}

// ========== 只读查询 ==========

func viewOf(id ecs.EntityID, e *components.EnemyComponent) EnemyView {
	v := EnemyView{
		ID:            id,
		Kind:          e.Kind,
		Position:      e.Position,
		Footprint:     e.Footprint,
		Health:        e.Health,
		MaxHealth:     e.MaxHealth,
		MovementSpeed: e.MovementSpeed,
		IsFrozen:      e.IsFrozen,
	}
	if e.Exploder != nil {
		v.ExploderState = e.Exploder.State
	}
	if e.Charger != nil {
		v.IsBursting = e.Charger.IsBursting
	}
	return v
}

// Enemies 所有存活的非 Boss 敌人（生成顺序）
func (r *EnemyRegistry) Enemies() []EnemyView {
	out := make([]EnemyView, 0, r.store.Len())
	r.store.Each(func(id ecs.EntityID, e *components.EnemyComponent) bool {
		out = append(out, viewOf(id, e))
		return true
	})
	return out
}

// Boss 当前 Boss
func (r *EnemyRegistry) Boss() (EnemyView, bool) {
	if r.boss == nil {
		return EnemyView{}, false
	}
	return viewOf(r.bossID, r.boss), true
}

// Get 按 ID 查询（含 Boss）
func (r *EnemyRegistry) Get(id ecs.EntityID) (EnemyView, bool) {
	e, ok := r.lookup(id)
	if !ok {
		return EnemyView{}, false
	}
	return viewOf(id, e), true
}

// Len 存活的非 Boss 敌人数
func (r *EnemyRegistry) Len() int {
	return r.store.Len()
}

// Occupied 所有存活敌人（含 Boss）的占地矩形
func (r *EnemyRegistry) Occupied() []utils.Rect {
	out := make([]utils.Rect, 0, r.store.Len()+1)
	r.store.Each(func(_ ecs.EntityID, e *components.EnemyComponent) bool {
		out = append(out, e.Bounds())
		return true
	})
	if r.boss != nil {
		out = append(out, r.boss.Bounds())
	}
	return out
}
