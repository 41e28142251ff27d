package components

import (
	"math"

	"github.com/gonewx/horde/pkg/utils"
)

// EnemyKind 敌人种类（封闭集合）
type EnemyKind int

const (
	EnemyKindRegular EnemyKind = iota
	EnemyKindCharger
	EnemyKindExploder
	EnemyKindBoss
)

// String 返回种类名（用于日志和事件）
func (k EnemyKind) String() string {
	switch k {
	case EnemyKindRegular:
		return "regular"
	case EnemyKindCharger:
		return "charger"
	case EnemyKindExploder:
		return "exploder"
	case EnemyKindBoss:
		return "boss"
	default:
		return "unknown"
	}
}

// ExploderState 自爆敌人状态
type ExploderState int

const (
	// ExploderSeeking 追踪玩家
	ExploderSeeking ExploderState = iota
	// ExploderCharging 原地蓄力，计时结束后引爆
	ExploderCharging
	// ExploderDetonated 已引爆（终态，实体随即被移除）
	ExploderDetonated
)

func (s ExploderState) String() string {
	switch s {
	case ExploderSeeking:
		return "seeking"
	case ExploderCharging:
		return "charging"
	case ExploderDetonated:
		return "detonated"
	default:
		return "unknown"
	}
}

// NeverHappened 表示"从未发生"的时间戳
// 任何冷却判断 now - NeverHappened 都为 +Inf，首次总能通过
var NeverHappened = math.Inf(-1)

// ExploderComponent 自爆敌人专属状态
type ExploderComponent struct {
	State                    ExploderState
	ExplosionRange           float64
	ExplosionCooldown        float64        // 两次蓄力尝试之间的最小间隔（秒）
	LastExplosionAttemptTime float64        // 上次开始蓄力的模拟时间
	ChargeTimer              TimerComponent // 蓄力计时器
}

// IsPreparingToExplode 是否处于蓄力状态
func (e *ExploderComponent) IsPreparingToExplode() bool {
	return e.State == ExploderCharging
}

// ChargerComponent 冲锋敌人专属状态
// 每隔 BurstInterval 秒以 BurstMultiplier 倍速冲刺 BurstDuration 秒
type ChargerComponent struct {
	BurstInterval   float64
	BurstDuration   float64
	BurstMultiplier float64
	IsBursting      bool
	PhaseElapsed    float64 // 当前阶段（冲刺/常速）已经过的时间
}

// InactivityComponent 不活跃检测状态
type InactivityComponent struct {
	ReferencePosition utils.Vec2
	StillSince        float64 // 进入"静止且远离玩家"状态的时间
	Tracking          bool    // StillSince 是否有效
}

// EnemyComponent 敌人数据
//
// 所有种类共用一个结构体，种类专属状态放在可选子组件里：
//   - Exploder 仅 Kind == EnemyKindExploder 时非空
//   - Charger 仅 Kind == EnemyKindCharger 时非空
type EnemyComponent struct {
	Kind      EnemyKind
	Health    float64
	MaxHealth float64
	Position  utils.Vec2
	Footprint utils.Size

	MovementSpeed float64 // 当前速度（每参考帧移动的单位数）
	BaseSpeed     float64 // 减速效果结束后恢复到此值

	IsFrozen      bool
	FreezeEndTime float64
	IsPaused      bool

	LastContactDamageTime float64
	LastAreaDamageTime    float64
	LastShieldHitTime     float64

	Exploder   *ExploderComponent
	Charger    *ChargerComponent
	Inactivity InactivityComponent
}

// IsDead 生命值 <= 0 即视为死亡
func (e *EnemyComponent) IsDead() bool {
	return e.Health <= 0
}

// Bounds 当前占地矩形
func (e *EnemyComponent) Bounds() utils.Rect {
	return utils.RectFromCenter(e.Position, e.Footprint)
}

// TakeDamage 扣除生命值，结果不会小于 0
// 返回扣血后是否死亡
func (e *EnemyComponent) TakeDamage(amount float64) bool {
	if amount < 0 {
		amount = 0
	}
	e.Health -= amount
	if e.Health < 0 {
		e.Health = 0
	}
	return e.IsDead()
}
