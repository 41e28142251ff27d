// Package events 定义模拟核心对外发出的离散事件
//
// 事件集合是封闭的：新增类型必须在这里声明。
// 核心只负责追加事件，宿主循环在每帧结束时取走并分发（横幅、音效、经验掉落等）。
package events

import (
	"fmt"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/ecs"
	"github.com/gonewx/horde/pkg/utils"
)

// Type 事件类型
type Type int

const (
	WaveStarted Type = iota + 1
	NewEnemyTypeIntroduced
	EnemySpawned
	EnemyDefeated
	PlayerDamaged
	GracePeriodStarted
	ClearanceRequired
	BossIntroBegan
	BossSpawned
	ArenaBoundsSet
	ArenaBoundsCleared
	BossDefeated
	DifficultyIncreased
	CycleEscalated
)

var typeNames = map[Type]string{
	WaveStarted:            "WaveStarted",
	NewEnemyTypeIntroduced: "NewEnemyTypeIntroduced",
	EnemySpawned:           "EnemySpawned",
	EnemyDefeated:          "EnemyDefeated",
	PlayerDamaged:          "PlayerDamaged",
	GracePeriodStarted:     "GracePeriodStarted",
	ClearanceRequired:      "ClearanceRequired",
	BossIntroBegan:         "BossIntroBegan",
	BossSpawned:            "BossSpawned",
	ArenaBoundsSet:         "ArenaBoundsSet",
	ArenaBoundsCleared:     "ArenaBoundsCleared",
	BossDefeated:           "BossDefeated",
	DifficultyIncreased:    "DifficultyIncreased",
	CycleEscalated:         "CycleEscalated",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// DefeatReason 敌人被移除并计为击败的原因
type DefeatReason string

const (
	ReasonKilled    DefeatReason = "killed"
	ReasonDetonated DefeatReason = "detonated"
	ReasonExplosion DefeatReason = "explosion"
	ReasonCulled    DefeatReason = "culled"
	ReasonExternal  DefeatReason = "external"
)

// Event 事件值
// 各字段按类型选择性填写，未用到的字段保持零值
type Event struct {
	Type Type
	Time float64 // 发出时的模拟时间

	WaveNumber int
	Cycle      int
	IsHorde    bool

	EnemyID  ecs.EntityID
	Kind     components.EnemyKind
	Position utils.Vec2
	Reason   DefeatReason

	Amount float64 // 伤害值或宽限时长
	Arena  utils.Rect
}

func (e Event) String() string {
	switch e.Type {
	case WaveStarted:
		return fmt.Sprintf("%s(wave=%d cycle=%d horde=%t)", e.Type, e.WaveNumber, e.Cycle, e.IsHorde)
	case NewEnemyTypeIntroduced:
		return fmt.Sprintf("%s(wave=%d kind=%s)", e.Type, e.WaveNumber, e.Kind)
	case EnemySpawned, BossSpawned:
		return fmt.Sprintf("%s(id=%d kind=%s at=%.0f,%.0f)", e.Type, e.EnemyID, e.Kind, e.Position.X, e.Position.Y)
	case EnemyDefeated:
		return fmt.Sprintf("%s(id=%d kind=%s reason=%s)", e.Type, e.EnemyID, e.Kind, e.Reason)
	case PlayerDamaged, GracePeriodStarted:
		return fmt.Sprintf("%s(%.2f)", e.Type, e.Amount)
	case CycleEscalated:
		return fmt.Sprintf("%s(cycle=%d)", e.Type, e.Cycle)
	default:
		return e.Type.String()
	}
}
