package game

import (
	"math"

	"github.com/gonewx/horde/pkg/ecs"
	"github.com/gonewx/horde/pkg/utils"
)

// AutoPilot 脚本化玩家
//
// 绕 Center 做匀速圆周运动（Radius 为 0 时原地不动），
// 每 FireInterval 秒对射程内最近的敌人（含 Boss）造成 Damage 点伤害。
// 供批量模拟和调试界面的自动模式使用。
type AutoPilot struct {
	Center       utils.Vec2
	Radius       float64
	AngularSpeed float64 // 弧度/秒
	Damage       float64
	FireInterval float64
	Range        float64

	angle    float64
	cooldown float64
	position utils.Vec2
	shots    int
}

// NewAutoPilot 创建默认参数的脚本化玩家
func NewAutoPilot() *AutoPilot {
	p := &AutoPilot{
		Radius:       150,
		AngularSpeed: 0.5,
		Damage:       2,
		FireInterval: 0.25,
		Range:        700,
	}
	p.position = p.pointAt(0)
	return p
}

func (p *AutoPilot) pointAt(angle float64) utils.Vec2 {
	return utils.Vec2{
		X: p.Center.X + p.Radius*math.Cos(angle),
		Y: p.Center.Y + p.Radius*math.Sin(angle),
	}
}

// Position 当前位置（实现 PlayerLocator）
func (p *AutoPilot) Position() utils.Vec2 {
	return p.position
}

// Shots 已开火次数
func (p *AutoPilot) Shots() int {
	return p.shots
}

// Step 移动并在冷却结束时开火
// 应在 Session.Tick 之前调用，使本帧的敌人行为看到新位置
func (p *AutoPilot) Step(s *Session, dt float64) {
	if s.IsPaused() || dt <= 0 {
		return
	}
	p.angle += p.AngularSpeed * dt
	p.position = p.pointAt(p.angle)

	p.cooldown -= dt
	if p.cooldown > 0 {
		return
	}
	if id, ok := p.nearestTarget(s); ok {
		s.ApplyDamage(id, p.Damage)
		p.shots++
		p.cooldown = p.FireInterval
	}
}

// nearestTarget 射程内最近的敌人
func (p *AutoPilot) nearestTarget(s *Session) (ecs.EntityID, bool) {
	best := ecs.InvalidEntityID
	bestDist := math.Inf(1)

	for _, e := range s.Enemies() {
		if d := e.Position.Distance(p.position); d <= p.Range && d < bestDist {
			best, bestDist = e.ID, d
		}
	}
	if boss, ok := s.Boss(); ok {
		if d := boss.Position.Distance(p.position); d <= p.Range && d < bestDist {
			best = boss.ID
		}
	}
	return best, best != ecs.InvalidEntityID
}
