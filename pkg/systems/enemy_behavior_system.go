package systems

import (
	"log"
	"math"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/ecs"
	"github.com/gonewx/horde/pkg/events"
	"github.com/gonewx/horde/pkg/utils"
)

// UpdateAll 每帧更新所有敌人
//
// 执行顺序：
//  1. 种类行为（普通：追踪；冲锋：周期冲刺追踪；自爆：追踪 / 蓄力 / 引爆）
//  2. 冻结到期检查
//  3. 重叠分离
//  4. 掉队重定位（可选）与不活跃剔除（可选）
//  5. Boss 更新；Boss 死亡时发出一次 BossDefeated
func (r *EnemyRegistry) UpdateAll(now, dt float64, player utils.Vec2) {
	r.Sync(now, player)
	if r.paused {
		return
	}

	for _, id := range r.store.IDs() {
		e, ok := r.store.Get(id)
		if !ok {
			// 被本帧更早的爆炸击败
			continue
		}

		switch e.Kind {
		case components.EnemyKindRegular:
			r.moveToward(e, player, e.MovementSpeed, dt)
		case components.EnemyKindCharger:
			r.updateCharger(e, player, dt)
		case components.EnemyKindExploder:
			r.updateExploder(id, e, now, dt, player)
		}

		if e.IsFrozen && now >= e.FreezeEndTime {
			e.IsFrozen = false
		}
	}

	if r.cfg.Enemies.Separation.Enabled {
		r.separate()
	}
	if r.cfg.Enemies.Relocation.Enabled {
		r.relocateStragglers(player)
	}
	if r.cfg.Enemies.Inactivity.Enabled {
		r.cullInactive(now, player)
	}

	if r.boss != nil {
		if !r.boss.IsDead() {
			r.moveToward(r.boss, player, r.boss.MovementSpeed, dt)
			if r.boss.IsFrozen && now >= r.boss.FreezeEndTime {
				r.boss.IsFrozen = false
			}
		}
		r.checkBossDefeat()
	}
}

// moveToward 以 speed（每参考帧单位数）向目标移动，不越过目标点
func (r *EnemyRegistry) moveToward(e *components.EnemyComponent, target utils.Vec2, speed, dt float64) {
	if e.IsFrozen || e.IsPaused || speed <= 0 {
		return
	}
	dir := target.Sub(e.Position)
	dist := dir.Length()
	if dist == 0 {
		return
	}
	step := speed * dt * r.cfg.TickRate
	if step > dist {
		step = dist
	}
	e.Position = e.Position.Add(dir.Scale(step / dist))
}

// updateCharger 常速追踪，每 BurstInterval 秒以 BurstMultiplier 倍速冲刺 BurstDuration 秒
func (r *EnemyRegistry) updateCharger(e *components.EnemyComponent, player utils.Vec2, dt float64) {
	c := e.Charger
	if c == nil || e.IsFrozen {
		return
	}

	c.PhaseElapsed += dt
	if c.IsBursting {
		if c.PhaseElapsed >= c.BurstDuration {
			c.IsBursting = false
			c.PhaseElapsed = 0
		}
	} else if c.PhaseElapsed >= c.BurstInterval {
		c.IsBursting = true
		c.PhaseElapsed = 0
	}

	speed := e.MovementSpeed
	if c.IsBursting {
		speed *= c.BurstMultiplier
	}
	r.moveToward(e, player, speed, dt)
}

// updateExploder 自爆敌人状态机
//
//	Seeking:  向玩家移动；距离 < 爆炸范围且距上次蓄力超过冷却时开始蓄力
//	Charging: 原地不动，蓄力计时结束后引爆
//	冻结或暂停时放弃蓄力回到 Seeking
func (r *EnemyRegistry) updateExploder(id ecs.EntityID, e *components.EnemyComponent, now, dt float64, player utils.Vec2) {
	x := e.Exploder
	if x == nil {
		return
	}
	if e.IsFrozen || e.IsPaused {
		abandonCharge(e)
		return
	}

	switch x.State {
	case components.ExploderSeeking:
		dist := e.Position.Distance(player)
		if dist < x.ExplosionRange && now-x.LastExplosionAttemptTime > x.ExplosionCooldown {
			x.State = components.ExploderCharging
			x.LastExplosionAttemptTime = now
			StartTimer(&x.ChargeTimer, "exploder_charge", r.cfg.Enemies.Exploder.PreparationTime)
			if r.verbose {
				log.Printf("[EnemyRegistry] Exploder (ID: %d) charging, distance=%.0f", id, dist)
			}
			return
		}
		r.moveToward(e, player, e.MovementSpeed, dt)

	case components.ExploderCharging:
		if AdvanceTimer(&x.ChargeTimer, dt) {
			r.detonate(id, e, player)
		}
	}
}

// abandonCharge 放弃蓄力（不引爆、不造成伤害）
func abandonCharge(e *components.EnemyComponent) {
	x := e.Exploder
	if x == nil || !x.IsPreparingToExplode() {
		return
	}
	x.State = components.ExploderSeeking
	CancelTimer(&x.ChargeTimer)
}

// detonate 引爆：对范围内其他非 Boss 敌人和玩家造成等同自身当前生命值的伤害，然后移除自身
func (r *EnemyRegistry) detonate(id ecs.EntityID, e *components.EnemyComponent, player utils.Vec2) {
	x := e.Exploder
	x.State = components.ExploderDetonated

	damage := e.Health
	center := e.Position
	blastRange := x.ExplosionRange

	for _, otherID := range r.store.IDs() {
		if otherID == id {
			continue
		}
		other, ok := r.store.Get(otherID)
		if !ok {
			continue
		}
		if other.Position.Distance(center) <= blastRange {
			r.damage(otherID, other, damage, events.ReasonExplosion)
		}
	}

	if player.Distance(center) <= blastRange {
		r.queue.Push(events.Event{
			Type:     events.PlayerDamaged,
			Time:     r.now,
			EnemyID:  id,
			Kind:     components.EnemyKindExploder,
			Position: center,
			Amount:   damage,
		})
	}

	log.Printf("[EnemyRegistry] Exploder (ID: %d) detonated at (%.0f, %.0f), damage=%.1f", id, center.X, center.Y, damage)
	r.defeat(id, e, events.ReasonDetonated)
}

// separate 重叠分离
// 占地矩形相交的两个敌人，沿连线方向把当前敌人推开 (目标距离 - 当前距离) × PushFactor
// 目标距离 = 两者半宽之和 + Padding；仅在矩形相交时生效
func (r *EnemyRegistry) separate() {
	sep := r.cfg.Enemies.Separation
	ids := r.store.IDs()

	for _, id := range ids {
		e, ok := r.store.Get(id)
		if !ok {
			continue
		}
		for _, otherID := range ids {
			if otherID == id {
				continue
			}
			other, ok := r.store.Get(otherID)
			if !ok || !e.Bounds().Intersects(other.Bounds()) {
				continue
			}

			dir := e.Position.Sub(other.Position)
			dist := dir.Length()
			target := e.Footprint.Width/2 + other.Footprint.Width/2 + sep.Padding
			if dist >= target {
				continue
			}

			var normal utils.Vec2
			if dist == 0 {
				// 完全重合时固定向 +X 推开，保证可复现
				normal = utils.Vec2{X: 1}
			} else {
				normal = dir.Scale(1 / dist)
			}
			e.Position = e.Position.Add(normal.Scale((target - dist) * sep.PushFactor))
		}
	}
}

// cullInactive 不活跃剔除
// 位移不超过阈值且远离玩家持续 Duration 秒的敌人被强制移除，计为击败
func (r *EnemyRegistry) cullInactive(now float64, player utils.Vec2) {
	cfg := r.cfg.Enemies.Inactivity
	farDistance := r.cfg.Viewport.Width * cfg.FarDistanceFactor

	for _, id := range r.store.IDs() {
		e, ok := r.store.Get(id)
		if !ok {
			continue
		}
		in := &e.Inactivity
		moved := e.Position.Distance(in.ReferencePosition)
		fromPlayer := e.Position.Distance(player)

		if moved <= cfg.PositionThreshold && fromPlayer >= farDistance {
			if !in.Tracking {
				in.Tracking = true
				in.StillSince = now
				continue
			}
			if now-in.StillSince >= cfg.Duration {
				log.Printf("[EnemyRegistry] %s (ID: %d) culled after %.1fs of inactivity", e.Kind, id, now-in.StillSince)
				r.defeat(id, e, events.ReasonCulled)
			}
			continue
		}

		in.Tracking = false
		in.ReferencePosition = e.Position
	}
}

// relocateStragglers 把离玩家太远的敌人移回玩家附近的圆周上
// 每个敌人最多采样 MaxAttempts 次，全部失败则保持原位
func (r *EnemyRegistry) relocateStragglers(player utils.Vec2) {
	cfg := r.cfg.Enemies.Relocation

	for _, id := range r.store.IDs() {
		e, ok := r.store.Get(id)
		if !ok || e.Position.Distance(player) <= cfg.Radius {
			continue
		}

		for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
			angle := r.rng.Float64() * 2 * math.Pi
			candidate := utils.Vec2{
				X: player.X + cfg.Distance*math.Cos(angle),
				Y: player.Y + cfg.Distance*math.Sin(angle),
			}
			if candidate.Distance(player) < cfg.SafeRadius || r.occupiedByOther(id, candidate) {
				continue
			}
			e.Position = candidate
			e.Inactivity = components.InactivityComponent{ReferencePosition: candidate}
			break
		}
	}
}

func (r *EnemyRegistry) occupiedByOther(id ecs.EntityID, p utils.Vec2) bool {
	occupied := false
	r.store.Each(func(otherID ecs.EntityID, other *components.EnemyComponent) bool {
		if otherID != id && other.Bounds().Contains(p) {
			occupied = true
			return false
		}
		return true
	})
	return occupied
}
