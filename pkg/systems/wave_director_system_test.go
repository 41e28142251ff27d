package systems

import (
	"testing"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/config"
	"github.com/gonewx/horde/pkg/ecs"
	"github.com/gonewx/horde/pkg/events"
	"github.com/gonewx/horde/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSpawner 记录导演发出的命令，可模拟放置失败
type fakeSpawner struct {
	nextID         ecs.EntityID
	spawned        map[components.EnemyKind]int
	failNext       int // 接下来失败的次数，< 0 表示一直失败
	removeAllCalls int

	bossCount  int
	bossHealth float64
	bossAt     utils.Vec2

	lastHealth float64
	lastSpeed  float64
}

func newFakeSpawner() *fakeSpawner {
	return &fakeSpawner{spawned: make(map[components.EnemyKind]int)}
}

func (f *fakeSpawner) spawn(kind components.EnemyKind, health, speed float64) (ecs.EntityID, bool) {
	if f.failNext != 0 {
		if f.failNext > 0 {
			f.failNext--
		}
		return ecs.InvalidEntityID, false
	}
	f.nextID++
	f.spawned[kind]++
	f.lastHealth, f.lastSpeed = health, speed
	return f.nextID, true
}

func (f *fakeSpawner) SpawnRegular(health, speed float64) (ecs.EntityID, bool) {
	return f.spawn(components.EnemyKindRegular, health, speed)
}

func (f *fakeSpawner) SpawnCharger(health, speed float64) (ecs.EntityID, bool) {
	return f.spawn(components.EnemyKindCharger, health, speed)
}

func (f *fakeSpawner) SpawnExploder(health, speed float64) (ecs.EntityID, bool) {
	return f.spawn(components.EnemyKindExploder, health, speed)
}

func (f *fakeSpawner) SpawnBoss(health, _ float64, at utils.Vec2) ecs.EntityID {
	f.nextID++
	f.bossCount++
	f.bossHealth = health
	f.bossAt = at
	return f.nextID
}

func (f *fakeSpawner) RemoveAll() {
	f.removeAllCalls++
}

func (f *fakeSpawner) total() int {
	return f.spawned[components.EnemyKindRegular] +
		f.spawned[components.EnemyKindCharger] +
		f.spawned[components.EnemyKindExploder]
}

func wave(n, regular int, interval float64) components.WaveComponent {
	return components.WaveComponent{WaveNumber: n, RegularEnemies: regular, SpawnInterval: interval}
}

func bossWave(n int) components.WaveComponent {
	return components.WaveComponent{WaveNumber: n, IsBoss: true}
}

// newTestDirector 创建测试用导演；waves 为 nil 时使用默认 7 波
func newTestDirector(t *testing.T, waves []components.WaveComponent, mutate func(cfg *config.SimulationConfig)) (*WaveDirectorSystem, *fakeSpawner, *events.Queue) {
	t.Helper()
	cfg := config.DefaultSimulationConfig()
	if waves != nil {
		cfg.Waves = waves
	}
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	spawner := newFakeSpawner()
	q := events.NewQueue()
	d := NewWaveDirectorSystem(cfg, spawner, NewDifficultyEngine(cfg), q, newTestRNG(5))
	return d, spawner, q
}

func advance(d *WaveDirectorSystem, seconds, dt float64) {
	for elapsed := 0.0; elapsed < seconds-1e-9; elapsed += dt {
		d.Update(dt)
	}
}

func TestDirectorStartSpawnsImmediately(t *testing.T) {
	d, spawner, q := newTestDirector(t, nil, nil)
	d.Start()

	st := d.State()
	assert.Equal(t, components.PhaseWaveActive, st.Phase)
	assert.Equal(t, 1, st.WaveCounter)
	assert.Equal(t, 10, st.PendingEnemies)
	assert.Equal(t, 9, st.EnemiesToSpawn)
	assert.Equal(t, 1, spawner.total())
	assert.Equal(t, 3.0, spawner.lastHealth)
	assert.Equal(t, 0.4, spawner.lastSpeed)
	assert.Equal(t, 1, q.CountOf(events.WaveStarted))

	d.Start()
	assert.Equal(t, 1, d.State().WaveCounter, "重复 Start 被忽略")
}

func TestDirectorSpawnCadence(t *testing.T) {
	d, spawner, _ := newTestDirector(t, nil, nil)
	d.Start()

	advance(d, 2.5, 0.5)
	assert.Equal(t, 1, spawner.total())
	advance(d, 0.5, 0.5)
	assert.Equal(t, 2, spawner.total(), "间隔 3 秒后生成第二个")
	advance(d, 3, 0.5)
	assert.Equal(t, 3, spawner.total())
}

// TestDirectorCarryOver 非清场波次：宽限期结束后即使仍有敌人也切换，待击败数累加
func TestDirectorCarryOver(t *testing.T) {
	waves := []components.WaveComponent{
		wave(1, 1, 3.0),
		wave(2, 2, 3.0),
		bossWave(3),
	}
	d, spawner, q := newTestDirector(t, waves, nil)
	d.Start()
	require.Equal(t, 1, spawner.total())

	advance(d, 3, 0.5)
	assert.Equal(t, components.PhaseGracePeriod, d.Phase(), "下一个节拍发现全部生成完毕，进入宽限期")
	assert.Equal(t, 1, q.CountOf(events.GracePeriodStarted))

	advance(d, 6.5, 0.5)
	assert.Equal(t, 1, d.State().WaveCounter, "宽限期未结束")

	advance(d, 0.5, 0.5)
	st := d.State()
	assert.Equal(t, 2, st.WaveCounter)
	assert.Equal(t, 1, st.CurrentWaveIndex)
	assert.Equal(t, components.PhaseWaveActive, st.Phase)
	assert.Equal(t, 1+2, st.PendingEnemies, "上一波剩余的 1 个计入")
	assert.Equal(t, 2, spawner.total())
}

func TestDirectorFullClearance(t *testing.T) {
	waves := []components.WaveComponent{
		{WaveNumber: 1, RegularEnemies: 2, SpawnInterval: 1.0, RequiresFullClearance: true},
		wave(2, 1, 1.0),
		bossWave(3),
	}
	d, spawner, q := newTestDirector(t, waves, nil)
	d.Start()
	advance(d, 1, 0.5)
	require.Equal(t, 2, spawner.total())

	// 第 2 秒的节拍进入宽限期，7 秒后到期
	advance(d, 8, 0.5)
	assert.Equal(t, components.PhaseAwaitingClearance, d.Phase())
	assert.Equal(t, 1, q.CountOf(events.ClearanceRequired))

	advance(d, 30, 0.5)
	assert.Equal(t, 1, d.State().WaveCounter, "有敌人时不切换")
	assert.Equal(t, 1, q.CountOf(events.ClearanceRequired), "阻塞等待，不重复提示")

	d.OnEnemyDefeated()
	assert.Equal(t, 1, d.State().WaveCounter)

	d.OnEnemyDefeated()
	st := d.State()
	assert.Equal(t, 2, st.WaveCounter, "击败最后一个敌人时立即切换")
	assert.Equal(t, components.PhaseWaveActive, st.Phase)
	assert.Equal(t, 1, st.PendingEnemies)
}

func TestDirectorClearanceGracePolicies(t *testing.T) {
	tests := []struct {
		name           string
		policy         string
		wantWaveAfter  int
		wantAfterGrace int
	}{
		{name: "立即切换", policy: config.ClearanceGraceImmediate, wantWaveAfter: 2, wantAfterGrace: 2},
		{name: "等待宽限期结束", policy: config.ClearanceGraceAfterGrace, wantWaveAfter: 1, wantAfterGrace: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waves := []components.WaveComponent{
				{WaveNumber: 1, RegularEnemies: 2, SpawnInterval: 1.0, RequiresFullClearance: true},
				wave(2, 1, 1.0),
				bossWave(3),
			}
			d, _, _ := newTestDirector(t, waves, func(cfg *config.SimulationConfig) {
				cfg.Director.ClearanceGrace = tt.policy
			})
			d.Start()
			advance(d, 2, 0.5)
			require.Equal(t, components.PhaseGracePeriod, d.Phase())

			d.OnEnemyDefeated()
			d.OnEnemyDefeated()
			assert.Equal(t, tt.wantWaveAfter, d.State().WaveCounter)

			advance(d, 7, 0.5)
			assert.Equal(t, tt.wantAfterGrace, d.State().WaveCounter)
		})
	}
}

func TestDirectorPendingNeverNegative(t *testing.T) {
	d, _, _ := newTestDirector(t, nil, nil)
	d.Start()

	for i := 0; i < 50; i++ {
		d.OnEnemyDefeated()
		assert.GreaterOrEqual(t, d.State().PendingEnemies, 0)
	}
	assert.Equal(t, 0, d.State().PendingEnemies)
	assert.Equal(t, 1, d.State().WaveCounter, "重复通知不会触发切换")

	d.HandleEvent(events.Event{Type: events.EnemyDefeated})
	assert.Equal(t, 0, d.State().PendingEnemies)
}

// TestDirectorBossFlow Boss 阶段：清场、登场延迟、竞技场、击败后升级与间歇
func TestDirectorBossFlow(t *testing.T) {
	waves := []components.WaveComponent{
		wave(1, 1, 1.0),
		bossWave(2),
	}
	d, spawner, q := newTestDirector(t, waves, nil)
	d.Start()
	d.OnEnemyDefeated()
	require.Equal(t, components.PhaseGracePeriod, d.Phase())

	advance(d, 7, 0.5)
	require.Equal(t, components.PhaseBossIntro, d.Phase())
	assert.Equal(t, 1, spawner.removeAllCalls, "Boss 阶段开始时清场")
	assert.Equal(t, "Defeat the boss!", d.Progress().Text)
	assert.Equal(t, 1, q.CountOf(events.BossIntroBegan))

	advance(d, 2.5, 0.5)
	assert.Equal(t, 0, spawner.bossCount)
	advance(d, 0.5, 0.5)
	require.Equal(t, 1, spawner.bossCount)
	assert.Equal(t, components.PhaseBossActive, d.Phase())
	assert.Equal(t, 15.0, spawner.bossHealth)

	arena, ok := d.ArenaBounds()
	require.True(t, ok)
	assert.Equal(t, utils.Vec2{X: -640, Y: -360}, arena.Min)
	assert.Equal(t, utils.Vec2{X: 565, Y: 160}, arena.Max)
	assert.Equal(t, utils.Vec2{X: -640, Y: 260}, spawner.bossAt, "Boss 在竞技场外生成")

	d.HandleEvent(events.Event{Type: events.BossDefeated})
	d.OnBossDefeated()
	st := d.State()
	assert.Equal(t, components.PhasePostBossIntermission, st.Phase)
	assert.False(t, st.IsBossStage)
	assert.False(t, st.HasArena)
	assert.Equal(t, 0, st.PendingEnemies)
	assert.Equal(t, components.EnemyStats{ZombieHealth: 6, ZombieSpeed: 0.5, WizardHealth: 30}, st.Stats)
	assert.Equal(t, 5.0, st.GracePeriod)
	assert.Equal(t, 1, q.CountOf(events.DifficultyIncreased), "重复的 Boss 击败通知被忽略")
	assert.Equal(t, 1, q.CountOf(events.ArenaBoundsCleared))

	advance(d, 3, 0.5)
	st = d.State()
	assert.Equal(t, 1, st.Cycle)
	assert.Equal(t, 0, st.CurrentWaveIndex)
	assert.Equal(t, 3, st.WaveCounter)
	assert.Equal(t, components.PhaseWaveActive, st.Phase)
	assert.Equal(t, 1, q.CountOf(events.CycleEscalated))
	assert.Equal(t, 6.0, spawner.lastHealth, "新循环使用提升后的属性")
}

// runFullCycle 把每个生成的敌人立即击败，Boss 登场后立即击败，直到进入下一轮
func runFullCycle(t *testing.T, d *WaveDirectorSystem, spawner *fakeSpawner) {
	t.Helper()
	defeated := 0
	killSpawned := func() {
		for defeated < spawner.total() {
			defeated++
			d.OnEnemyDefeated()
		}
	}

	killSpawned()
	for i := 0; i < 10000; i++ {
		d.Update(0.5)
		if d.State().Cycle == 1 && d.Phase() == components.PhaseWaveActive {
			return
		}
		killSpawned()
		if d.Phase() == components.PhaseBossActive {
			d.OnBossDefeated()
		}
	}
	t.Fatal("did not reach the next cycle")
}

// TestDirectorEscalation 击败第一轮 Boss 后：第 1 波普通敌人 20 个，生命值 +3
func TestDirectorEscalation(t *testing.T) {
	d, spawner, q := newTestDirector(t, nil, nil)
	d.Start()
	healthBefore := d.State().Stats.ZombieHealth

	runFullCycle(t, d, spawner)

	st := d.State()
	waves := d.Waves()
	assert.Equal(t, 20, waves[0].RegularEnemies)
	assert.Equal(t, 2.0, waves[0].SpawnInterval)
	assert.Equal(t, healthBefore+3, st.Stats.ZombieHealth)
	assert.Equal(t, 8, st.WaveCounter)
	assert.Equal(t, 20, st.PendingEnemies)
	assert.Equal(t, 1, spawner.bossCount)
	assert.Equal(t, 1, q.CountOf(events.CycleEscalated))

	// 第一轮每波的敌人都全部生成
	assert.Equal(t, 10+15+30+30+30+30, spawner.spawned[components.EnemyKindRegular]-1)
	assert.Equal(t, 5+5+8, spawner.spawned[components.EnemyKindCharger])
	assert.Equal(t, 5+8, spawner.spawned[components.EnemyKindExploder])
}

func TestDirectorAnnouncesNewEnemyTypesOnce(t *testing.T) {
	d, spawner, q := newTestDirector(t, nil, nil)
	d.Start()
	runFullCycle(t, d, spawner)

	type announcement struct {
		wave int
		kind components.EnemyKind
	}
	var got []announcement
	for _, e := range q.Peek() {
		if e.Type == events.NewEnemyTypeIntroduced {
			got = append(got, announcement{e.WaveNumber, e.Kind})
		}
	}
	assert.Equal(t, []announcement{
		{4, components.EnemyKindCharger},
		{5, components.EnemyKindExploder},
		{7, components.EnemyKindBoss},
	}, got)
}

func TestDirectorPauseHasNoDrift(t *testing.T) {
	d, spawner, _ := newTestDirector(t, nil, nil)
	d.Start()

	advance(d, 1, 0.5)
	d.Pause()
	advance(d, 100, 0.5)
	assert.Equal(t, 1, spawner.total(), "暂停期间不生成")

	d.Resume()
	advance(d, 1.5, 0.5)
	assert.Equal(t, 1, spawner.total())
	advance(d, 0.5, 0.5)
	assert.Equal(t, 2, spawner.total(), "恢复后恰好再经过剩余的 2 秒")
}

func TestDirectorResetCancelsTimers(t *testing.T) {
	waves := []components.WaveComponent{
		wave(1, 1, 1.0),
		bossWave(2),
	}
	d, spawner, _ := newTestDirector(t, waves, nil)
	d.Start()
	d.OnEnemyDefeated()
	advance(d, 7, 0.5)
	require.Equal(t, components.PhaseBossIntro, d.Phase())

	d.Reset()
	st := d.State()
	assert.Equal(t, components.PhaseIdle, st.Phase)
	assert.False(t, st.TransitionTimer.IsActive)
	assert.False(t, st.SpawnTimer.IsActive)
	assert.False(t, st.IsBossStage)
	assert.Equal(t, 0, st.WaveCounter)
	assert.Equal(t, 7.0, st.GracePeriod)
	assert.Equal(t, 3.0, st.Stats.ZombieHealth)
	assert.Equal(t, 2, spawner.removeAllCalls)

	advance(d, 10, 0.5)
	assert.Equal(t, 0, spawner.bossCount, "重置前的登场计时器不会再触发")

	d.Start()
	assert.Equal(t, 1, d.State().WaveCounter)
	assert.Equal(t, components.PhaseWaveActive, d.Phase())
}

func TestDirectorSpawnRetryPolicies(t *testing.T) {
	tests := []struct {
		name        string
		policy      string
		failures    int
		wantSpawned int
	}{
		{name: "不重试：本节拍放弃", policy: config.SpawnRetryNone, failures: 2, wantSpawned: 0},
		{name: "同节拍重试成功", policy: config.SpawnRetrySameTick, failures: 2, wantSpawned: 1},
		{name: "同节拍重试耗尽", policy: config.SpawnRetrySameTick, failures: 10, wantSpawned: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, spawner, _ := newTestDirector(t, nil, func(cfg *config.SimulationConfig) {
				cfg.Director.SpawnRetry = tt.policy
				cfg.Director.MaxSpawnRetries = 3
			})
			spawner.failNext = tt.failures
			d.Start()

			assert.Equal(t, tt.wantSpawned, spawner.total())
			assert.Equal(t, 10-tt.wantSpawned, d.State().EnemiesToSpawn, "配额只在成功时消耗")
			cur, _ := d.CurrentWave()
			assert.Equal(t, tt.wantSpawned, cur.SpawnedRegular)
			assert.True(t, d.State().SpawnTimer.IsActive, "下一个节拍照常安排")
		})
	}
}

func TestDirectorSpawnsExactComposition(t *testing.T) {
	waves := []components.WaveComponent{
		{WaveNumber: 1, RegularEnemies: 3, ChargerEnemies: 4, ExploderEnemies: 2, SpawnInterval: 0.5},
		bossWave(2),
	}
	d, spawner, _ := newTestDirector(t, waves, nil)
	d.Start()
	advance(d, 10, 0.5)

	assert.Equal(t, 3, spawner.spawned[components.EnemyKindRegular])
	assert.Equal(t, 4, spawner.spawned[components.EnemyKindCharger])
	assert.Equal(t, 2, spawner.spawned[components.EnemyKindExploder])
	assert.Equal(t, 0, d.State().EnemiesToSpawn)
}

func TestDirectorProgressText(t *testing.T) {
	d, _, _ := newTestDirector(t, []components.WaveComponent{wave(1, 2, 1.0), bossWave(2)}, nil)
	assert.Equal(t, "Waiting for next wave...", d.Progress().Text)

	d.Start()
	assert.Equal(t, "Enemies left: 2", d.Progress().Text)

	d.OnEnemyDefeated()
	p := d.Progress()
	assert.Equal(t, "Enemies left: 1", p.Text)
	assert.Equal(t, 1, p.WaveNumber)
	assert.Equal(t, components.PhaseWaveActive, p.Phase)
}

func TestArenaFor(t *testing.T) {
	cfg := config.DefaultSimulationConfig()
	arena := ArenaFor(cfg, utils.Vec2{X: 100, Y: 50})
	assert.Equal(t, utils.Vec2{X: -540, Y: -310}, arena.Min)
	assert.Equal(t, 1205.0, arena.Width())
	assert.Equal(t, 520.0, arena.Height())
}
