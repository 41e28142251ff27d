package systems

import (
	"testing"

	"github.com/gonewx/horde/pkg/components"
	"github.com/gonewx/horde/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCycleBaseTable(t *testing.T) {
	engine := NewDifficultyEngine(config.DefaultSimulationConfig())
	waves := engine.BuildCycle(0)

	require.Len(t, waves, 7)
	assert.Equal(t, config.DefaultBaseWaves(), waves, "第 0 轮即基础波次表")
}

func TestCycleLengthMatchesBuiltCycle(t *testing.T) {
	engine := NewDifficultyEngine(config.DefaultSimulationConfig())
	assert.Equal(t, 7, engine.CycleLength())
	assert.Len(t, engine.BuildCycle(3), engine.CycleLength())
}

func TestBuildCycleEscalation(t *testing.T) {
	engine := NewDifficultyEngine(config.DefaultSimulationConfig())
	waves := engine.BuildCycle(1)

	tests := []struct {
		name         string
		index        int
		wantRegular  int
		wantCharger  int
		wantExploder int
		wantInterval float64
	}{
		{"第 1 波", 0, 20, 0, 0, 2.0},
		{"第 2 波", 1, 30, 0, 0, 1.8},
		{"第 3 波（间隔触底）", 2, 60, 0, 0, 0.5},
		{"第 4 波", 3, 60, 10, 0, 1.3},
		{"第 5 波", 4, 60, 10, 10, 1.1},
		{"第 6 波（间隔触底）", 5, 60, 16, 16, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := waves[tt.index]
			assert.Equal(t, tt.wantRegular, w.RegularEnemies)
			assert.Equal(t, tt.wantCharger, w.ChargerEnemies)
			assert.Equal(t, tt.wantExploder, w.ExploderEnemies)
			assert.InDelta(t, tt.wantInterval, w.SpawnInterval, 1e-9)
		})
	}

	boss := waves[6]
	assert.True(t, boss.IsBoss)
	assert.Equal(t, 0.0, boss.SpawnInterval, "Boss 波次不参与升级")
	assert.Equal(t, 1, boss.TotalEnemies())
	assert.True(t, waves[5].RequiresFullClearance, "标志位保持不变")
}

// TestBuildCycleNotCompounding 默认策略下第 2 轮与第 1 轮相同
func TestBuildCycleNotCompounding(t *testing.T) {
	engine := NewDifficultyEngine(config.DefaultSimulationConfig())
	assert.Equal(t, engine.BuildCycle(1), engine.BuildCycle(2))
}

func TestBuildCycleCompounding(t *testing.T) {
	cfg := config.DefaultSimulationConfig()
	cfg.Difficulty.Compound = true
	engine := NewDifficultyEngine(cfg)

	waves := engine.BuildCycle(3)
	assert.Equal(t, 80, waves[0].RegularEnemies, "10 × 2^3")
	assert.InDelta(t, 0.5, waves[0].SpawnInterval, 1e-9, "3.0 - 3×1.0 触底")
	assert.Equal(t, maxWaveEnemies, engine.CountMultiplier(200), "累乘结果有上限")
}

func TestBuildCycleReturnsFreshSlice(t *testing.T) {
	engine := NewDifficultyEngine(config.DefaultSimulationConfig())
	a := engine.BuildCycle(0)
	a[0].SpawnedRegular = 5
	a[0].RegularEnemies = 999

	b := engine.BuildCycle(0)
	assert.Equal(t, 0, b[0].SpawnedRegular)
	assert.Equal(t, 10, b[0].RegularEnemies)
}

func TestApplyBossDefeat(t *testing.T) {
	engine := NewDifficultyEngine(config.DefaultSimulationConfig())
	stats := components.EnemyStats{ZombieHealth: 3, ZombieSpeed: 0.4, WizardHealth: 15}

	tests := []struct {
		name      string
		grace     float64
		wantGrace float64
	}{
		{"常规缩短", 7, 5},
		{"触底", 2, 1},
		{"已在下限", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, grace := engine.ApplyBossDefeat(stats, tt.grace)
			assert.Equal(t, 6.0, got.ZombieHealth)
			assert.InDelta(t, 0.5, got.ZombieSpeed, 1e-9)
			assert.Equal(t, 30.0, got.WizardHealth)
			assert.Equal(t, tt.wantGrace, grace)
		})
	}
}
