package components

// WaveComponent 单个波次的定义与生成进度
//
// 定义字段在构建波次循环时确定，只有生成进度计数器会被 WaveDirectorSystem 修改。
type WaveComponent struct {
	// WaveNumber 波次号（1-based，循环内编号）
	WaveNumber int `yaml:"waveNumber"`

	// RegularEnemies / ChargerEnemies / ExploderEnemies 各类敌人目标数量
	RegularEnemies  int `yaml:"regular"`
	ChargerEnemies  int `yaml:"charger"`
	ExploderEnemies int `yaml:"exploder"`

	// IsHorde 快速生成节奏（只影响间隔，不影响状态机）
	IsHorde bool `yaml:"horde"`

	// IsBoss Boss 波次，不走常规生成循环
	IsBoss bool `yaml:"boss"`

	// SpawnInterval 相邻两次生成的间隔（秒），Boss 波次为 0
	SpawnInterval float64 `yaml:"spawnInterval"`

	// RequiresFullClearance 必须清空全部敌人才能进入下一波
	RequiresFullClearance bool `yaml:"fullClearance"`

	// 生成进度（只统计成功生成的数量）
	SpawnedRegular  int `yaml:"-"`
	SpawnedCharger  int `yaml:"-"`
	SpawnedExploder int `yaml:"-"`
}

// TotalEnemies 本波计入待击败数的敌人总数
// Boss 波次固定为 1（Boss 本身）
func (w *WaveComponent) TotalEnemies() int {
	if w.IsBoss {
		return 1
	}
	return w.RegularEnemies + w.ChargerEnemies + w.ExploderEnemies
}

// AllEnemiesSpawned 各类敌人是否都已达到目标数量
func (w *WaveComponent) AllEnemiesSpawned() bool {
	return w.SpawnedRegular >= w.RegularEnemies &&
		w.SpawnedCharger >= w.ChargerEnemies &&
		w.SpawnedExploder >= w.ExploderEnemies
}

// Remaining 指定种类尚未生成的数量
func (w *WaveComponent) Remaining(kind EnemyKind) int {
	var r int
	switch kind {
	case EnemyKindRegular:
		r = w.RegularEnemies - w.SpawnedRegular
	case EnemyKindCharger:
		r = w.ChargerEnemies - w.SpawnedCharger
	case EnemyKindExploder:
		r = w.ExploderEnemies - w.SpawnedExploder
	}
	if r < 0 {
		return 0
	}
	return r
}

// Contains 本波是否包含指定种类的敌人
func (w *WaveComponent) Contains(kind EnemyKind) bool {
	switch kind {
	case EnemyKindRegular:
		return w.RegularEnemies > 0
	case EnemyKindCharger:
		return w.ChargerEnemies > 0
	case EnemyKindExploder:
		return w.ExploderEnemies > 0
	case EnemyKindBoss:
		return w.IsBoss
	}
	return false
}
