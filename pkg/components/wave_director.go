package components

import "github.com/gonewx/horde/pkg/utils"

// DirectorPhase 波次导演状态机阶段
type DirectorPhase int

const (
	// PhaseIdle 尚未开始
	PhaseIdle DirectorPhase = iota
	// PhaseWaveActive 常规波次进行中（生成循环运行）
	PhaseWaveActive
	// PhaseGracePeriod 本波全部生成完毕，宽限倒计时中
	PhaseGracePeriod
	// PhaseAwaitingClearance 宽限结束但需要清场，等待击败剩余敌人
	PhaseAwaitingClearance
	// PhaseBossIntro Boss 登场前的固定延迟
	PhaseBossIntro
	// PhaseBossActive Boss 战进行中
	PhaseBossActive
	// PhasePostBossIntermission Boss 被击败后的"敌人正在变强"间歇
	PhasePostBossIntermission
)

func (p DirectorPhase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseWaveActive:
		return "WaveActive"
	case PhaseGracePeriod:
		return "GracePeriod"
	case PhaseAwaitingClearance:
		return "AwaitingClearance"
	case PhaseBossIntro:
		return "BossIntro"
	case PhaseBossActive:
		return "BossActive"
	case PhasePostBossIntermission:
		return "PostBossIntermission"
	default:
		return "Unknown"
	}
}

// EnemyStats 随 Boss 击败次数递增的敌人基础属性
type EnemyStats struct {
	ZombieHealth float64 `yaml:"zombieHealth"`
	ZombieSpeed  float64 `yaml:"zombieSpeed"`
	WizardHealth float64 `yaml:"wizardHealth"`
}

// WaveDirectorComponent 波次导演状态
// 仅存储数据，由 WaveDirectorSystem 维护
type WaveDirectorComponent struct {
	// Phase 当前阶段
	Phase DirectorPhase

	// Cycle 当前循环序号（0 为基础循环）
	Cycle int

	// CurrentWaveIndex 当前波次在循环内的索引（0-based）
	CurrentWaveIndex int

	// WaveCounter 累计开始的波次数（HUD 显示用，跨循环递增）
	WaveCounter int

	// PendingEnemies 已计入但尚未击败的敌人数
	// 只由导演自己维护，永不为负
	PendingEnemies int

	// EnemiesToSpawn 尚未生成的敌人数
	EnemiesToSpawn int

	// IsBossStage Boss 阶段（Boss 登场延迟 + Boss 战）
	IsBossStage bool

	// IsTransitioningWave 波次切换进行中，阻止重复触发宽限流程
	IsTransitioningWave bool

	// IsGracePeriodActive 宽限倒计时是否在运行
	IsGracePeriodActive bool

	// GracePeriod 当前宽限时长（秒），每次击败 Boss 缩短
	GracePeriod float64

	// Stats 当前敌人基础属性
	Stats EnemyStats

	// IsPaused 暂停时所有计时器停止
	IsPaused bool

	// ArenaBounds Boss 竞技场边界，HasArena 为 false 时无效
	ArenaBounds utils.Rect
	HasArena    bool

	// SpawnTimer 生成节奏计时器
	SpawnTimer TimerComponent
	// TransitionTimer 宽限 / Boss 登场 / Boss 后间歇共用的切换计时器
	TransitionTimer TimerComponent
}
