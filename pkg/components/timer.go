package components

// TimerComponent 可暂停的逻辑倒计时
//
// 只记录已流逝的模拟时间，不依赖墙钟。
// 推进逻辑在 systems.AdvanceTimer 中，本结构体只保存数据。
type TimerComponent struct {
	Name        string  // 计时器名称，如 "grace_period"
	TargetTime  float64 // 目标时间（秒）
	CurrentTime float64 // 当前已过时间（秒）
	IsReady     bool    // 计时器是否已完成
	IsActive    bool    // 是否已启动且未取消
	IsPaused    bool    // 暂停期间不累计时间
}

// Remaining 剩余时间（秒），未启动时为 0
func (t *TimerComponent) Remaining() float64 {
	if !t.IsActive {
		return 0
	}
	r := t.TargetTime - t.CurrentTime
	if r < 0 {
		return 0
	}
	return r
}
