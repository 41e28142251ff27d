package systems

import "github.com/gonewx/horde/pkg/components"

// 可暂停倒计时的操作函数
//
// 计时器只累计调用方传入的 dt，从不读取墙钟，
// 因此暂停期间不调用 AdvanceTimer（或处于 IsPaused）即可做到零漂移。

// StartTimer 以指定时长（秒）启动或重启计时器
func StartTimer(t *components.TimerComponent, name string, duration float64) {
	t.Name = name
	t.TargetTime = duration
	t.CurrentTime = 0
	t.IsReady = false
	t.IsActive = true
	t.IsPaused = false
}

// AdvanceTimer 推进计时器
// 返回 true 表示本次推进使计时器到期（每次启动只返回一次 true）
// 未启动、已到期、已暂停的计时器不做任何事
func AdvanceTimer(t *components.TimerComponent, dt float64) bool {
	if !t.IsActive || t.IsReady || t.IsPaused || dt < 0 {
		return false
	}
	t.CurrentTime += dt
	if t.CurrentTime >= t.TargetTime {
		t.IsReady = true
		t.IsActive = false
		return true
	}
	return false
}

// CancelTimer 取消计时器，已累计的时间一并丢弃
func CancelTimer(t *components.TimerComponent) {
	t.IsActive = false
	t.IsReady = false
	t.IsPaused = false
	t.CurrentTime = 0
}

// PauseTimer 暂停计时器，保留已累计的时间
func PauseTimer(t *components.TimerComponent) {
	if t.IsActive {
		t.IsPaused = true
	}
}

// ResumeTimer 从暂停处继续
func ResumeTimer(t *components.TimerComponent) {
	t.IsPaused = false
}
