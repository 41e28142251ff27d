package events

// Queue 单线程事件队列
//
// 事件按发出顺序追加。核心内部需要响应的事件（如敌人被击败）
// 通过 Dispatch 立即投递，宿主通过 Drain 在帧末一次性取走全部事件。
// 两个读取方各自维护进度，互不影响。
type Queue struct {
	events     []Event
	dispatched int // 已经 Dispatch 过的事件数
}

// NewQueue 创建空队列
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 64)}
}

// Push 追加事件
func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Len 尚未被 Drain 取走的事件数
func (q *Queue) Len() int {
	return len(q.events)
}

// Dispatch 将上次 Dispatch 之后新增的事件依次交给 fn
// fn 内部追加的事件会在同一次调用中继续投递，直到没有新事件
func (q *Queue) Dispatch(fn func(Event)) {
	for q.dispatched < len(q.events) {
		e := q.events[q.dispatched]
		q.dispatched++
		fn(e)
	}
}

// Drain 取走全部事件并清空队列
func (q *Queue) Drain() []Event {
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, cap(out))
	q.dispatched = 0
	return out
}

// Peek 返回当前事件的副本（不清空）
func (q *Queue) Peek() []Event {
	out := make([]Event, len(q.events))
	copy(out, q.events)
	return out
}

// Clear 丢弃全部事件
func (q *Queue) Clear() {
	q.events = q.events[:0]
	q.dispatched = 0
}

// CountOf 统计当前队列中指定类型的事件数
func (q *Queue) CountOf(t Type) int {
	n := 0
	for _, e := range q.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
