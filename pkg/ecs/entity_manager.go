package ecs

// EntityID 是实体的唯一标识符
// 0 保留为无效 ID
type EntityID uint64

// InvalidEntityID 无效实体 ID
const InvalidEntityID EntityID = 0

// EntityManager 有序实体存储
//
// 与按组件类型索引的通用 ECS 不同，这里每个实体只挂一个值（如敌人组件）。
// 迭代顺序固定为插入顺序，保证相同随机种子下模拟结果可复现。
//
// 约束：
//   - ID 单调递增，从 1 开始，被删除的 ID 不会复用
//   - Remove 幂等：删除不存在的实体是空操作
type EntityManager[T any] struct {
	nextID uint64
	values map[EntityID]T
	order  []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager[T any]() *EntityManager[T] {
	return &EntityManager[T]{
		nextID: 1, // ID从1开始,0保留为无效ID
		values: make(map[EntityID]T),
		order:  make([]EntityID, 0),
	}
}

// AllocateID 预分配一个 ID（值稍后通过 Put 写入）
func (em *EntityManager[T]) AllocateID() EntityID {
	id := EntityID(em.nextID)
	em.nextID++
	return id
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager[T]) CreateEntity(value T) EntityID {
	id := em.AllocateID()
	em.Put(id, value)
	return id
}

// Put 写入实体值；实体不存在时追加到迭代顺序末尾
func (em *EntityManager[T]) Put(id EntityID, value T) {
	if _, exists := em.values[id]; !exists {
		em.order = append(em.order, id)
	}
	em.values[id] = value
}

// Get 获取实体值
func (em *EntityManager[T]) Get(id EntityID) (T, bool) {
	v, ok := em.values[id]
	return v, ok
}

// Remove 立即删除实体
// 返回 true 表示本次调用实际删除了实体
func (em *EntityManager[T]) Remove(id EntityID) bool {
	if _, exists := em.values[id]; !exists {
		return false
	}
	delete(em.values, id)
	for i, oid := range em.order {
		if oid == id {
			em.order = append(em.order[:i], em.order[i+1:]...)
			break
		}
	}
	return true
}

// Each 按插入顺序遍历实体，fn 返回 false 时提前结束
// 遍历期间不要调用 Remove；需要删除时先用 IDs 取快照
func (em *EntityManager[T]) Each(fn func(id EntityID, value T) bool) {
	for _, id := range em.order {
		v, ok := em.values[id]
		if !ok {
			continue
		}
		if !fn(id, v) {
			return
		}
	}
}

// IDs 返回当前所有实体 ID 的快照（插入顺序）
func (em *EntityManager[T]) IDs() []EntityID {
	out := make([]EntityID, len(em.order))
	copy(out, em.order)
	return out
}

// Len 当前实体数量
func (em *EntityManager[T]) Len() int {
	return len(em.values)
}

// Clear 删除全部实体（ID 计数器不重置）
func (em *EntityManager[T]) Clear() {
	em.values = make(map[EntityID]T)
	em.order = em.order[:0]
}
