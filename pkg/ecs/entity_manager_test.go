package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnemy struct {
	Name   string
	Health float64
}

// TestCreateEntity 测试实体创建
func TestCreateEntity(t *testing.T) {
	em := NewEntityManager[*testEnemy]()

	id1 := em.CreateEntity(&testEnemy{Name: "a"})
	id2 := em.CreateEntity(&testEnemy{Name: "b"})

	assert.Equal(t, EntityID(1), id1, "ID 应从 1 开始")
	assert.NotEqual(t, id1, id2, "ID 必须唯一")
	assert.Equal(t, 2, em.Len())
}

func TestGet(t *testing.T) {
	em := NewEntityManager[*testEnemy]()
	id := em.CreateEntity(&testEnemy{Name: "a", Health: 3})

	got, ok := em.Get(id)
	require.True(t, ok)
	assert.Equal(t, 3.0, got.Health)

	_, ok = em.Get(InvalidEntityID)
	assert.False(t, ok)
}

// TestRemoveIsIdempotent 重复删除与删除一次的结果一致
func TestRemoveIsIdempotent(t *testing.T) {
	em := NewEntityManager[*testEnemy]()
	a := em.CreateEntity(&testEnemy{Name: "a"})
	b := em.CreateEntity(&testEnemy{Name: "b"})

	assert.True(t, em.Remove(a))
	idsAfterOnce := em.IDs()

	assert.False(t, em.Remove(a), "第二次删除应为空操作")
	assert.Equal(t, idsAfterOnce, em.IDs())
	assert.Equal(t, []EntityID{b}, em.IDs())
	assert.False(t, em.Remove(EntityID(999)))
}

// TestRemoveDuringSnapshotIteration 按 IDs 快照遍历时可以安全删除
func TestRemoveDuringSnapshotIteration(t *testing.T) {
	em := NewEntityManager[*testEnemy]()
	for i := 0; i < 6; i++ {
		em.CreateEntity(&testEnemy{Health: float64(i)})
	}

	for _, id := range em.IDs() {
		if e, ok := em.Get(id); ok && int(e.Health)%2 == 0 {
			em.Remove(id)
		}
	}
	assert.Equal(t, []EntityID{2, 4, 6}, em.IDs())
}

func TestEachPreservesInsertionOrder(t *testing.T) {
	em := NewEntityManager[*testEnemy]()
	var want []EntityID
	for i := 0; i < 20; i++ {
		want = append(want, em.CreateEntity(&testEnemy{}))
	}
	em.Remove(want[5])
	want = append(want[:5], want[6:]...)

	var got []EntityID
	em.Each(func(id EntityID, _ *testEnemy) bool {
		got = append(got, id)
		return true
	})
	assert.Equal(t, want, got)

	count := 0
	em.Each(func(EntityID, *testEnemy) bool {
		count++
		return count < 3
	})
	assert.Equal(t, 3, count, "返回 false 应提前结束")
}

func TestAllocateIDAndPut(t *testing.T) {
	em := NewEntityManager[*testEnemy]()
	id := em.AllocateID()
	_, ok := em.Get(id)
	assert.False(t, ok, "预分配的 ID 尚无实体")

	em.Put(id, &testEnemy{Name: "late"})
	em.Put(id, &testEnemy{Name: "replaced"})

	got, ok := em.Get(id)
	require.True(t, ok)
	assert.Equal(t, "replaced", got.Name)
	assert.Len(t, em.IDs(), 1, "覆盖写入不应重复追加顺序")
}

func TestClearKeepsIDCounter(t *testing.T) {
	em := NewEntityManager[*testEnemy]()
	first := em.CreateEntity(&testEnemy{})
	em.CreateEntity(&testEnemy{})

	em.Clear()
	assert.Equal(t, 0, em.Len())
	assert.Empty(t, em.IDs())

	next := em.CreateEntity(&testEnemy{})
	assert.Greater(t, uint64(next), uint64(first), "清空后 ID 不复用")
}
