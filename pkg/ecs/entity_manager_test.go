package ecs

import "testing"

// 测试用组件类型
type testUnitComp struct {
	ArchetypeID string
}

type testLaneComp struct {
	LaneIndex int
}

// TestCreateAndGetComponent 测试实体创建和组件读写
func TestCreateAndGetComponent(t *testing.T) {
	em := NewEntityManager()

	id := em.CreateEntity()
	if id == 0 {
		t.Fatal("Expected non-zero entity ID")
	}

	AddComponent(em, id, &testUnitComp{ArchetypeID: "crawler"})

	comp, ok := GetComponent[*testUnitComp](em, id)
	if !ok {
		t.Fatal("Expected component to exist")
	}
	if comp.ArchetypeID != "crawler" {
		t.Errorf("Expected archetype 'crawler', got %q", comp.ArchetypeID)
	}
}

// TestStaleEntityQueries 测试失效实体查询返回 ok=false（无操作语义）
func TestStaleEntityQueries(t *testing.T) {
	em := NewEntityManager()

	id := em.CreateEntity()
	AddComponent(em, id, &testUnitComp{ArchetypeID: "crawler"})
	em.DestroyEntityNow(id)

	if em.IsAlive(id) {
		t.Error("Expected entity to be dead after DestroyEntityNow")
	}
	if _, ok := GetComponent[*testUnitComp](em, id); ok {
		t.Error("Expected stale component query to return ok=false")
	}

	// 对失效实体的 AddComponent 是无操作，不 panic
	AddComponent(em, id, &testLaneComp{LaneIndex: 1})
	if _, ok := GetComponent[*testLaneComp](em, id); ok {
		t.Error("AddComponent on dead entity should be a no-op")
	}
}

// TestDeferredDestroy 测试延迟删除
func TestDeferredDestroy(t *testing.T) {
	em := NewEntityManager()

	id1 := em.CreateEntity()
	id2 := em.CreateEntity()
	em.DestroyEntity(id1)

	// 标记后实体仍然存活，直到 RemoveMarkedEntities
	if !em.IsAlive(id1) {
		t.Error("Expected entity alive before RemoveMarkedEntities")
	}

	em.RemoveMarkedEntities()
	if em.IsAlive(id1) {
		t.Error("Expected entity dead after RemoveMarkedEntities")
	}
	if !em.IsAlive(id2) {
		t.Error("Unmarked entity should survive")
	}
	if em.Count() != 1 {
		t.Errorf("Expected 1 alive entity, got %d", em.Count())
	}
}

// TestGetEntitiesWith 测试组件组合查询
func TestGetEntitiesWith(t *testing.T) {
	em := NewEntityManager()

	unitOnly := em.CreateEntity()
	AddComponent(em, unitOnly, &testUnitComp{})

	both := em.CreateEntity()
	AddComponent(em, both, &testUnitComp{})
	AddComponent(em, both, &testLaneComp{})

	units := GetEntitiesWith1[*testUnitComp](em)
	if len(units) != 2 {
		t.Errorf("Expected 2 entities with unit component, got %d", len(units))
	}

	combined := GetEntitiesWith2[*testUnitComp, *testLaneComp](em)
	if len(combined) != 1 || combined[0] != both {
		t.Errorf("Expected exactly entity %d with both components, got %v", both, combined)
	}
}

// TestRemoveComponent 测试组件移除
func TestRemoveComponent(t *testing.T) {
	em := NewEntityManager()

	id := em.CreateEntity()
	AddComponent(em, id, &testUnitComp{})
	RemoveComponent[*testUnitComp](em, id)

	if _, ok := GetComponent[*testUnitComp](em, id); ok {
		t.Error("Expected component removed")
	}
	if !em.IsAlive(id) {
		t.Error("Entity itself should stay alive after component removal")
	}
}
