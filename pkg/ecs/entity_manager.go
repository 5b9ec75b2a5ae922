package ecs

import "reflect"

// EntityID 是实体的唯一标识符
//
// 波次调度器用它做"竞技场式"（arena-style）登记：已生成单位的
// 簿记条目、行状态等都挂在实体上。引擎侧的单位句柄只映射到
// EntityID，实体生命周期由本库自己管理，绝不持有引擎对象。
type EntityID uint64

// EntityManager 管理所有实体和组件
//
// 单线程使用（帧循环线程独占），无锁。
// 已失效实体的查询返回 ok=false，调用方按无操作处理（防御性存在检查）。
type EntityManager struct {
	nextID uint64
	// 实体-组件映射: EntityID -> ComponentType -> Component实例
	components map[EntityID]map[reflect.Type]interface{}
	// 待删除的实体ID列表
	entitiesToDestroy []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:            1, // ID从1开始,0保留为无效ID
		components:        make(map[EntityID]map[reflect.Type]interface{}),
		entitiesToDestroy: make([]EntityID, 0),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	id := EntityID(em.nextID)
	em.nextID++
	em.components[id] = make(map[reflect.Type]interface{})
	return id
}

// DestroyEntity 标记实体待删除(不立即删除)
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// DestroyEntityNow 立即删除实体及其全部组件
// 死亡通知处理走这里：同一帧内后续查询必须已经看不到该实体
func (em *EntityManager) DestroyEntityNow(id EntityID) {
	delete(em.components, id)
}

// IsAlive 检查实体是否仍然存在
func (em *EntityManager) IsAlive(id EntityID) bool {
	_, exists := em.components[id]
	return exists
}

// Count 返回当前存活实体数
func (em *EntityManager) Count() int {
	return len(em.components)
}

// RemoveMarkedEntities 清理所有标记删除的实体
func (em *EntityManager) RemoveMarkedEntities() {
	for _, id := range em.entitiesToDestroy {
		delete(em.components, id)
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0] // 清空切片
}

// AddComponent 为实体添加组件
//
// 泛型版本，组件按具体类型索引。实体不存在时为无操作。
func AddComponent[T any](em *EntityManager, id EntityID, component T) {
	componentType := reflect.TypeOf(component)
	if compMap, exists := em.components[id]; exists {
		compMap[componentType] = component
	}
}

// GetComponent 获取实体的特定类型组件
//
// 返回：
//
//	组件实例和是否存在。实体或组件不存在时返回零值和 false。
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	var zero T
	compMap, exists := em.components[id]
	if !exists {
		return zero, false
	}
	comp, found := compMap[reflect.TypeOf(zero)]
	if !found {
		return zero, false
	}
	typed, ok := comp.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// RemoveComponent 从实体移除指定类型的组件
func RemoveComponent[T any](em *EntityManager, id EntityID) {
	var zero T
	if compMap, exists := em.components[id]; exists {
		delete(compMap, reflect.TypeOf(zero))
	}
}

// GetEntitiesWith1 查询拥有指定组件类型的所有实体
func GetEntitiesWith1[T any](em *EntityManager) []EntityID {
	var zero T
	targetType := reflect.TypeOf(zero)

	result := make([]EntityID, 0)
	for id, compMap := range em.components {
		if _, found := compMap[targetType]; found {
			result = append(result, id)
		}
	}
	return result
}

// GetEntitiesWith2 查询同时拥有两种组件类型的所有实体
func GetEntitiesWith2[T1 any, T2 any](em *EntityManager) []EntityID {
	var zero1 T1
	var zero2 T2
	type1 := reflect.TypeOf(zero1)
	type2 := reflect.TypeOf(zero2)

	result := make([]EntityID, 0)
	for id, compMap := range em.components {
		if _, found := compMap[type1]; !found {
			continue
		}
		if _, found := compMap[type2]; !found {
			continue
		}
		result = append(result, id)
	}
	return result
}
