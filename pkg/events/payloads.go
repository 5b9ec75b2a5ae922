package events

import (
	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/utils"
)

// 事件载荷结构体
// 每个 EventType 对应一个 Payload 类型，见 bus.go 中的常量注释

// WaveStartPayload 波次开始
type WaveStartPayload struct {
	Wave       int // 波次编号（从 1 开始）
	EnemyCount int // 本波计划出怪总数
}

// WaveForecastPayload 波次预报
// 在波次开始前发布，供 UI 播报"下一波的代表性敌人"
type WaveForecastPayload struct {
	Wave        int
	ArchetypeID string
	Lane        components.Lane
	SpawnType   components.SpawnType
}

// WaveCompletePayload 波次完成
type WaveCompletePayload struct {
	Wave  int
	Bonus int // 通关奖励金币（与波次编号和精英数成正比）
}

// BossIntroPayload Boss 入场
type BossIntroPayload struct {
	Handle      components.SpawnHandle
	ArchetypeID string
	Lane        components.Lane
}

// LaneUnlockImminentPayload 通道即将解锁（预警窗口开始）
type LaneUnlockImminentPayload struct {
	Lane          components.Lane
	RemainSeconds float64
}

// LaneUnlockedPayload 通道已解锁
type LaneUnlockedPayload struct {
	Lane components.Lane
}

// UnitDiedPayload 单位死亡通知（由外部战斗层发布）
type UnitDiedPayload struct {
	Handle components.SpawnHandle
}

// UnitReachedTargetPayload 单位到达防守点通知（由外部战斗层发布）
type UnitReachedTargetPayload struct {
	Handle   components.SpawnHandle
	Position utils.Vec2
}
