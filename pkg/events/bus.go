package events

// 同步事件总线
//
// 观察者模式的直接回调分发：Publish 返回前所有订阅者都已收到通知，
// 不存在异步队列，保证单线程确定性（调度器的 Update 返回时
// 一切通知都已送达）。
// 单线程使用，无锁。

// EventType 事件类型
type EventType string

const (
	// EventWaveStart 波次开始（携带 WaveStartPayload）
	EventWaveStart EventType = "WAVE_START"

	// EventWaveForecast 波次预报（携带 WaveForecastPayload）
	EventWaveForecast EventType = "WAVE_FORECAST"

	// EventWaveComplete 波次完成（携带 WaveCompletePayload）
	EventWaveComplete EventType = "WAVE_COMPLETE"

	// EventBossIntro Boss 入场（携带 BossIntroPayload）
	EventBossIntro EventType = "BOSS_INTRO"

	// EventLaneUnlockImminent 通道即将解锁（携带 LaneUnlockImminentPayload）
	EventLaneUnlockImminent EventType = "LANE_UNLOCK_IMMINENT"

	// EventLaneUnlocked 通道已解锁（携带 LaneUnlockedPayload）
	EventLaneUnlocked EventType = "LANE_UNLOCKED"

	// EventUnitDied 单位死亡（外部战斗层发布，携带 UnitDiedPayload）
	EventUnitDied EventType = "UNIT_DIED"

	// EventUnitReachedTarget 单位到达防守点（外部战斗层发布，携带 UnitReachedTargetPayload）
	EventUnitReachedTarget EventType = "UNIT_REACHED_TARGET"
)

// Event 事件实例
type Event struct {
	Type EventType
	Data interface{} // 对应类型的 Payload 结构体
}

// Listener 事件订阅者接口
type Listener interface {
	OnEvent(event Event)
}

// Bus 同步事件总线
type Bus struct {
	listeners map[EventType][]Listener
}

// NewBus 创建新的事件总线
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[EventType][]Listener),
	}
}

// Subscribe 订阅指定类型的事件
func (b *Bus) Subscribe(eventType EventType, listener Listener) {
	b.listeners[eventType] = append(b.listeners[eventType], listener)
}

// Unsubscribe 取消订阅
// 同一订阅者注册多次时只移除第一个
func (b *Bus) Unsubscribe(eventType EventType, listener Listener) {
	listeners, exists := b.listeners[eventType]
	if !exists {
		return
	}
	for i, l := range listeners {
		if l == listener {
			b.listeners[eventType] = append(listeners[:i], listeners[i+1:]...)
			return
		}
	}
}

// Publish 同步分发事件给所有订阅者
func (b *Bus) Publish(event Event) {
	for _, listener := range b.listeners[event.Type] {
		listener.OnEvent(event)
	}
}
