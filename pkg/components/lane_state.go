package components

import "github.com/decker502/horde/pkg/utils"

// Lane 进攻通道标识
//
// 固定枚举，遍历顺序恒为 top → mid → bottom。
// 游戏开始时只有 mid 解锁，其余通道通过击杀 Boss 依次解锁。
type Lane string

const (
	// LaneTop 上路
	LaneTop Lane = "top"

	// LaneMid 中路（开局唯一解锁的通道）
	LaneMid Lane = "mid"

	// LaneBottom 下路
	LaneBottom Lane = "bottom"
)

// LaneOrder 通道的固定遍历顺序
// 解锁游标和 Boss 通道轮转游标都按此顺序推进
var LaneOrder = []Lane{LaneTop, LaneMid, LaneBottom}

// LanePhase 通道解锁状态机的阶段
type LanePhase int

const (
	// LanePhaseLocked 锁定（不可作为出生通道）
	LanePhaseLocked LanePhase = iota

	// LanePhaseUnlocking 解锁预警中（警告窗口期，仍不可出怪）
	LanePhaseUnlocking

	// LanePhaseUnlocked 已解锁
	LanePhaseUnlocked
)

// LaneStateComponent 单条通道的状态组件
//
// 注意：遵循 ECS 原则，组件仅存储数据，不包含方法。
// 平滑权重计数器（LastPicked/SecondLastPicked）用于让普通出怪
// 在已解锁通道之间分布自然、避免连续重复。
type LaneStateComponent struct {
	// Lane 通道标识
	Lane Lane

	// Phase 解锁状态机当前阶段
	Phase LanePhase

	// UnlockCountdownSeconds 预警窗口剩余秒数
	// 仅在 Phase == LanePhaseUnlocking 时有意义
	UnlockCountdownSeconds float64

	// Portal 出怪门世界坐标（初始化时从防守点和地图边界计算，之后不变）
	Portal utils.Vec2

	// Outward 出怪门朝外方向单位向量（背离防守点）
	Outward utils.Vec2

	// Weight 通道选择基础权重
	Weight float64

	// LastPicked 距离上次被选中经过的出怪次数
	LastPicked int

	// SecondLastPicked 距离上上次被选中经过的出怪次数
	SecondLastPicked int
}
