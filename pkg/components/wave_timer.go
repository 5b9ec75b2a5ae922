package components

// WaveTimerComponent 波次间隔计时器组件
// 存储波次调度倒计时状态，供 PacingSystem 使用
// 注意：遵循 ECS 原则，组件仅存储数据，不包含方法
//
// 时间单位说明：
// 倒计时以厘秒 (centiseconds, cs) 为基准
// - 1 厘秒 = 0.01 秒
// - deltaTime 转换为厘秒后可能有小数，小数部分单独累积保证精确计时
type WaveTimerComponent struct {
	// CountdownCs 当前倒计时（厘秒）
	// 每帧递减，当 <= 1 时触发下一波
	CountdownCs int

	// AccumulatedCs 累积的小数部分（用于精确计时）
	AccumulatedCs float64

	// Counting 倒计时是否生效
	// 上一波收尾（完成判定通过）后才开始为下一波计时
	Counting bool

	// NextWaveNumber 下一个要触发的波次编号（从 1 开始）
	NextWaveNumber int

	// IsPaused 是否暂停
	// 暂停时倒计时不递减
	IsPaused bool

	// ExternalAuthority 外部权威模式
	// true 时本地倒计时逻辑整体停用，波次触发完全由外部调度
	ExternalAuthority bool

	// WaveStartedAt 最近一波触发时的会话时间（秒，调试用）
	WaveStartedAt float64
}
