package components

// ArchetypeStateComponent 兵种运行时状态（与兵种定义 1:1）
//
// 仅在波次选择敲定后由调度器修改
type ArchetypeStateComponent struct {
	// CooldownRemain 剩余冷却波数（每波递减，最低 0）
	CooldownRemain int

	// LastSeenWave 最近一次被选中的波次编号（0 表示从未出现）
	LastSeenWave int
}

// TemplateStateComponent 配比/节奏模板运行时状态
type TemplateStateComponent struct {
	// CooldownRemain 剩余冷却波数
	CooldownRemain int
}

// BossEchoComponent Boss 回响运行时状态
//
// Boss 波被规划时创建；当前波次越过 BaseEndWave 后被修剪。
// 两段窗口：短时高权重的奖励窗口 + 紧随其后的长尾低权重窗口。
type BossEchoComponent struct {
	// TargetID 受加成的普通兵种ID
	TargetID string

	// BonusStartWave / BonusEndWave 奖励窗口（含两端）
	BonusStartWave int
	BonusEndWave   int

	// BonusWeight 奖励窗口内附加权重
	BonusWeight float64

	// BaseStartWave / BaseEndWave 长尾窗口（含两端）
	BaseStartWave int
	BaseEndWave   int

	// BaseWeight 长尾窗口内附加权重
	BaseWeight float64
}
