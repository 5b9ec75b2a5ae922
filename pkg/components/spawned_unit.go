package components

// SpawnedUnitComponent 已生成单位的簿记组件
//
// 波次调度器为每个成功生成的单位建立一个簿记实体，
// 用于波次完成判定和 Boss 击杀检测。
// 通知到达时单位可能已被引擎销毁，簿记条目按存在性检查处理。
type SpawnedUnitComponent struct {
	// Handle 引擎侧单位句柄（死亡/到达通知按它检索）
	Handle SpawnHandle

	// ArchetypeID 单位兵种ID
	ArchetypeID string

	// SpawnType 出怪类型（regular/elite/boss）
	SpawnType SpawnType

	// Lane 出生通道
	Lane Lane

	// WaveNumber 所属波次编号（从 1 开始）
	WaveNumber int
}
