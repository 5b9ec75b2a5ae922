package config

// 波次调教数据结构
//
// 所有配置实体在 Normalize 阶段一次性创建，之后不可变。
// 同一 ID 的兵种全局只有一个实例，各系统通过指针共享。

// AttackType 攻击方式枚举
type AttackType string

const (
	// AttackStandard 标准近战
	AttackStandard AttackType = "standard"

	// AttackRam 冲撞型（撞击后自毁）
	AttackRam AttackType = "ram"

	// AttackRanged 远程型
	AttackRanged AttackType = "ranged"
)

// RhythmPattern 波内节奏曲线枚举
type RhythmPattern string

const (
	// RhythmSteady 匀速出怪
	RhythmSteady RhythmPattern = "steady"

	// RhythmFrontload 前密后疏（开局压力大）
	RhythmFrontload RhythmPattern = "frontload"

	// RhythmBackload 前疏后密（收尾压力大）
	RhythmBackload RhythmPattern = "backload"

	// RhythmPulse 脉冲式（紧凑对 + 长间隔交替）
	RhythmPulse RhythmPattern = "pulse"
)

// 数值字段的合法范围
// 归一化时所有越界值都会被约束到这些范围内
const (
	// BaseWeightMin / BaseWeightMax 兵种基础权重范围
	BaseWeightMin = 0.05
	BaseWeightMax = 1000.0

	// PowerMin / PowerMax 兵种强度系数范围（缩放衍生战斗属性）
	PowerMin = 0.4
	PowerMax = 4.0

	// CooldownWavesMax 兵种/模板冷却波数上限
	CooldownWavesMax = 25

	// VisualScaleMax 视觉缩放上限
	VisualScaleMax = 5.0

	// IntervalMultiplierMin / IntervalMultiplierMax 单条目出怪间隔倍率范围
	IntervalMultiplierMin = 0.35
	IntervalMultiplierMax = 2.4
)

// EnemyArchetype 敌方兵种定义
//
// 兵种是可复用的"类型"，不是实例。归一化后不可变。
type EnemyArchetype struct {
	ID             string     // 唯一标识
	VisualAssetRef string     // 模型资源引用（本库不解释，透传给生成器）
	BaseWeight     float64    // 抽样基础权重，> 0
	Power          float64    // 强度系数，[0.4, 4]
	Tags           []string   // 标签集合，如 "ground"、"ranged"
	CooldownBase   int        // 被选中后压制的波数
	AttackType     AttackType // 攻击方式
	VisualScale    float64    // 视觉缩放，0 表示未指定
}

// HasTag 判断兵种是否带有指定标签
func (a *EnemyArchetype) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// BossArchetype Boss 兵种定义
//
// 在普通兵种之上附加回响目标：该 Boss 被使用后，
// EchoTargetID 指向的普通兵种会获得限时权重加成。
type BossArchetype struct {
	EnemyArchetype

	// EchoTargetID 回响目标兵种ID，空表示无回响
	EchoTargetID string
}

// CompositionTemplate 兵种配比模板
//
// Shares 是各选中兵种槽位的百分比份额，概念上总和为 100。
// 实际选中兵种数与份额数不一致时由分配算法归一化处理。
type CompositionTemplate struct {
	ID            string
	Shares        []float64
	CooldownWaves int
}

// RhythmTemplate 波内节奏模板
type RhythmTemplate struct {
	ID            string
	Pattern       RhythmPattern
	CooldownWaves int
}

// BossCombatConfig Boss 战斗倍率
// 在基础波次缩放之上额外相乘
type BossCombatConfig struct {
	HP     float64
	Attack float64
	Speed  float64
	Scale  float64
	Coin   float64
}

// EliteCombatConfig 精英怪战斗倍率（固定调教块，可被配置覆盖）
type EliteCombatConfig struct {
	HP     float64
	Attack float64
	Speed  float64
	Scale  float64
	Coin   float64
}

// BossEchoConfig Boss 回响调教
//
// 回响分两段：短时高权重的奖励窗口（bonus window），
// 紧随其后的长尾低权重窗口（base window）。
type BossEchoConfig struct {
	StartDelayWaves   int     // Boss 出场后延迟多少波开始奖励窗口
	BonusWeightMin    float64 // 奖励窗口权重范围下限
	BonusWeightMax    float64 // 奖励窗口权重范围上限
	BonusDurationMin  int     // 奖励窗口持续波数范围下限
	BonusDurationMax  int     // 奖励窗口持续波数范围上限
	BaseWeightMin     float64 // 长尾窗口权重范围下限
	BaseWeightMax     float64 // 长尾窗口权重范围上限
	BaseDurationWaves int     // 长尾窗口持续波数
}

// BossEventConfig Boss 事件调教
//
// 仅当 Enabled 为 true 且至少有一个合法 Boss 兵种时才会被接受，
// 否则整个 Boss 逻辑被禁用（下一个 Boss 波永远不可达）。
type BossEventConfig struct {
	Enabled           bool
	IntervalMinWaves  int  // 下一个 Boss 波 = 上一个 + [min, max] 内随机值
	IntervalMaxWaves  int
	BossCooldownWaves int  // 单个 Boss 被使用后的冷却波数
	BossOnlyWave      bool // true 时 Boss 波只包含 Boss 本身
	Combat            BossCombatConfig
	Echo              BossEchoConfig
	Bosses            []*BossArchetype
}

// TuningConfig 归一化后的完整调教数据
//
// Boss 为 nil 表示 Boss 事件被禁用。
type TuningConfig struct {
	Archetypes   []*EnemyArchetype
	Compositions []*CompositionTemplate
	Rhythms      []*RhythmTemplate
	Boss         *BossEventConfig
	Elite        EliteCombatConfig

	// PickCount 每波选中的兵种类型数
	PickCount int

	// BaseSpawnIntervalSeconds 波内基础出怪间隔（秒），节奏倍率在此之上相乘
	BaseSpawnIntervalSeconds float64
}

// FindArchetype 按 ID 查找普通兵种，未找到返回 nil
func (c *TuningConfig) FindArchetype(id string) *EnemyArchetype {
	for _, a := range c.Archetypes {
		if a.ID == id {
			return a
		}
	}
	return nil
}
