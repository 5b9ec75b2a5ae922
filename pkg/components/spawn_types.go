package components

// SpawnType 出怪条目类型
type SpawnType string

const (
	// SpawnRegular 普通怪
	SpawnRegular SpawnType = "regular"

	// SpawnElite 精英怪
	SpawnElite SpawnType = "elite"

	// SpawnBoss Boss
	SpawnBoss SpawnType = "boss"
)

// SpawnHandle 引擎侧单位句柄
//
// 由外部生成器（Spawner）返回的不透明句柄，本库只用于簿记比对，
// 绝不解引用。单位生命周期归渲染/战斗层所有。0 表示无效句柄。
type SpawnHandle uint64

// CombatMultipliers 战斗倍率集合
// 生成单位时透传给外部生成器
type CombatMultipliers struct {
	HP     float64
	Attack float64
	Speed  float64
	Scale  float64
	Coin   float64
}
