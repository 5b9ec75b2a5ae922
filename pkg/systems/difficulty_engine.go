package systems

import (
	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/config"
)

// 波次预算与成长常量
const (
	// baseWaveBudget 第一波的普通怪基数
	baseWaveBudget = 4

	// eliteStartWave 精英怪开始出现的波次
	eliteStartWave = 4

	// eliteEveryWaves 之后每多少波精英数量 +1
	eliteEveryWaves = 5

	// eliteCountCap 单波精英数量上限
	eliteCountCap = 4

	// hpGrowthPerWave / attackGrowthPerWave 基础战斗缩放的每波增量
	hpGrowthPerWave     = 0.06
	attackGrowthPerWave = 0.04

	// waveCoinBase / eliteCoinBonus 波次完成奖励系数
	waveCoinBase   = 10
	eliteCoinBonus = 5
)

// DifficultyEngine 难度引擎
// 负责计算每波的怪物预算、精英数量和基础战斗缩放，
// 为波次调度器提供难度数据支持
type DifficultyEngine struct{}

// NewDifficultyEngine 创建新的难度引擎实例
func NewDifficultyEngine() *DifficultyEngine {
	return &DifficultyEngine{}
}

// CalculateWaveBudget 计算波次的普通怪预算
// 公式: Budget = base + int(int(WaveNumber * 0.8) / 2) * 2
// 随波次阶梯式增长，保证早期波次节奏平缓
func (d *DifficultyEngine) CalculateWaveBudget(waveNumber int) int {
	if waveNumber < 1 {
		waveNumber = 1
	}
	return baseWaveBudget + int(float64(waveNumber)*0.8)/2*2
}

// CalculateEliteCount 计算波次的精英怪数量
// 精英从固定波次起出现，之后每隔几波 +1，封顶
func (d *DifficultyEngine) CalculateEliteCount(waveNumber int) int {
	if waveNumber < eliteStartWave {
		return 0
	}
	count := 1 + (waveNumber-eliteStartWave)/eliteEveryWaves
	if count > eliteCountCap {
		count = eliteCountCap
	}
	return count
}

// CalculateBaseMultipliers 计算波次的基础战斗缩放
// 所有出怪（普通/精英/Boss）先乘该缩放，再叠各自类型的倍率
func (d *DifficultyEngine) CalculateBaseMultipliers(waveNumber int) components.CombatMultipliers {
	if waveNumber < 1 {
		waveNumber = 1
	}
	growth := float64(waveNumber - 1)
	return components.CombatMultipliers{
		HP:     1.0 + growth*hpGrowthPerWave,
		Attack: 1.0 + growth*attackGrowthPerWave,
		Speed:  1.0,
		Scale:  1.0,
		Coin:   1.0,
	}
}

// ApplyArchetypePower 在基础缩放之上叠加兵种威力系数
// Power 作用于生命与攻击，不影响速度/体型/金币
func (d *DifficultyEngine) ApplyArchetypePower(base components.CombatMultipliers, archetype *config.EnemyArchetype) components.CombatMultipliers {
	result := base
	if archetype != nil {
		result.HP *= archetype.Power
		result.Attack *= archetype.Power
	}
	return result
}

// CalculateWaveBonus 计算波次完成的金币奖励
// 与波次编号和精英数量成正比
func (d *DifficultyEngine) CalculateWaveBonus(waveNumber, eliteCount int) int {
	if waveNumber < 1 {
		waveNumber = 1
	}
	return waveNumber*waveCoinBase + eliteCount*eliteCoinBonus
}
