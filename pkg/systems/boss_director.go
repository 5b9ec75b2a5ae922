package systems

import (
	"log"
	"math/rand"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/utils"
)

// BossDirector Boss 事件子调度器
//
// 职责：
//   - 决定 Boss 波何时触发（区间随机滚动）
//   - 加权选取 Boss 兵种并管理单 Boss 冷却
//   - 管理回响窗口（奖励段 + 长尾段）的创建、查询与修剪
//   - Boss 解锁簿记（首次出场前不进普通候选池）
//
// 配置为 nil 时所有触发判定恒为 false，其余方法安全无操作。
type BossDirector struct {
	cfg *config.BossEventConfig
	rng *rand.Rand

	// nextBossWave 下一个 Boss 波编号，Boss 禁用时不可达
	nextBossWave int

	cooldowns map[string]int
	unlocked  map[string]bool

	echoes []*components.BossEchoComponent
}

// NewBossDirector 创建 Boss 事件子调度器
//
// 参数：
//   - cfg: Boss 事件调教（nil 表示禁用）
//   - rng: 注入的随机数生成器
func NewBossDirector(cfg *config.BossEventConfig, rng *rand.Rand) *BossDirector {
	d := &BossDirector{
		cfg:       cfg,
		rng:       rng,
		cooldowns: make(map[string]int),
		unlocked:  make(map[string]bool),
	}
	if cfg != nil {
		d.RollNextBossWave(0)
		log.Printf("[BossDirector] Initialized: %d bosses, first boss wave %d", len(cfg.Bosses), d.nextBossWave)
	}
	return d
}

// Enabled Boss 逻辑是否启用
func (d *BossDirector) Enabled() bool {
	return d.cfg != nil && d.cfg.Enabled && len(d.cfg.Bosses) > 0
}

// ShouldTrigger 判断指定波次是否为 Boss 波
func (d *BossDirector) ShouldTrigger(waveNumber int) bool {
	return d.Enabled() && waveNumber >= d.nextBossWave
}

// NextBossWave 下一个 Boss 波编号（禁用时无意义）
func (d *BossDirector) NextBossWave() int {
	return d.nextBossWave
}

// BossOnlyWave Boss 波是否只包含 Boss 本身
func (d *BossDirector) BossOnlyWave() bool {
	return d.cfg != nil && d.cfg.BossOnlyWave
}

// CombatMultipliers Boss 战斗倍率（在基础波次缩放之上相乘）
func (d *BossDirector) CombatMultipliers() components.CombatMultipliers {
	if d.cfg == nil {
		return components.CombatMultipliers{HP: 1, Attack: 1, Speed: 1, Scale: 1, Coin: 1}
	}
	return components.CombatMultipliers{
		HP:     d.cfg.Combat.HP,
		Attack: d.cfg.Combat.Attack,
		Speed:  d.cfg.Combat.Speed,
		Scale:  d.cfg.Combat.Scale,
		Coin:   d.cfg.Combat.Coin,
	}
}

// SelectBoss 加权随机选取一个 Boss 兵种
//
// 只在冷却已过的 Boss 中按 BaseWeight 加权选取；
// 全部冷却中时放宽到完整列表。选中后设置该 Boss 的冷却。
// 禁用或列表为空时返回 nil。
func (d *BossDirector) SelectBoss() *config.BossArchetype {
	if !d.Enabled() {
		return nil
	}

	ready := make([]*config.BossArchetype, 0, len(d.cfg.Bosses))
	for _, boss := range d.cfg.Bosses {
		if d.cooldowns[boss.ID] <= 0 {
			ready = append(ready, boss)
		}
	}
	if len(ready) == 0 {
		ready = d.cfg.Bosses
	}

	weights := make([]float64, len(ready))
	for i, boss := range ready {
		weights[i] = boss.BaseWeight
	}
	idx := utils.WeightedIndex(d.rng, weights)
	if idx < 0 {
		idx = d.rng.Intn(len(ready))
	}

	boss := ready[idx]
	d.cooldowns[boss.ID] = d.cfg.BossCooldownWaves
	return boss
}

// MarkSpawned 登记 Boss 已出场，永久解锁进普通候选池
func (d *BossDirector) MarkSpawned(bossID string) {
	d.unlocked[bossID] = true
}

// IsUnlocked Boss 是否已至少出场一次
func (d *BossDirector) IsUnlocked(bossID string) bool {
	return d.unlocked[bossID]
}

// TickCooldowns 所有 Boss 冷却递减 1，最低到 0
func (d *BossDirector) TickCooldowns() {
	for id, remain := range d.cooldowns {
		if remain > 0 {
			d.cooldowns[id] = remain - 1
		}
	}
}

// RollNextBossWave 重掷下一个 Boss 波
// 在 [fromWave+intervalMin, fromWave+intervalMax] 内均匀取值
func (d *BossDirector) RollNextBossWave(fromWave int) {
	if d.cfg == nil {
		return
	}
	span := d.cfg.IntervalMaxWaves - d.cfg.IntervalMinWaves
	offset := 0
	if span > 0 {
		offset = d.rng.Intn(span + 1)
	}
	d.nextBossWave = fromWave + d.cfg.IntervalMinWaves + offset
}

// ScheduleEcho 为刚规划的 Boss 创建回响窗口
//
// Boss 未声明回响目标、或目标ID在普通兵种表中不存在时静默跳过。
// 奖励窗口从 Boss 波延迟 StartDelayWaves 波开始，持续随机波数；
// 长尾窗口紧随其后，权重低、持续固定波数。
func (d *BossDirector) ScheduleEcho(boss *config.BossArchetype, waveNumber int, tuning *config.TuningConfig) {
	if d.cfg == nil || boss == nil || boss.EchoTargetID == "" {
		return
	}
	if tuning.FindArchetype(boss.EchoTargetID) == nil {
		log.Printf("[BossDirector] WARNING: echo target %q of boss %q not found, echo skipped",
			boss.EchoTargetID, boss.ID)
		return
	}

	echo := d.cfg.Echo

	bonusStart := waveNumber + echo.StartDelayWaves
	bonusEnd := bonusStart + randRangeInt(d.rng, echo.BonusDurationMin, echo.BonusDurationMax) - 1
	if bonusEnd < bonusStart {
		bonusEnd = bonusStart
	}
	baseStart := bonusEnd + 1
	baseEnd := baseStart + echo.BaseDurationWaves - 1
	if baseEnd < baseStart {
		baseEnd = baseStart
	}

	d.echoes = append(d.echoes, &components.BossEchoComponent{
		TargetID:       boss.EchoTargetID,
		BonusStartWave: bonusStart,
		BonusEndWave:   bonusEnd,
		BonusWeight:    randRangeFloat(d.rng, echo.BonusWeightMin, echo.BonusWeightMax),
		BaseStartWave:  baseStart,
		BaseEndWave:    baseEnd,
		BaseWeight:     randRangeFloat(d.rng, echo.BaseWeightMin, echo.BaseWeightMax),
	})
}

// ResolveEchoWeight 汇总指定兵种在指定波次的所有活跃回响权重
// 实现 EchoResolver，结果直接加进兵种选择评分的基础权重
func (d *BossDirector) ResolveEchoWeight(archetypeID string, waveNumber int) float64 {
	total := 0.0
	for _, echo := range d.echoes {
		if echo.TargetID != archetypeID {
			continue
		}
		if waveNumber >= echo.BonusStartWave && waveNumber <= echo.BonusEndWave {
			total += echo.BonusWeight
		}
		if waveNumber >= echo.BaseStartWave && waveNumber <= echo.BaseEndWave {
			total += echo.BaseWeight
		}
	}
	return total
}

// PruneEchoes 丢弃长尾窗口已结束的回响
func (d *BossDirector) PruneEchoes(waveNumber int) {
	kept := d.echoes[:0]
	for _, echo := range d.echoes {
		if waveNumber <= echo.BaseEndWave {
			kept = append(kept, echo)
		}
	}
	d.echoes = kept
}

// ActiveEchoCount 当前持有的回响数量
func (d *BossDirector) ActiveEchoCount() int {
	return len(d.echoes)
}

// randRangeInt 在 [min, max] 内均匀取整数，min >= max 时返回 min
func randRangeInt(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// randRangeFloat 在 [min, max] 内均匀取浮点，min >= max 时返回 min
func randRangeFloat(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}
