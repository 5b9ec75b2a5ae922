package systems

import (
	"log"
	"math/rand"
	"sort"
	"strings"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/utils"
)

// 兵种评分公式常量
//
// score = max(floor, (baseWeight + echoBonus) * freshness * balance * repeatPenalty * tagPenalty)
const (
	// ScoreFloor 评分下限，保证任何候选都有非零选中概率
	ScoreFloor = 0.05

	// FreshnessBase / FreshnessPerWave 新鲜度因子
	// freshness = 0.75 + clamp(距上次出现波数, 0, 10) * 0.08，缺席越久越容易被选中
	FreshnessBase    = 0.75
	FreshnessPerWave = 0.08
	FreshnessCap     = 10

	// BalancePerAppearance 平衡因子衰减系数
	// balance = 1 / (1 + 近期出现次数 * 0.35)
	BalancePerAppearance = 0.35

	// RepeatPenaltyFactor 立即重复惩罚（兵种刚出现过时乘入）
	RepeatPenaltyFactor = 0.55

	// TagPenaltyFactor 标签单一化惩罚（某标签近期每波都占主导时乘入）
	TagPenaltyFactor = 0.6

	// TagDominanceThreshold 标签主导判定阈值
	TagDominanceThreshold = 0.6
)

// 脉冲节奏常量：每 4 条目为一组，前两个紧凑、后两个拉开
const (
	pulseTightMultiplier = 0.74
	pulseGapMultiplier   = 1.30

	frontloadStartMultiplier = 0.72
	frontloadEndMultiplier   = 1.30
)

// PlannedSpawnEntry 单条出怪计划
type PlannedSpawnEntry struct {
	ArchetypeID string

	SpawnType components.SpawnType

	// IntervalMultiplier 出怪间隔倍率，[0.35, 2.4]
	// 与基础间隔相乘得到该条目的实际间隔
	IntervalMultiplier float64
}

// WaveSpawnPlan 一波的完整出怪计划
//
// 每次 StartWave 时全新构建，条目消费完即弃。
type WaveSpawnPlan struct {
	Entries       []PlannedSpawnEntry
	SelectedIDs   []string // 本波选中的兵种ID
	CompositionID string
	RhythmID      string

	// ComboKey 规范化组合键（排序后竖线连接），用于反重复记忆
	ComboKey string
}

// EchoResolver 回响权重解析接口
// BossDirector 实现；Boss 逻辑禁用时可为 nil
type EchoResolver interface {
	ResolveEchoWeight(archetypeID string, waveNumber int) float64
}

// PlanBuilder 出怪计划构建器
//
// 职责：
//   - 兵种评分与加权不放回选择（含冷却过滤和放宽）
//   - 组合反重复搜索
//   - 份额最大余数配额分配
//   - 条目展开、洗牌、精英注入、节奏倍率改写
type PlanBuilder struct {
	tracker *RuntimeTracker
	echoes  EchoResolver
	rng     *rand.Rand
}

// NewPlanBuilder 创建出怪计划构建器
//
// 参数：
//   - tracker: 运行时状态跟踪器
//   - echoes: 回响权重解析器（可为 nil，表示无 Boss 回响）
//   - rng: 注入的随机数生成器（固定种子可复现）
func NewPlanBuilder(tracker *RuntimeTracker, echoes EchoResolver, rng *rand.Rand) *PlanBuilder {
	return &PlanBuilder{
		tracker: tracker,
		echoes:  echoes,
		rng:     rng,
	}
}

// ComboKey 计算兵种ID集合的规范化组合键（排序后竖线连接）
func ComboKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// ScoreArchetype 计算兵种在指定波次的选择评分
func (b *PlanBuilder) ScoreArchetype(a *config.EnemyArchetype, waveNumber int) float64 {
	echoBonus := 0.0
	if b.echoes != nil {
		echoBonus = b.echoes.ResolveEchoWeight(a.ID, waveNumber)
	}

	wavesSince := b.tracker.WavesSinceLastSeen(a.ID, waveNumber)
	freshness := FreshnessBase + float64(utils.ClampInt(wavesSince, 0, FreshnessCap))*FreshnessPerWave

	balance := 1.0 / (1.0 + float64(b.tracker.RecentAppearances(a.ID))*BalancePerAppearance)

	repeatPenalty := 1.0
	if b.tracker.AppearedWithin(a.ID, RepeatPenaltyWindow) {
		repeatPenalty = RepeatPenaltyFactor
	}

	tagPenalty := 1.0
	for _, tag := range a.Tags {
		if b.tracker.TagDominatedRecently(tag, TagDominanceThreshold) {
			tagPenalty = TagPenaltyFactor
			break
		}
	}

	score := (a.BaseWeight + echoBonus) * freshness * balance * repeatPenalty * tagPenalty
	if score < ScoreFloor {
		score = ScoreFloor
	}
	return score
}

// SelectArchetypes 为本波选择兵种集合（加权不放回）
//
// 冷却中的候选被排除，除非排除后候选数不足 pickCount ——
// 此时按剩余冷却从小到大加回（绝不硬失败）。
// 选出的组合撞上近期组合记忆时触发反重复搜索。
func (b *PlanBuilder) SelectArchetypes(pool []*config.EnemyArchetype, pickCount int, waveNumber int) []*config.EnemyArchetype {
	if len(pool) == 0 {
		return nil
	}
	if pickCount > len(pool) {
		pickCount = len(pool)
	}

	candidates := b.filterCooldown(pool, pickCount)

	scores := make([]float64, len(candidates))
	for i, a := range candidates {
		scores[i] = b.ScoreArchetype(a, waveNumber)
	}

	pickedIdx := utils.SampleWithoutReplacement(b.rng, scores, pickCount)
	selected := make([]*config.EnemyArchetype, 0, len(pickedIdx))
	for _, idx := range pickedIdx {
		selected = append(selected, candidates[idx])
	}

	// 反重复：组合键撞上近期记忆时，在全部合法同尺寸组合中重抽
	ids := archetypeIDs(selected)
	if b.tracker.IsComboForbidden(ComboKey(ids)) {
		if alternative := b.resampleCombo(candidates, scores, len(selected)); alternative != nil {
			selected = alternative
		}
	}

	return selected
}

// filterCooldown 过滤冷却中的候选，不足时按剩余冷却从小到大放宽
func (b *PlanBuilder) filterCooldown(pool []*config.EnemyArchetype, pickCount int) []*config.EnemyArchetype {
	ready := make([]*config.EnemyArchetype, 0, len(pool))
	cooling := make([]*config.EnemyArchetype, 0)

	for _, a := range pool {
		state := b.tracker.ArchetypeState(a.ID)
		if state == nil || state.CooldownRemain <= 0 {
			ready = append(ready, a)
		} else {
			cooling = append(cooling, a)
		}
	}

	if len(ready) >= pickCount {
		return ready
	}

	// 放宽：冷却最少的优先回归候选池
	sort.SliceStable(cooling, func(i, j int) bool {
		si := b.tracker.ArchetypeState(cooling[i].ID)
		sj := b.tracker.ArchetypeState(cooling[j].ID)
		return si.CooldownRemain < sj.CooldownRemain
	})
	need := pickCount - len(ready)
	if need > len(cooling) {
		need = len(cooling)
	}
	ready = append(ready, cooling[:need]...)

	log.Printf("[PlanBuilder] Cooldown filter relaxed: re-admitted %d cooling archetypes", need)
	return ready
}

// resampleCombo 反重复搜索
//
// 枚举候选池中全部同尺寸组合，剔除撞上记忆的键，
// 以组合内成员评分之和为权重重抽一个组合。
// 没有任何合法备选时返回 nil（调用方保留原组合而不是失败）。
func (b *PlanBuilder) resampleCombo(candidates []*config.EnemyArchetype, scores []float64, size int) []*config.EnemyArchetype {
	combos := utils.Combinations(len(candidates), size)

	validCombos := make([][]int, 0, len(combos))
	comboWeights := make([]float64, 0, len(combos))

	for _, combo := range combos {
		ids := make([]string, len(combo))
		weight := 0.0
		for i, idx := range combo {
			ids[i] = candidates[idx].ID
			weight += scores[idx]
		}
		if b.tracker.IsComboForbidden(ComboKey(ids)) {
			continue
		}
		validCombos = append(validCombos, combo)
		comboWeights = append(comboWeights, weight)
	}

	if len(validCombos) == 0 {
		log.Printf("[PlanBuilder] Anti-repeat search found no valid alternative, keeping repeated combo")
		return nil
	}

	picked := utils.WeightedIndex(b.rng, comboWeights)
	if picked < 0 {
		return nil
	}

	result := make([]*config.EnemyArchetype, size)
	for i, idx := range validCombos[picked] {
		result[i] = candidates[idx]
	}
	return result
}

// SelectTemplates 选择本波的配比模板和节奏模板
// 均匀随机选取未冷却的模板，全部冷却中时放宽到完整列表
func (b *PlanBuilder) SelectTemplates(cfg *config.TuningConfig) (*config.CompositionTemplate, *config.RhythmTemplate) {
	var composition *config.CompositionTemplate
	if len(cfg.Compositions) > 0 {
		ready := make([]*config.CompositionTemplate, 0, len(cfg.Compositions))
		for _, tpl := range cfg.Compositions {
			if state := b.tracker.CompositionState(tpl.ID); state == nil || state.CooldownRemain <= 0 {
				ready = append(ready, tpl)
			}
		}
		if len(ready) == 0 {
			ready = cfg.Compositions
		}
		composition = ready[b.rng.Intn(len(ready))]
	}

	var rhythm *config.RhythmTemplate
	if len(cfg.Rhythms) > 0 {
		ready := make([]*config.RhythmTemplate, 0, len(cfg.Rhythms))
		for _, tpl := range cfg.Rhythms {
			if state := b.tracker.RhythmState(tpl.ID); state == nil || state.CooldownRemain <= 0 {
				ready = append(ready, tpl)
			}
		}
		if len(ready) == 0 {
			ready = cfg.Rhythms
		}
		rhythm = ready[b.rng.Intn(len(ready))]
	}

	return composition, rhythm
}

// archetypeIDs 提取兵种ID列表
func archetypeIDs(archetypes []*config.EnemyArchetype) []string {
	ids := make([]string, len(archetypes))
	for i, a := range archetypes {
		ids[i] = a.ID
	}
	return ids
}

// AllocateTypeCounts 按份额分配各兵种数量（最大余数法）
//
// 份额归一化到 n 个槽位（不足时以均分补齐，多余截断），
// 使配额精确加和为 total。当 total >= n 时保证每个槽位 >= 1：
// 四舍产生零配额时从当前最大的桶挪一个过来。
func AllocateTypeCounts(total int, shares []float64, n int) []int {
	if n <= 0 {
		return nil
	}

	counts := make([]int, n)
	if total <= 0 {
		return counts
	}

	// 份额归一化到 n 槽位
	normalized := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		if i < len(shares) {
			normalized[i] = shares[i]
		} else {
			normalized[i] = 100.0 / float64(n) // 份额不足，均分补齐
		}
		sum += normalized[i]
	}
	if sum <= 0 {
		// 全零份额退化为均分
		for i := range normalized {
			normalized[i] = 1.0
		}
		sum = float64(n)
	}

	// 最大余数法
	type remainderEntry struct {
		index    int
		fraction float64
	}
	remainders := make([]remainderEntry, n)
	allocated := 0
	for i := 0; i < n; i++ {
		ideal := float64(total) * normalized[i] / sum
		counts[i] = int(ideal)
		allocated += counts[i]
		remainders[i] = remainderEntry{index: i, fraction: ideal - float64(counts[i])}
	}
	sort.SliceStable(remainders, func(i, j int) bool {
		return remainders[i].fraction > remainders[j].fraction
	})
	for i := 0; allocated < total; i++ {
		counts[remainders[i%n].index]++
		allocated++
	}

	// total 足够时保证每桶 >= 1
	if total >= n {
		for i := 0; i < n; i++ {
			if counts[i] > 0 {
				continue
			}
			largest := 0
			for j := 1; j < n; j++ {
				if counts[j] > counts[largest] {
					largest = j
				}
			}
			if counts[largest] > 1 {
				counts[largest]--
				counts[i]++
			}
		}
	}

	return counts
}

// BuildPlan 构建一波的完整出怪计划
//
// 流程：
//  1. 按配比模板分配各选中兵种的数量
//  2. 展开为平铺ID序列并均匀洗牌
//  3. 在均匀间隔位置注入精英条目
//  4. 按节奏模板改写每个条目的间隔倍率
//
// 参数：
//   - selected: 本波选中的兵种（非空）
//   - composition / rhythm: 本波使用的模板
//   - regularCount: 普通怪总数
//   - eliteCount: 精英怪数量
func (b *PlanBuilder) BuildPlan(
	selected []*config.EnemyArchetype,
	composition *config.CompositionTemplate,
	rhythm *config.RhythmTemplate,
	regularCount int,
	eliteCount int,
) *WaveSpawnPlan {
	plan := &WaveSpawnPlan{
		SelectedIDs: archetypeIDs(selected),
	}
	plan.ComboKey = ComboKey(plan.SelectedIDs)

	var shares []float64
	if composition != nil {
		plan.CompositionID = composition.ID
		shares = composition.Shares
	}
	if rhythm != nil {
		plan.RhythmID = rhythm.ID
	}

	if len(selected) == 0 {
		return plan
	}

	// 1. 配额分配
	counts := AllocateTypeCounts(regularCount, shares, len(selected))

	// 2. 平铺展开 + 洗牌
	flat := make([]string, 0, regularCount)
	for i, a := range selected {
		for j := 0; j < counts[i]; j++ {
			flat = append(flat, a.ID)
		}
	}
	utils.ShuffleStrings(b.rng, flat)

	entries := make([]PlannedSpawnEntry, 0, len(flat)+eliteCount)
	for _, id := range flat {
		entries = append(entries, PlannedSpawnEntry{
			ArchetypeID:        id,
			SpawnType:          components.SpawnRegular,
			IntervalMultiplier: 1.0,
		})
	}

	// 3. 精英注入
	entries = b.injectElites(entries, selected, eliteCount)

	// 4. 节奏倍率
	pattern := config.RhythmSteady
	if rhythm != nil {
		pattern = rhythm.Pattern
	}
	applyRhythm(entries, pattern)

	plan.Entries = entries
	return plan
}

// injectElites 在均匀间隔位置插入精英条目
//
// 位置公式：floor((i+1)*total/(eliteCount+1))，total 为注入后的总条目数。
// 位置严格递增，不会与已有精英条目同位。
// 精英兵种从本波选中兵种中随机选取。
func (b *PlanBuilder) injectElites(entries []PlannedSpawnEntry, selected []*config.EnemyArchetype, eliteCount int) []PlannedSpawnEntry {
	if eliteCount <= 0 || len(selected) == 0 {
		return entries
	}

	total := len(entries) + eliteCount
	for i := 0; i < eliteCount; i++ {
		pos := (i + 1) * total / (eliteCount + 1)
		if pos > len(entries) {
			pos = len(entries)
		}
		elite := PlannedSpawnEntry{
			ArchetypeID:        selected[b.rng.Intn(len(selected))].ID,
			SpawnType:          components.SpawnElite,
			IntervalMultiplier: 1.0,
		}
		entries = append(entries, PlannedSpawnEntry{})
		copy(entries[pos+1:], entries[pos:])
		entries[pos] = elite
	}
	return entries
}

// applyRhythm 按节奏曲线改写所有条目的间隔倍率
//
// steady: 恒为 1；frontload: 从 0.72 线性升到 1.30（时间上前密后疏）；
// backload: frontload 的镜像；pulse: 每 4 条目紧凑对（0.74）与长间隔（1.30）交替。
// 所有倍率最终约束到 [0.35, 2.4]。
func applyRhythm(entries []PlannedSpawnEntry, pattern config.RhythmPattern) {
	n := len(entries)
	for i := range entries {
		multiplier := 1.0
		switch pattern {
		case config.RhythmFrontload:
			multiplier = lerpOverWave(frontloadStartMultiplier, frontloadEndMultiplier, i, n)
		case config.RhythmBackload:
			multiplier = lerpOverWave(frontloadEndMultiplier, frontloadStartMultiplier, i, n)
		case config.RhythmPulse:
			if i%4 < 2 {
				multiplier = pulseTightMultiplier
			} else {
				multiplier = pulseGapMultiplier
			}
		default:
			multiplier = 1.0
		}
		entries[i].IntervalMultiplier = utils.ClampFloat(multiplier,
			config.IntervalMultiplierMin, config.IntervalMultiplierMax)
	}
}

// lerpOverWave 在波次条目序列上线性插值
func lerpOverWave(from, to float64, index, total int) float64 {
	if total <= 1 {
		return (from + to) / 2
	}
	t := float64(index) / float64(total-1)
	return from + (to-from)*t
}
