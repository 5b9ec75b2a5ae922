package systems

import (
	"log"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/config"
)

// 记忆窗口常量
const (
	// SelectionMemoryWindow 平衡因子统计的近期波次窗口长度
	SelectionMemoryWindow = 6

	// ComboMemoryWindow 反重复记忆的组合键窗口长度
	// 本波组合键与窗口内任何一个相同时触发反重复搜索
	ComboMemoryWindow = 4

	// RepeatPenaltyWindow 立即重复惩罚的窗口长度
	RepeatPenaltyWindow = 2

	// TagMemoryWindow 标签占比快照窗口长度
	TagMemoryWindow = 3
)

// RuntimeTracker 运行时状态跟踪器
//
// 职责：
//   - 兵种/模板冷却与"最近出现"簿记
//   - 近期选择历史、组合键历史、标签占比快照（定长窗口，超长从头部裁剪）
//
// 纯簿记，不含任何随机性。所有修改只在波次选择敲定后由调度器发起。
type RuntimeTracker struct {
	archetypes map[string]*config.EnemyArchetype

	archetypeStates   map[string]*components.ArchetypeStateComponent
	compositionStates map[string]*components.TemplateStateComponent
	rhythmStates      map[string]*components.TemplateStateComponent

	// recentSelections 近期各波选中的兵种ID列表（最新在尾部）
	recentSelections [][]string

	// recentComboKeys 近期各波的规范化组合键
	recentComboKeys []string

	// recentTagRatios 近期各波的标签占比快照
	recentTagRatios []map[string]float64
}

// NewRuntimeTracker 创建运行时状态跟踪器
//
// 为配置中每个兵种和模板建立 1:1 的运行时状态记录。
// Boss 兵种的冷却由 BossDirector 单独管理，不在此登记。
func NewRuntimeTracker(cfg *config.TuningConfig) *RuntimeTracker {
	t := &RuntimeTracker{
		archetypes:        make(map[string]*config.EnemyArchetype),
		archetypeStates:   make(map[string]*components.ArchetypeStateComponent),
		compositionStates: make(map[string]*components.TemplateStateComponent),
		rhythmStates:      make(map[string]*components.TemplateStateComponent),
	}

	for _, a := range cfg.Archetypes {
		t.archetypes[a.ID] = a
		t.archetypeStates[a.ID] = &components.ArchetypeStateComponent{}
	}
	for _, tpl := range cfg.Compositions {
		t.compositionStates[tpl.ID] = &components.TemplateStateComponent{}
	}
	for _, tpl := range cfg.Rhythms {
		t.rhythmStates[tpl.ID] = &components.TemplateStateComponent{}
	}

	log.Printf("[RuntimeTracker] Initialized: %d archetype states, %d composition states, %d rhythm states",
		len(t.archetypeStates), len(t.compositionStates), len(t.rhythmStates))

	return t
}

// RegisterArchetype 把兵种追加到跟踪范围（Boss 解锁进普通池时使用）
// 已注册的ID是无操作
func (t *RuntimeTracker) RegisterArchetype(a *config.EnemyArchetype) {
	if _, exists := t.archetypeStates[a.ID]; exists {
		return
	}
	t.archetypes[a.ID] = a
	t.archetypeStates[a.ID] = &components.ArchetypeStateComponent{}
}

// TickCooldowns 所有冷却计数器递减 1，最低到 0
// 每波规划前由调度器调用一次
func (t *RuntimeTracker) TickCooldowns() {
	for _, state := range t.archetypeStates {
		if state.CooldownRemain > 0 {
			state.CooldownRemain--
		}
	}
	for _, state := range t.compositionStates {
		if state.CooldownRemain > 0 {
			state.CooldownRemain--
		}
	}
	for _, state := range t.rhythmStates {
		if state.CooldownRemain > 0 {
			state.CooldownRemain--
		}
	}
}

// RecordSelection 登记本波新选中的兵种
// 为每个ID设置 CooldownRemain = CooldownBase 并更新 LastSeenWave
func (t *RuntimeTracker) RecordSelection(ids []string, waveNumber int) {
	for _, id := range ids {
		state, exists := t.archetypeStates[id]
		if !exists {
			continue
		}
		if a, ok := t.archetypes[id]; ok {
			state.CooldownRemain = a.CooldownBase
		}
		state.LastSeenWave = waveNumber
	}
}

// RecordTemplateUse 登记本波使用的配比/节奏模板并设置其冷却
func (t *RuntimeTracker) RecordTemplateUse(composition *config.CompositionTemplate, rhythm *config.RhythmTemplate) {
	if composition != nil {
		if state, exists := t.compositionStates[composition.ID]; exists {
			state.CooldownRemain = composition.CooldownWaves
		}
	}
	if rhythm != nil {
		if state, exists := t.rhythmStates[rhythm.ID]; exists {
			state.CooldownRemain = rhythm.CooldownWaves
		}
	}
}

// RecordMemory 追加本波的记忆快照
//
// 三个窗口同时追加：选中ID列表、组合键、标签占比。
// 超过各自窗口长度时从头部裁剪。
func (t *RuntimeTracker) RecordMemory(selectedIDs []string, comboKey string) {
	listCopy := make([]string, len(selectedIDs))
	copy(listCopy, selectedIDs)
	t.recentSelections = append(t.recentSelections, listCopy)
	if len(t.recentSelections) > SelectionMemoryWindow {
		t.recentSelections = t.recentSelections[1:]
	}

	t.recentComboKeys = append(t.recentComboKeys, comboKey)
	if len(t.recentComboKeys) > ComboMemoryWindow {
		t.recentComboKeys = t.recentComboKeys[1:]
	}

	t.recentTagRatios = append(t.recentTagRatios, t.computeTagRatios(selectedIDs))
	if len(t.recentTagRatios) > TagMemoryWindow {
		t.recentTagRatios = t.recentTagRatios[1:]
	}
}

// computeTagRatios 计算选中兵种集合的标签占比快照
func (t *RuntimeTracker) computeTagRatios(selectedIDs []string) map[string]float64 {
	ratios := make(map[string]float64)
	if len(selectedIDs) == 0 {
		return ratios
	}

	for _, id := range selectedIDs {
		a, exists := t.archetypes[id]
		if !exists {
			continue
		}
		for _, tag := range a.Tags {
			ratios[tag] += 1.0
		}
	}
	for tag := range ratios {
		ratios[tag] /= float64(len(selectedIDs))
	}
	return ratios
}

// ArchetypeState 获取兵种运行时状态，未注册返回 nil
func (t *RuntimeTracker) ArchetypeState(id string) *components.ArchetypeStateComponent {
	return t.archetypeStates[id]
}

// CompositionState 获取配比模板运行时状态，未注册返回 nil
func (t *RuntimeTracker) CompositionState(id string) *components.TemplateStateComponent {
	return t.compositionStates[id]
}

// RhythmState 获取节奏模板运行时状态，未注册返回 nil
func (t *RuntimeTracker) RhythmState(id string) *components.TemplateStateComponent {
	return t.rhythmStates[id]
}

// WavesSinceLastSeen 距离兵种上次被选中经过的波数
// 从未出现的兵种返回一个大值（按"久未出现"对待）
func (t *RuntimeTracker) WavesSinceLastSeen(id string, currentWave int) int {
	state, exists := t.archetypeStates[id]
	if !exists || state.LastSeenWave == 0 {
		return currentWave + 10
	}
	delta := currentWave - state.LastSeenWave
	if delta < 0 {
		return 0
	}
	return delta
}

// RecentAppearances 统计兵种在近期选择窗口中出现的次数
func (t *RuntimeTracker) RecentAppearances(id string) int {
	count := 0
	for _, wave := range t.recentSelections {
		for _, selected := range wave {
			if selected == id {
				count++
				break
			}
		}
	}
	return count
}

// AppearedWithin 判断兵种是否出现在最近 window 波的选择中
func (t *RuntimeTracker) AppearedWithin(id string, window int) bool {
	start := len(t.recentSelections) - window
	if start < 0 {
		start = 0
	}
	for _, wave := range t.recentSelections[start:] {
		for _, selected := range wave {
			if selected == id {
				return true
			}
		}
	}
	return false
}

// TagDominatedRecently 判断标签是否在整个快照窗口内每波占比都 >= threshold
//
// 窗口未填满时返回 false（开局前几波不做标签单一化惩罚）。
func (t *RuntimeTracker) TagDominatedRecently(tag string, threshold float64) bool {
	if len(t.recentTagRatios) < TagMemoryWindow {
		return false
	}
	for _, snapshot := range t.recentTagRatios {
		if snapshot[tag] < threshold {
			return false
		}
	}
	return true
}

// IsComboForbidden 判断组合键是否撞上近期组合记忆
func (t *RuntimeTracker) IsComboForbidden(comboKey string) bool {
	for _, key := range t.recentComboKeys {
		if key == comboKey {
			return true
		}
	}
	return false
}

// RecentComboKeys 返回组合记忆窗口的拷贝（反重复搜索用）
func (t *RuntimeTracker) RecentComboKeys() []string {
	keys := make([]string, len(t.recentComboKeys))
	copy(keys, t.recentComboKeys)
	return keys
}
