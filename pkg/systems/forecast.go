package systems

import (
	"github.com/decker502/horde/pkg/components"
)

// SelectForecastEntry 从计划中挑出最有叙事价值的条目用于波前预告
//
// 优先级：Boss 条目 > 第一个精英条目 > 出现次数最多的兵种
// （次数相同时取先遇到的）。纯函数，不影响实际出怪顺序。
//
// 返回：
//   - entry: 预告条目
//   - ok: 计划为空时为 false
func SelectForecastEntry(plan *WaveSpawnPlan) (PlannedSpawnEntry, bool) {
	if plan == nil || len(plan.Entries) == 0 {
		return PlannedSpawnEntry{}, false
	}

	var firstElite *PlannedSpawnEntry
	for i := range plan.Entries {
		entry := &plan.Entries[i]
		switch entry.SpawnType {
		case components.SpawnBoss:
			return *entry, true
		case components.SpawnElite:
			if firstElite == nil {
				firstElite = entry
			}
		}
	}
	if firstElite != nil {
		return *firstElite, true
	}

	// 常规波：取出现次数最多的兵种，平局按遇到顺序
	counts := make(map[string]int)
	order := make([]string, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		if counts[entry.ArchetypeID] == 0 {
			order = append(order, entry.ArchetypeID)
		}
		counts[entry.ArchetypeID]++
	}

	dominant := order[0]
	for _, id := range order[1:] {
		if counts[id] > counts[dominant] {
			dominant = id
		}
	}

	for _, entry := range plan.Entries {
		if entry.ArchetypeID == dominant {
			return entry, true
		}
	}
	return plan.Entries[0], true
}
