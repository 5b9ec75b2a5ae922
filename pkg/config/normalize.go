package config

import (
	"log"

	"github.com/decker502/horde/pkg/utils"
)

// 调教数据归一化
//
// 契约：任意残缺/畸形的原始数据进来，合法可用的 TuningConfig 出去。
// 本文件中的任何函数都不返回 error —— 坏数据被静默修正、约束或丢弃，
// 游戏循环永远不会因为调教数据问题而中断。

// 归一化默认值
const (
	defaultBaseWeight    = 1.0
	defaultPower         = 1.0
	defaultCooldownBase  = 2
	defaultPickCount     = 3
	defaultSpawnInterval = 1.1

	// pickCountMax 每波兵种类型数上限
	// 反重复搜索按组合枚举，类型数必须保持很小
	pickCountMax = 6
)

// NormalizeTuning 将原始调教数据归一化为合法的 TuningConfig
//
// 规则：
//   - 缺少非空 ID 或资源引用的兵种条目被丢弃
//   - 数值字段约束到文档化范围
//   - 枚举字段纠正为最近的合法值
//   - 兵种列表为空时替换为内置兜底兵种集（≥2个），保证调度器永远有内容可用
//   - Boss 配置仅在 enabled 且至少一个合法 Boss 时被接受
//
// 参数：
//
//	raw - 原始数据（通常来自 YAML 反序列化的 map），可为 nil
//
// 返回：
//
//	*TuningConfig - 永不为 nil，永远可用（可能是退化的兜底结构）
func NormalizeTuning(raw map[string]interface{}) *TuningConfig {
	cfg := &TuningConfig{
		Elite: defaultEliteCombat(),
	}

	if raw == nil {
		raw = map[string]interface{}{}
	}

	// 兵种列表
	if list, ok := raw["archetypes"].([]interface{}); ok {
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if a := normalizeArchetype(entry); a != nil {
				cfg.Archetypes = append(cfg.Archetypes, a)
			}
		}
	}

	// 兜底：没有任何合法兵种时启用内置集
	if len(cfg.Archetypes) == 0 {
		log.Printf("[TuningNormalizer] WARNING: No valid archetypes in tuning data, using fallback set")
		cfg.Archetypes = FallbackArchetypes()
	}

	// 配比模板
	if list, ok := raw["compositions"].([]interface{}); ok {
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if tpl := normalizeComposition(entry); tpl != nil {
				cfg.Compositions = append(cfg.Compositions, tpl)
			}
		}
	}
	if len(cfg.Compositions) == 0 {
		cfg.Compositions = defaultCompositions()
	}

	// 节奏模板
	if list, ok := raw["rhythms"].([]interface{}); ok {
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if tpl := normalizeRhythm(entry); tpl != nil {
				cfg.Rhythms = append(cfg.Rhythms, tpl)
			}
		}
	}
	if len(cfg.Rhythms) == 0 {
		cfg.Rhythms = defaultRhythms()
	}

	// Boss 事件
	if entry, ok := raw["bossEvent"].(map[string]interface{}); ok {
		cfg.Boss = normalizeBossEvent(entry)
	}

	// 精英倍率覆盖
	if entry, ok := raw["elite"].(map[string]interface{}); ok {
		cfg.Elite = normalizeEliteCombat(entry, cfg.Elite)
	}

	// 全局选择参数
	cfg.PickCount = utils.ClampInt(utils.CoerceInt(raw["pickCount"], defaultPickCount), 1, pickCountMax)
	cfg.BaseSpawnIntervalSeconds = utils.ClampFloat(
		utils.CoerceFloat(raw["baseSpawnInterval"], defaultSpawnInterval), 0.2, 10.0)

	log.Printf("[TuningNormalizer] Normalized tuning: %d archetypes, %d compositions, %d rhythms, boss=%v",
		len(cfg.Archetypes), len(cfg.Compositions), len(cfg.Rhythms), cfg.Boss != nil)

	return cfg
}

// normalizeArchetype 归一化单个兵种条目
// ID 或资源引用缺失时返回 nil（条目被丢弃）
func normalizeArchetype(entry map[string]interface{}) *EnemyArchetype {
	id := utils.CoerceString(entry["id"], "")
	assetRef := utils.CoerceString(entry["visualAssetRef"], "")
	if id == "" || assetRef == "" {
		return nil
	}

	a := &EnemyArchetype{
		ID:             id,
		VisualAssetRef: assetRef,
		BaseWeight:     utils.ClampFloat(utils.CoerceFloat(entry["baseWeight"], defaultBaseWeight), BaseWeightMin, BaseWeightMax),
		Power:          utils.ClampFloat(utils.CoerceFloat(entry["power"], defaultPower), PowerMin, PowerMax),
		Tags:           utils.CoerceStringSlice(entry["tags"]),
		CooldownBase:   utils.ClampInt(utils.CoerceInt(entry["cooldownBase"], defaultCooldownBase), 0, CooldownWavesMax),
		AttackType:     normalizeAttackType(utils.CoerceString(entry["attackType"], "")),
	}

	// 可选视觉缩放：非正值视为未指定
	scale := utils.CoerceFloat(entry["visualScale"], 0)
	if scale > 0 {
		a.VisualScale = utils.ClampFloat(scale, 0.1, VisualScaleMax)
	}

	return a
}

// normalizeAttackType 纠正攻击方式枚举，未知值归为标准近战
func normalizeAttackType(s string) AttackType {
	switch AttackType(s) {
	case AttackRam:
		return AttackRam
	case AttackRanged:
		return AttackRanged
	default:
		return AttackStandard
	}
}

// normalizeComposition 归一化配比模板，ID 缺失时丢弃
func normalizeComposition(entry map[string]interface{}) *CompositionTemplate {
	id := utils.CoerceString(entry["id"], "")
	if id == "" {
		return nil
	}
	return &CompositionTemplate{
		ID:            id,
		Shares:        utils.CoerceFloatSlice(entry["shares"]),
		CooldownWaves: utils.ClampInt(utils.CoerceInt(entry["cooldownWaves"], defaultCooldownBase), 0, CooldownWavesMax),
	}
}

// normalizeRhythm 归一化节奏模板，ID 缺失时丢弃，未知节奏归为 steady
func normalizeRhythm(entry map[string]interface{}) *RhythmTemplate {
	id := utils.CoerceString(entry["id"], "")
	if id == "" {
		return nil
	}

	pattern := RhythmPattern(utils.CoerceString(entry["pattern"], string(RhythmSteady)))
	switch pattern {
	case RhythmSteady, RhythmFrontload, RhythmBackload, RhythmPulse:
	default:
		pattern = RhythmSteady
	}

	return &RhythmTemplate{
		ID:            id,
		Pattern:       pattern,
		CooldownWaves: utils.ClampInt(utils.CoerceInt(entry["cooldownWaves"], defaultCooldownBase), 0, CooldownWavesMax),
	}
}

// normalizeBossEvent 归一化 Boss 事件配置
//
// 仅当 enabled 为 true 且至少一个合法 Boss 兵种时返回非 nil，
// 否则 Boss 逻辑整体禁用。
func normalizeBossEvent(entry map[string]interface{}) *BossEventConfig {
	if !utils.CoerceBool(entry["enabled"], false) {
		return nil
	}

	cfg := &BossEventConfig{
		Enabled:           true,
		IntervalMinWaves:  utils.ClampInt(utils.CoerceInt(entry["intervalMinWaves"], 5), 1, 200),
		IntervalMaxWaves:  utils.ClampInt(utils.CoerceInt(entry["intervalMaxWaves"], 8), 1, 200),
		BossCooldownWaves: utils.ClampInt(utils.CoerceInt(entry["bossCooldownWaves"], 2), 0, 50),
		BossOnlyWave:      utils.CoerceBool(entry["bossOnlyWave"], true),
		Combat:            normalizeBossCombat(entry["combat"]),
		Echo:              normalizeEcho(entry["echo"]),
	}

	// 区间边界颠倒时交换
	if cfg.IntervalMinWaves > cfg.IntervalMaxWaves {
		cfg.IntervalMinWaves, cfg.IntervalMaxWaves = cfg.IntervalMaxWaves, cfg.IntervalMinWaves
	}

	// Boss 兵种列表
	if list, ok := entry["bosses"].([]interface{}); ok {
		for _, item := range list {
			bossEntry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			base := normalizeArchetype(bossEntry)
			if base == nil {
				continue
			}
			cfg.Bosses = append(cfg.Bosses, &BossArchetype{
				EnemyArchetype: *base,
				EchoTargetID:   utils.CoerceString(bossEntry["echoTargetId"], ""),
			})
		}
	}

	if len(cfg.Bosses) == 0 {
		log.Printf("[TuningNormalizer] WARNING: Boss event enabled but no valid boss archetypes, disabling boss logic")
		return nil
	}

	return cfg
}

// normalizeBossCombat 归一化 Boss 战斗倍率
func normalizeBossCombat(v interface{}) BossCombatConfig {
	entry, _ := v.(map[string]interface{})
	if entry == nil {
		entry = map[string]interface{}{}
	}
	return BossCombatConfig{
		HP:     utils.ClampFloat(utils.CoerceFloat(entry["hp"], 8.0), 0.1, 100),
		Attack: utils.ClampFloat(utils.CoerceFloat(entry["attack"], 2.0), 0.1, 100),
		Speed:  utils.ClampFloat(utils.CoerceFloat(entry["speed"], 0.9), 0.1, 10),
		Scale:  utils.ClampFloat(utils.CoerceFloat(entry["scale"], 1.6), 0.1, VisualScaleMax),
		Coin:   utils.ClampFloat(utils.CoerceFloat(entry["coin"], 5.0), 0.1, 100),
	}
}

// normalizeEcho 归一化回响调教，权重/时长区间颠倒时交换
func normalizeEcho(v interface{}) BossEchoConfig {
	entry, _ := v.(map[string]interface{})
	if entry == nil {
		entry = map[string]interface{}{}
	}
	echo := BossEchoConfig{
		StartDelayWaves:   utils.ClampInt(utils.CoerceInt(entry["startDelayWaves"], 1), 0, 10),
		BonusWeightMin:    utils.ClampFloat(utils.CoerceFloat(entry["bonusWeightMin"], 6.0), 0, 500),
		BonusWeightMax:    utils.ClampFloat(utils.CoerceFloat(entry["bonusWeightMax"], 12.0), 0, 500),
		BonusDurationMin:  utils.ClampInt(utils.CoerceInt(entry["bonusDurationMin"], 2), 1, 20),
		BonusDurationMax:  utils.ClampInt(utils.CoerceInt(entry["bonusDurationMax"], 4), 1, 20),
		BaseWeightMin:     utils.ClampFloat(utils.CoerceFloat(entry["baseWeightMin"], 1.0), 0, 100),
		BaseWeightMax:     utils.ClampFloat(utils.CoerceFloat(entry["baseWeightMax"], 3.0), 0, 100),
		BaseDurationWaves: utils.ClampInt(utils.CoerceInt(entry["baseDurationWaves"], 8), 1, 40),
	}
	if echo.BonusWeightMin > echo.BonusWeightMax {
		echo.BonusWeightMin, echo.BonusWeightMax = echo.BonusWeightMax, echo.BonusWeightMin
	}
	if echo.BonusDurationMin > echo.BonusDurationMax {
		echo.BonusDurationMin, echo.BonusDurationMax = echo.BonusDurationMax, echo.BonusDurationMin
	}
	if echo.BaseWeightMin > echo.BaseWeightMax {
		echo.BaseWeightMin, echo.BaseWeightMax = echo.BaseWeightMax, echo.BaseWeightMin
	}
	return echo
}

// normalizeEliteCombat 归一化精英倍率（在默认调教块基础上覆盖）
func normalizeEliteCombat(entry map[string]interface{}, base EliteCombatConfig) EliteCombatConfig {
	return EliteCombatConfig{
		HP:     utils.ClampFloat(utils.CoerceFloat(entry["hp"], base.HP), 0.1, 100),
		Attack: utils.ClampFloat(utils.CoerceFloat(entry["attack"], base.Attack), 0.1, 100),
		Speed:  utils.ClampFloat(utils.CoerceFloat(entry["speed"], base.Speed), 0.1, 10),
		Scale:  utils.ClampFloat(utils.CoerceFloat(entry["scale"], base.Scale), 0.1, VisualScaleMax),
		Coin:   utils.ClampFloat(utils.CoerceFloat(entry["coin"], base.Coin), 0.1, 100),
	}
}

// defaultEliteCombat 精英怪默认倍率
func defaultEliteCombat() EliteCombatConfig {
	return EliteCombatConfig{
		HP:     3.0,
		Attack: 1.5,
		Speed:  1.1,
		Scale:  1.25,
		Coin:   2.5,
	}
}

// FallbackArchetypes 内置兜底兵种集
//
// 调教数据完全不可用时的最后防线，保证初始化后兵种池非空。
// 每次调用返回全新实例，避免跨会话共享可变状态。
func FallbackArchetypes() []*EnemyArchetype {
	return []*EnemyArchetype{
		{
			ID:             "fallback_grunt",
			VisualAssetRef: "MODEL_GRUNT",
			BaseWeight:     1.0,
			Power:          1.0,
			Tags:           []string{"ground"},
			CooldownBase:   0,
			AttackType:     AttackStandard,
		},
		{
			ID:             "fallback_skitter",
			VisualAssetRef: "MODEL_SKITTER",
			BaseWeight:     0.8,
			Power:          0.6,
			Tags:           []string{"ground", "fast"},
			CooldownBase:   0,
			AttackType:     AttackRam,
		},
	}
}

// defaultCompositions 内置配比模板集
func defaultCompositions() []*CompositionTemplate {
	return []*CompositionTemplate{
		{ID: "balanced", Shares: []float64{40, 35, 25}, CooldownWaves: 1},
		{ID: "dominant", Shares: []float64{60, 25, 15}, CooldownWaves: 2},
		{ID: "even_pair", Shares: []float64{50, 50}, CooldownWaves: 1},
	}
}

// defaultRhythms 内置节奏模板集
func defaultRhythms() []*RhythmTemplate {
	return []*RhythmTemplate{
		{ID: "steady", Pattern: RhythmSteady, CooldownWaves: 0},
		{ID: "rush_start", Pattern: RhythmFrontload, CooldownWaves: 2},
		{ID: "late_surge", Pattern: RhythmBackload, CooldownWaves: 2},
		{ID: "pulse", Pattern: RhythmPulse, CooldownWaves: 3},
	}
}
