package systems

import (
	"log"
	"math/rand"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/config"
	"github.com/decker502/horde/pkg/ecs"
	"github.com/decker502/horde/pkg/events"
	"github.com/decker502/horde/pkg/utils"
)

// WavePhase 波次状态机阶段
type WavePhase int

const (
	// WavePhaseIdle 空闲（未开波）
	WavePhaseIdle WavePhase = iota

	// WavePhaseActive 出怪中（计划条目尚未消费完）
	WavePhaseActive

	// WavePhaseDrained 出怪结束，等待场上单位清空
	WavePhaseDrained

	// WavePhaseComplete 本波完成
	WavePhaseComplete
)

// SpawnRequest 出怪请求（透传给外部生成器）
type SpawnRequest struct {
	ArchetypeID    string
	VisualAssetRef string
	SpawnType      components.SpawnType
	AttackType     config.AttackType
	VisualScale    float64

	Lane      components.Lane
	Position  utils.Vec2
	Direction utils.Vec2 // 朝向防守点的单位向量

	Multipliers components.CombatMultipliers

	WaveNumber int
}

// Spawner 外部生成器接口
//
// 由宿主运行时实现，负责把出怪请求实例化为战斗单位。
// 返回的句柄用于后续的死亡/到达通知匹配，0 表示生成失败。
type Spawner interface {
	SpawnEnemy(request SpawnRequest) (components.SpawnHandle, error)
}

// WaveDirector 波次调度器
//
// 整个出怪子系统的有状态核心：持有兵种/模板池和当前波次的计划，
// 驱动出怪游标、通道分配、Boss 与通道解锁状态机。
//
// 状态机：idle → active →（drained，等待最后一个单位离场）→ complete。
// 单实例、单线程，所有修改都发生在 Update 所在的帧循环线程上。
type WaveDirector struct {
	entityManager *ecs.EntityManager
	eventBus      *events.Bus
	spawner       Spawner
	rng           *rand.Rand

	cfg *config.TuningConfig

	tracker      *RuntimeTracker
	planBuilder  *PlanBuilder
	bossDirector *BossDirector
	laneDirector *LaneDirector
	difficulty   *DifficultyEngine

	phase      WavePhase
	waveNumber int

	plan           *WaveSpawnPlan
	cursor         int
	spawnTimer     float64
	forecastLane   components.Lane
	firstSpawnDone bool

	// regularPool 普通候选池（解锁的 Boss 会永久加入）
	regularPool []*config.EnemyArchetype

	// aliveUnits 本局已出且仍存活的单位，按生成器句柄索引
	// 外部通知与移除之间条目可能已失效，查询必须容忍缺失
	aliveUnits map[components.SpawnHandle]ecs.EntityID

	eliteCountThisWave int

	verbose bool
}

// NewWaveDirector 创建波次调度器
//
// 参数：
//   - em: 实体管理器
//   - bus: 事件总线（发布波次事件，接收单位死亡/到达通知）
//   - spawner: 外部生成器
//   - rng: 注入的随机数生成器（固定种子可复现整局出怪序列）
func NewWaveDirector(em *ecs.EntityManager, bus *events.Bus, spawner Spawner, rng *rand.Rand) *WaveDirector {
	return &WaveDirector{
		entityManager: em,
		eventBus:      bus,
		spawner:       spawner,
		rng:           rng,
		phase:         WavePhaseIdle,
		aliveUnits:    make(map[components.SpawnHandle]ecs.EntityID),
	}
}

// Initialize 初始化调度器
//
// 计算通道出怪门、重置全部运行时状态并装配子系统。
// cfg 为 nil 时使用归一化兜底配置，保证初始化后候选池非空。
//
// 参数：
//   - cfg: 归一化后的调优配置（nil 安全）
//   - defenderPosition: 防守点世界坐标
//   - bounds: 地图可活动边界
func (wd *WaveDirector) Initialize(cfg *config.TuningConfig, defenderPosition utils.Vec2, bounds utils.Rect) {
	if cfg == nil {
		cfg = config.NormalizeTuning(nil)
	}
	wd.cfg = cfg

	wd.tracker = NewRuntimeTracker(cfg)
	wd.bossDirector = NewBossDirector(cfg.Boss, wd.rng)
	wd.planBuilder = NewPlanBuilder(wd.tracker, wd.bossDirector, wd.rng)
	wd.laneDirector = NewLaneDirector(wd.entityManager, wd.eventBus, wd.rng)
	wd.laneDirector.InitializeLanes(defenderPosition, bounds)
	wd.difficulty = NewDifficultyEngine()

	wd.regularPool = make([]*config.EnemyArchetype, len(cfg.Archetypes))
	copy(wd.regularPool, cfg.Archetypes)

	wd.phase = WavePhaseIdle
	wd.waveNumber = 0
	wd.plan = nil
	wd.cursor = 0
	wd.aliveUnits = make(map[components.SpawnHandle]ecs.EntityID)

	wd.eventBus.Subscribe(events.EventUnitDied, wd)
	wd.eventBus.Subscribe(events.EventUnitReachedTarget, wd)

	log.Printf("[WaveDirector] Initialized: %d archetypes in pool, boss enabled=%v",
		len(wd.regularPool), wd.bossDirector.Enabled())
}

// SetVerbose 开关详细日志
func (wd *WaveDirector) SetVerbose(verbose bool) {
	wd.verbose = verbose
}

// Phase 当前状态机阶段
func (wd *WaveDirector) Phase() WavePhase {
	return wd.phase
}

// CurrentWave 当前波次编号（未开波为 0）
func (wd *WaveDirector) CurrentWave() int {
	return wd.waveNumber
}

// AliveCount 本局仍存活的已出单位数
func (wd *WaveDirector) AliveCount() int {
	return len(wd.aliveUnits)
}

// LaneDirector 通道调度器（供测试与宿主查询通道状态）
func (wd *WaveDirector) LaneDirector() *LaneDirector {
	return wd.laneDirector
}

// BossDirector Boss 事件子调度器
func (wd *WaveDirector) BossDirector() *BossDirector {
	return wd.bossDirector
}

// CurrentPlan 当前波次的出怪计划（无计划时为 nil）
func (wd *WaveDirector) CurrentPlan() *WaveSpawnPlan {
	return wd.plan
}

// StartWave 开始指定波次
//
// 流程：推进所有冷却 → 修剪过期回响 → 询问 Boss 子调度器 →
// 构建出怪计划 → 登记记忆与冷却 → 发布预报和波次开始事件。
func (wd *WaveDirector) StartWave(waveNumber int) {
	if wd.cfg == nil {
		log.Printf("[WaveDirector] ERROR: StartWave before Initialize, ignored")
		return
	}

	wd.tracker.TickCooldowns()
	wd.bossDirector.TickCooldowns()
	wd.bossDirector.PruneEchoes(waveNumber)

	wd.waveNumber = waveNumber
	wd.cursor = 0
	wd.firstSpawnDone = false

	if wd.bossDirector.ShouldTrigger(waveNumber) {
		wd.plan = wd.buildBossWavePlan(waveNumber)
	} else {
		wd.plan = wd.buildRegularWavePlan(waveNumber)
	}

	wd.eliteCountThisWave = 0
	for _, entry := range wd.plan.Entries {
		if entry.SpawnType == components.SpawnElite {
			wd.eliteCountThisWave++
		}
	}

	wd.emitForecast()

	wd.phase = WavePhaseActive
	if len(wd.plan.Entries) > 0 {
		wd.spawnTimer = wd.effectiveInterval(wd.plan.Entries[0])
	} else {
		wd.phase = WavePhaseDrained
	}

	log.Printf("[WaveDirector] Wave %d started: %d entries (elite=%d), combo=%s",
		waveNumber, len(wd.plan.Entries), wd.eliteCountThisWave, wd.plan.ComboKey)
	wd.eventBus.Publish(events.Event{
		Type: events.EventWaveStart,
		Data: events.WaveStartPayload{Wave: waveNumber, EnemyCount: len(wd.plan.Entries)},
	})
}

// buildBossWavePlan 构建 Boss 波计划
//
// 选 Boss、安排回响、重掷下一个 Boss 波；boss-only 模式下
// 计划只含 Boss 本身，否则在常规计划的头部插入 Boss 条目。
func (wd *WaveDirector) buildBossWavePlan(waveNumber int) *WaveSpawnPlan {
	boss := wd.bossDirector.SelectBoss()
	if boss == nil {
		return wd.buildRegularWavePlan(waveNumber)
	}

	wd.bossDirector.ScheduleEcho(boss, waveNumber, wd.cfg)
	wd.bossDirector.RollNextBossWave(waveNumber)

	bossEntry := PlannedSpawnEntry{
		ArchetypeID:        boss.ID,
		SpawnType:          components.SpawnBoss,
		IntervalMultiplier: 1.0,
	}

	if wd.bossDirector.BossOnlyWave() {
		return &WaveSpawnPlan{
			Entries:     []PlannedSpawnEntry{bossEntry},
			SelectedIDs: []string{boss.ID},
			ComboKey:    boss.ID,
		}
	}

	plan := wd.buildRegularWavePlan(waveNumber)
	plan.Entries = append([]PlannedSpawnEntry{bossEntry}, plan.Entries...)
	return plan
}

// buildRegularWavePlan 构建常规波计划并登记记忆与冷却
func (wd *WaveDirector) buildRegularWavePlan(waveNumber int) *WaveSpawnPlan {
	selected := wd.planBuilder.SelectArchetypes(wd.regularPool, wd.cfg.PickCount, waveNumber)
	composition, rhythm := wd.planBuilder.SelectTemplates(wd.cfg)

	regularCount := wd.difficulty.CalculateWaveBudget(waveNumber)
	eliteCount := wd.difficulty.CalculateEliteCount(waveNumber)

	plan := wd.planBuilder.BuildPlan(selected, composition, rhythm, regularCount, eliteCount)

	wd.tracker.RecordSelection(plan.SelectedIDs, waveNumber)
	wd.tracker.RecordTemplateUse(composition, rhythm)
	wd.tracker.RecordMemory(plan.SelectedIDs, plan.ComboKey)

	return plan
}

// emitForecast 挑选预告条目和预告通道并发布波次预报
// 预告通道同时决定本波首个出怪的通道
func (wd *WaveDirector) emitForecast() {
	entry, ok := SelectForecastEntry(wd.plan)
	if !ok {
		wd.forecastLane = components.LaneMid
		return
	}

	if entry.SpawnType == components.SpawnBoss {
		wd.forecastLane = wd.laneDirector.NextBossLane()
	} else {
		unlocked := wd.laneDirector.UnlockedLanes()
		if len(unlocked) == 0 {
			wd.forecastLane = components.LaneMid
		} else {
			wd.forecastLane = unlocked[wd.rng.Intn(len(unlocked))]
		}
	}

	wd.eventBus.Publish(events.Event{
		Type: events.EventWaveForecast,
		Data: events.WaveForecastPayload{
			Wave:        wd.waveNumber,
			ArchetypeID: entry.ArchetypeID,
			Lane:        wd.forecastLane,
			SpawnType:   entry.SpawnType,
		},
	})
}

// effectiveInterval 条目的实际出怪间隔（秒）
func (wd *WaveDirector) effectiveInterval(entry PlannedSpawnEntry) float64 {
	return wd.cfg.BaseSpawnIntervalSeconds * entry.IntervalMultiplier
}

// Update 推进一帧
//
// 累计时间越过下一条目的实际间隔时消费一个条目并请求生成，
// 所有条目消费完后进入 drained。同时推进通道解锁倒计时。
// 不阻塞，不挂起。
func (wd *WaveDirector) Update(dt float64) {
	wd.laneDirector.Update(dt)

	if wd.phase != WavePhaseActive {
		return
	}

	wd.spawnTimer -= dt
	for wd.spawnTimer <= 0 && wd.cursor < len(wd.plan.Entries) {
		wd.spawnEntry(wd.plan.Entries[wd.cursor])
		wd.cursor++

		if wd.cursor < len(wd.plan.Entries) {
			wd.spawnTimer += wd.effectiveInterval(wd.plan.Entries[wd.cursor])
		} else {
			wd.phase = WavePhaseDrained
			if wd.verbose {
				log.Printf("[WaveDirector] Wave %d drained, %d units alive", wd.waveNumber, len(wd.aliveUnits))
			}
		}
	}
}

// spawnEntry 消费一个计划条目：解析兵种、通道、位置和战斗倍率，
// 请求外部生成器实例化，并登记存活簿记
func (wd *WaveDirector) spawnEntry(entry PlannedSpawnEntry) {
	archetype := wd.resolveArchetype(entry)
	if archetype == nil {
		log.Printf("[WaveDirector] WARNING: unknown archetype %q in plan, entry skipped", entry.ArchetypeID)
		return
	}

	lane := wd.resolveLane(entry)
	position := wd.laneDirector.ResolveSpawnPosition(lane)

	direction := utils.Vec2{}
	if state := wd.laneDirector.laneState(lane); state != nil {
		direction = utils.Vec2{X: -state.Outward.X, Y: -state.Outward.Y}
	}

	handle, err := wd.spawner.SpawnEnemy(SpawnRequest{
		ArchetypeID:    archetype.ID,
		VisualAssetRef: archetype.VisualAssetRef,
		SpawnType:      entry.SpawnType,
		AttackType:     archetype.AttackType,
		VisualScale:    archetype.VisualScale,
		Lane:           lane,
		Position:       position,
		Direction:      direction,
		Multipliers:    wd.resolveMultipliers(entry, archetype),
		WaveNumber:     wd.waveNumber,
	})
	if err != nil || handle == 0 {
		log.Printf("[WaveDirector] ERROR: spawn failed for %q: %v", archetype.ID, err)
		return
	}

	entity := wd.entityManager.CreateEntity()
	ecs.AddComponent(wd.entityManager, entity, &components.SpawnedUnitComponent{
		Handle:      handle,
		ArchetypeID: archetype.ID,
		SpawnType:   entry.SpawnType,
		Lane:        lane,
		WaveNumber:  wd.waveNumber,
	})
	wd.aliveUnits[handle] = entity

	if wd.verbose {
		log.Printf("[WaveDirector] Spawned %s (%s) lane=%s at (%.1f,%.1f) handle=%d",
			archetype.ID, entry.SpawnType, lane, position.X, position.Y, handle)
	}

	if entry.SpawnType == components.SpawnBoss {
		wd.onBossSpawned(archetype, handle, lane)
	}
}

// resolveArchetype 按条目类型查找兵种定义
func (wd *WaveDirector) resolveArchetype(entry PlannedSpawnEntry) *config.EnemyArchetype {
	if entry.SpawnType == components.SpawnBoss && wd.cfg.Boss != nil {
		for _, boss := range wd.cfg.Boss.Bosses {
			if boss.ID == entry.ArchetypeID {
				return &boss.EnemyArchetype
			}
		}
	}
	if a := wd.cfg.FindArchetype(entry.ArchetypeID); a != nil {
		return a
	}
	// 解锁进普通池的 Boss 不在 cfg.Archetypes 里
	for _, a := range wd.regularPool {
		if a.ID == entry.ArchetypeID {
			return a
		}
	}
	return nil
}

// resolveLane 解析条目的出怪通道
// 波次首个出怪强制与预告通道一致，Boss 走 Boss 通道游标
func (wd *WaveDirector) resolveLane(entry PlannedSpawnEntry) components.Lane {
	if !wd.firstSpawnDone {
		wd.firstSpawnDone = true
		return wd.laneDirector.PickSpawnLane(wd.forecastLane)
	}
	if entry.SpawnType == components.SpawnBoss {
		return wd.laneDirector.NextBossLane()
	}
	return wd.laneDirector.PickSpawnLane("")
}

// resolveMultipliers 合成条目的最终战斗倍率
// 基础波次缩放 × 兵种威力，精英/Boss 再叠各自的类型倍率
func (wd *WaveDirector) resolveMultipliers(entry PlannedSpawnEntry, archetype *config.EnemyArchetype) components.CombatMultipliers {
	m := wd.difficulty.ApplyArchetypePower(wd.difficulty.CalculateBaseMultipliers(wd.waveNumber), archetype)

	switch entry.SpawnType {
	case components.SpawnElite:
		m.HP *= wd.cfg.Elite.HP
		m.Attack *= wd.cfg.Elite.Attack
		m.Speed *= wd.cfg.Elite.Speed
		m.Scale *= wd.cfg.Elite.Scale
		m.Coin *= wd.cfg.Elite.Coin
	case components.SpawnBoss:
		boss := wd.bossDirector.CombatMultipliers()
		m.HP *= boss.HP
		m.Attack *= boss.Attack
		m.Speed *= boss.Speed
		m.Scale *= boss.Scale
		m.Coin *= boss.Coin
	}
	return m
}

// onBossSpawned Boss 入场簿记：永久解锁进普通候选池并发布入场事件
func (wd *WaveDirector) onBossSpawned(archetype *config.EnemyArchetype, handle components.SpawnHandle, lane components.Lane) {
	if !wd.bossDirector.IsUnlocked(archetype.ID) {
		wd.bossDirector.MarkSpawned(archetype.ID)
		wd.tracker.RegisterArchetype(archetype)
		wd.regularPool = append(wd.regularPool, archetype)
		log.Printf("[WaveDirector] Boss %q unlocked into regular pool", archetype.ID)
	}

	wd.eventBus.Publish(events.Event{
		Type: events.EventBossIntro,
		Data: events.BossIntroPayload{Handle: handle, ArchetypeID: archetype.ID, Lane: lane},
	})
}

// OnEvent 处理外部战斗层的单位离场通知
// 实现 events.Listener。过期句柄视为无操作。
func (wd *WaveDirector) OnEvent(event events.Event) {
	var handle components.SpawnHandle
	switch payload := event.Data.(type) {
	case events.UnitDiedPayload:
		handle = payload.Handle
	case events.UnitReachedTargetPayload:
		handle = payload.Handle
	default:
		return
	}
	wd.removeUnit(handle)
}

// removeUnit 移除单位簿记；Boss 离场时推进通道解锁状态机
func (wd *WaveDirector) removeUnit(handle components.SpawnHandle) {
	entity, exists := wd.aliveUnits[handle]
	if !exists {
		return
	}
	delete(wd.aliveUnits, handle)

	unit, ok := ecs.GetComponent[*components.SpawnedUnitComponent](wd.entityManager, entity)
	if ok && unit.SpawnType == components.SpawnBoss {
		wd.laneDirector.OnBossDefeated()
	}
	wd.entityManager.DestroyEntityNow(entity)
}

// CheckWaveComplete 检查本波是否完成
//
// 仅当计划条目全部消费且本局没有存活单位时完成。
// 完成时发布波次完成事件（含金币奖励）并调用回调，只触发一次。
//
// 返回：本次调用是否触发了完成
func (wd *WaveDirector) CheckWaveComplete(callback func(waveNumber, bonus int)) bool {
	if wd.phase != WavePhaseDrained || len(wd.aliveUnits) > 0 {
		return false
	}

	wd.phase = WavePhaseComplete
	bonus := wd.difficulty.CalculateWaveBonus(wd.waveNumber, wd.eliteCountThisWave)

	log.Printf("[WaveDirector] Wave %d complete, bonus=%d", wd.waveNumber, bonus)
	wd.eventBus.Publish(events.Event{
		Type: events.EventWaveComplete,
		Data: events.WaveCompletePayload{Wave: wd.waveNumber, Bonus: bonus},
	})

	if callback != nil {
		callback(wd.waveNumber, bonus)
	}
	return true
}
