package systems

import (
	"log"
	"math/rand"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/ecs"
	"github.com/decker502/horde/pkg/events"
	"github.com/decker502/horde/pkg/utils"
)

// 通道解锁与出生点常量
const (
	// UnlockWarningSeconds 解锁预警窗口时长（秒）
	UnlockWarningSeconds = 5.0

	// spawnJitterAlong 出生点沿朝外方向的最大抖动距离
	spawnJitterAlong = 60.0

	// spawnJitterPerp 出生点垂直方向的最大抖动距离（双向）
	spawnJitterPerp = 40.0
)

// LaneDirector 通道调度器
//
// 实现平滑权重通道分配算法，确保普通出怪在已解锁通道之间
// 分布自然且避免连续重复；同时驱动通道解锁状态机：
//
//	locked → unlocking（预警窗口）→ unlocked
//
// 开局只有 mid 解锁。击杀 Boss 时若仍有锁定通道，按固定顺序
// （top → mid → bottom）安排下一条解锁；全部解锁后改为轮转
// "下一个 Boss 通道"游标。
type LaneDirector struct {
	entityManager *ecs.EntityManager
	eventBus      *events.Bus
	rng           *rand.Rand

	laneEntities map[components.Lane]ecs.EntityID

	// nextBossLaneCursor 全通道解锁后 Boss 到来通道的轮转游标
	nextBossLaneCursor int

	defender utils.Vec2
	bounds   utils.Rect
}

// NewLaneDirector 创建通道调度器
func NewLaneDirector(em *ecs.EntityManager, bus *events.Bus, rng *rand.Rand) *LaneDirector {
	return &LaneDirector{
		entityManager: em,
		eventBus:      bus,
		rng:           rng,
		laneEntities:  make(map[components.Lane]ecs.EntityID),
	}
}

// InitializeLanes 初始化所有通道的状态组件
//
// 出怪门坐标只在这里计算一次：top 在防守点正上方的地图上缘，
// bottom 在正下方的下缘，mid 在防守点同高度的右缘。
// 朝外方向为出怪门背离防守点的单位向量。
//
// 参数:
//   - defenderPosition: 防守点世界坐标
//   - bounds: 地图可活动边界
func (ld *LaneDirector) InitializeLanes(defenderPosition utils.Vec2, bounds utils.Rect) {
	ld.defender = defenderPosition
	ld.bounds = bounds
	ld.laneEntities = make(map[components.Lane]ecs.EntityID)
	ld.nextBossLaneCursor = 0

	portals := map[components.Lane]utils.Vec2{
		components.LaneTop:    {X: defenderPosition.X, Y: bounds.MinY},
		components.LaneMid:    {X: bounds.MaxX, Y: defenderPosition.Y},
		components.LaneBottom: {X: defenderPosition.X, Y: bounds.MaxY},
	}

	for _, lane := range components.LaneOrder {
		portal := portals[lane]
		phase := components.LanePhaseLocked
		if lane == components.LaneMid {
			phase = components.LanePhaseUnlocked
		}

		entity := ld.entityManager.CreateEntity()
		ecs.AddComponent(ld.entityManager, entity, &components.LaneStateComponent{
			Lane:             lane,
			Phase:            phase,
			Portal:           portal,
			Outward:          portal.Sub(defenderPosition).Normalized(),
			Weight:           1.0,
			LastPicked:       0,
			SecondLastPicked: 0,
		})
		ld.laneEntities[lane] = entity
	}

	log.Printf("[LaneDirector] Initialized %d lanes, mid unlocked", len(components.LaneOrder))
}

// laneState 获取通道状态组件，未初始化返回 nil
func (ld *LaneDirector) laneState(lane components.Lane) *components.LaneStateComponent {
	entity, exists := ld.laneEntities[lane]
	if !exists {
		return nil
	}
	state, ok := ecs.GetComponent[*components.LaneStateComponent](ld.entityManager, entity)
	if !ok {
		return nil
	}
	return state
}

// IsUnlocked 通道是否已解锁
func (ld *LaneDirector) IsUnlocked(lane components.Lane) bool {
	state := ld.laneState(lane)
	return state != nil && state.Phase == components.LanePhaseUnlocked
}

// UnlockedLanes 按固定顺序返回已解锁的通道
func (ld *LaneDirector) UnlockedLanes() []components.Lane {
	unlocked := make([]components.Lane, 0, len(components.LaneOrder))
	for _, lane := range components.LaneOrder {
		if ld.IsUnlocked(lane) {
			unlocked = append(unlocked, lane)
		}
	}
	return unlocked
}

// Update 推进解锁预警倒计时
//
// 预警窗口结束的通道进入 unlocked 并发出通道解锁事件。
func (ld *LaneDirector) Update(dt float64) {
	for _, lane := range components.LaneOrder {
		state := ld.laneState(lane)
		if state == nil || state.Phase != components.LanePhaseUnlocking {
			continue
		}

		state.UnlockCountdownSeconds -= dt
		if state.UnlockCountdownSeconds > 0 {
			continue
		}

		state.Phase = components.LanePhaseUnlocked
		state.UnlockCountdownSeconds = 0
		log.Printf("[LaneDirector] Lane %s unlocked", lane)
		ld.eventBus.Publish(events.Event{
			Type: events.EventLaneUnlocked,
			Data: events.LaneUnlockedPayload{Lane: lane},
		})
	}
}

// OnBossDefeated 处理 Boss 被击杀后的通道推进
//
// 仍有锁定通道时：按固定顺序取下一条锁定通道进入预警窗口，
// 发出解锁预告事件；全部解锁后改为轮转下一个 Boss 通道游标。
func (ld *LaneDirector) OnBossDefeated() {
	for _, lane := range components.LaneOrder {
		state := ld.laneState(lane)
		if state == nil || state.Phase != components.LanePhaseLocked {
			continue
		}

		state.Phase = components.LanePhaseUnlocking
		state.UnlockCountdownSeconds = UnlockWarningSeconds
		log.Printf("[LaneDirector] Lane %s unlocking in %.1fs", lane, UnlockWarningSeconds)
		ld.eventBus.Publish(events.Event{
			Type: events.EventLaneUnlockImminent,
			Data: events.LaneUnlockImminentPayload{
				Lane:          lane,
				RemainSeconds: UnlockWarningSeconds,
			},
		})
		return
	}

	// 没有锁定通道了：轮转未来 Boss 的到来通道
	ld.nextBossLaneCursor = (ld.nextBossLaneCursor + 1) % len(components.LaneOrder)
}

// NextBossLane 未来 Boss 到来的通道
// 游标指向的通道未解锁时回退到 mid
func (ld *LaneDirector) NextBossLane() components.Lane {
	lane := components.LaneOrder[ld.nextBossLaneCursor]
	if ld.IsUnlocked(lane) {
		return lane
	}
	return components.LaneMid
}

// PickSpawnLane 为一次出怪选择通道（平滑权重算法）
//
// 只在已解锁通道中选择。没有任何已解锁通道时回退到 mid。
//
// 参数:
//   - forced: 非空时强制使用该通道（波次首个出怪与预告通道一致）
func (ld *LaneDirector) PickSpawnLane(forced components.Lane) components.Lane {
	if forced != "" {
		ld.updateLaneCounters(forced)
		return forced
	}

	unlocked := ld.UnlockedLanes()
	if len(unlocked) == 0 {
		log.Printf("[LaneDirector] WARNING: no unlocked lanes, using mid")
		return components.LaneMid
	}
	if len(unlocked) == 1 {
		ld.updateLaneCounters(unlocked[0])
		return unlocked[0]
	}

	states := make([]*components.LaneStateComponent, len(unlocked))
	weights := make([]float64, len(unlocked))
	for i, lane := range unlocked {
		states[i] = ld.laneState(lane)
		weights[i] = states[i].Weight
	}

	weightP := CalculateWeightP(weights)

	smoothWeights := make([]float64, len(states))
	for i, state := range states {
		pLast := CalculatePLast(state.LastPicked, weightP[i])
		pSecondLast := CalculatePSecondLast(state.SecondLastPicked, weightP[i])
		smoothWeights[i] = CalculateSmoothWeight(weightP[i], pLast, pSecondLast)
	}

	idx := utils.WeightedIndex(ld.rng, smoothWeights)
	if idx < 0 {
		idx = ld.rng.Intn(len(unlocked))
	}

	selected := unlocked[idx]
	ld.updateLaneCounters(selected)
	return selected
}

// updateLaneCounters 更新选中通道的平滑计数器
//
// 算法（插入事件）：
//  1. 所有权重 > 0 的通道 LastPicked 和 SecondLastPicked 均 +1
//  2. 选中通道的 SecondLastPicked 取选中前的 LastPicked 值
//  3. 选中通道的 LastPicked 归零
func (ld *LaneDirector) updateLaneCounters(selected components.Lane) {
	for _, lane := range components.LaneOrder {
		state := ld.laneState(lane)
		if state == nil {
			continue
		}
		if state.Weight > 0 {
			state.LastPicked++
			state.SecondLastPicked++
		}
	}

	if state := ld.laneState(selected); state != nil {
		state.SecondLastPicked = state.LastPicked - 1
		state.LastPicked = 0
	}
}

// ResolveSpawnPosition 计算通道上一次出怪的世界坐标
//
// 出怪门坐标加有界随机抖动：沿朝外方向只取非负偏移，
// 垂直方向双向偏移，保证抖动后的点不会比出怪门更靠近防守点，
// 最后约束到地图边界。约束把点推近防守点时退回出怪门本身。
func (ld *LaneDirector) ResolveSpawnPosition(lane components.Lane) utils.Vec2 {
	state := ld.laneState(lane)
	if state == nil {
		return ld.defender
	}

	outward := state.Outward
	perp := utils.Vec2{X: -outward.Y, Y: outward.X}

	along := ld.rng.Float64() * spawnJitterAlong
	side := (ld.rng.Float64()*2 - 1) * spawnJitterPerp

	jittered := state.Portal.
		Add(utils.Vec2{X: outward.X * along, Y: outward.Y * along}).
		Add(utils.Vec2{X: perp.X * side, Y: perp.Y * side})

	clamped := ld.bounds.ClampPoint(jittered)
	if clamped.DistanceTo(ld.defender) < state.Portal.DistanceTo(ld.defender) {
		return state.Portal
	}
	return clamped
}

// CalculateWeightP 计算权重占比
func CalculateWeightP(laneWeights []float64) []float64 {
	sum := 0.0
	for _, w := range laneWeights {
		sum += w
	}

	weightP := make([]float64, len(laneWeights))
	for i, w := range laneWeights {
		if sum > 0 {
			weightP[i] = w / sum
		}
	}
	return weightP
}

// CalculatePLast 计算影响因子 PLast
//
// 公式: PLast = (6 × LastPicked × WeightP + 6 × WeightP - 3) / 4
func CalculatePLast(lastPicked int, weightP float64) float64 {
	return (6.0*float64(lastPicked)*weightP + 6.0*weightP - 3.0) / 4.0
}

// CalculatePSecondLast 计算影响因子 PSecondLast
//
// 公式: PSecondLast = (SecondLastPicked × WeightP + WeightP - 1) / 4
func CalculatePSecondLast(secondLastPicked int, weightP float64) float64 {
	return (float64(secondLastPicked)*weightP + weightP - 1.0) / 4.0
}

// CalculateSmoothWeight 计算平滑权重
//
// 公式: SmoothWeight = WeightP × clamp(PLast + PSecondLast, 0.01, 100)
func CalculateSmoothWeight(weightP float64, pLast float64, pSecondLast float64) float64 {
	if weightP < 1e-6 {
		return 0
	}

	sum := pLast + pSecondLast
	if sum < 0.01 {
		sum = 0.01
	} else if sum > 100.0 {
		sum = 100.0
	}

	return weightP * sum
}
