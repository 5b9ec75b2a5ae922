package systems

import (
	"math/rand"
	"testing"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/ecs"
	"github.com/decker502/horde/pkg/events"
	"github.com/decker502/horde/pkg/utils"
)

// captureListener 收集事件的测试监听器
type captureListener struct {
	received []events.Event
}

func (l *captureListener) OnEvent(event events.Event) {
	l.received = append(l.received, event)
}

func (l *captureListener) countOf(eventType events.EventType) int {
	count := 0
	for _, e := range l.received {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

func newTestLaneDirector(seed int64) (*LaneDirector, *events.Bus) {
	em := ecs.NewEntityManager()
	bus := events.NewBus()
	ld := NewLaneDirector(em, bus, rand.New(rand.NewSource(seed)))
	ld.InitializeLanes(
		utils.Vec2{X: 100, Y: 300},
		utils.Rect{MinX: 0, MinY: 0, MaxX: 800, MaxY: 600},
	)
	return ld, bus
}

func TestLaneDirector_InitialState(t *testing.T) {
	ld, _ := newTestLaneDirector(1)

	t.Run("开局只有mid解锁", func(t *testing.T) {
		if !ld.IsUnlocked(components.LaneMid) {
			t.Error("mid 开局应解锁")
		}
		if ld.IsUnlocked(components.LaneTop) || ld.IsUnlocked(components.LaneBottom) {
			t.Error("top/bottom 开局应锁定")
		}
		if got := len(ld.UnlockedLanes()); got != 1 {
			t.Errorf("已解锁通道数应为 1，实际 %d", got)
		}
	})

	t.Run("出怪门与朝外方向", func(t *testing.T) {
		top := ld.laneState(components.LaneTop)
		if top.Portal.X != 100 || top.Portal.Y != 0 {
			t.Errorf("top 出怪门应为 (100,0)，实际 (%.1f,%.1f)", top.Portal.X, top.Portal.Y)
		}
		if top.Outward.Y >= 0 {
			t.Error("top 朝外方向应指向上方（Y 负方向）")
		}

		mid := ld.laneState(components.LaneMid)
		if mid.Portal.X != 800 || mid.Portal.Y != 300 {
			t.Errorf("mid 出怪门应为 (800,300)，实际 (%.1f,%.1f)", mid.Portal.X, mid.Portal.Y)
		}
		if mid.Outward.X <= 0 {
			t.Error("mid 朝外方向应指向右方（X 正方向）")
		}
	})
}

func TestLaneDirector_UnlockStateMachine(t *testing.T) {
	ld, bus := newTestLaneDirector(2)
	listener := &captureListener{}
	bus.Subscribe(events.EventLaneUnlockImminent, listener)
	bus.Subscribe(events.EventLaneUnlocked, listener)

	t.Run("击杀Boss触发固定顺序的预警", func(t *testing.T) {
		ld.OnBossDefeated()

		if got := listener.countOf(events.EventLaneUnlockImminent); got != 1 {
			t.Fatalf("应发出恰好 1 个解锁预告，实际 %d", got)
		}
		payload := listener.received[0].Data.(events.LaneUnlockImminentPayload)
		if payload.Lane != components.LaneTop {
			t.Errorf("固定顺序下首先解锁的应是 top，实际 %s", payload.Lane)
		}
		if ld.IsUnlocked(components.LaneTop) {
			t.Error("预警期间通道尚不应解锁")
		}
	})

	t.Run("预警窗口结束后解锁", func(t *testing.T) {
		// 预警 5 秒：4.9 秒后仍未解锁，再过 0.2 秒解锁
		ld.Update(4.9)
		if got := listener.countOf(events.EventLaneUnlocked); got != 0 {
			t.Fatalf("预警未结束不应发解锁事件，实际 %d 个", got)
		}
		ld.Update(0.2)
		if got := listener.countOf(events.EventLaneUnlocked); got != 1 {
			t.Fatalf("应发出恰好 1 个解锁事件，实际 %d", got)
		}
		if !ld.IsUnlocked(components.LaneTop) {
			t.Error("预警结束后 top 应解锁")
		}
	})

	t.Run("下一次击杀解锁bottom", func(t *testing.T) {
		ld.OnBossDefeated()
		ld.Update(UnlockWarningSeconds + 0.1)

		if !ld.IsUnlocked(components.LaneBottom) {
			t.Error("第二次击杀后 bottom 应解锁")
		}
		if got := len(ld.UnlockedLanes()); got != 3 {
			t.Errorf("全部通道应解锁，实际 %d 条", got)
		}
	})

	t.Run("全解锁后轮转Boss通道游标", func(t *testing.T) {
		before := ld.NextBossLane()
		ld.OnBossDefeated()
		after := ld.NextBossLane()

		if got := listener.countOf(events.EventLaneUnlockImminent); got != 2 {
			t.Errorf("全解锁后不应再发预警，累计应为 2，实际 %d", got)
		}
		if before == after {
			t.Errorf("游标应轮转，击杀前后都是 %s", before)
		}
	})
}

func TestLaneDirector_PickSpawnLane(t *testing.T) {
	t.Run("只在已解锁的通道中选择", func(t *testing.T) {
		ld, _ := newTestLaneDirector(3)

		for i := 0; i < 50; i++ {
			if lane := ld.PickSpawnLane(""); lane != components.LaneMid {
				t.Fatalf("只有 mid 解锁时不应选中 %s", lane)
			}
		}
	})

	t.Run("强制通道直接生效", func(t *testing.T) {
		ld, _ := newTestLaneDirector(4)

		if lane := ld.PickSpawnLane(components.LaneTop); lane != components.LaneTop {
			t.Errorf("强制通道应直接返回 top，实际 %s", lane)
		}
	})

	t.Run("选中后平滑计数器更新", func(t *testing.T) {
		ld, _ := newTestLaneDirector(5)

		ld.PickSpawnLane(components.LaneMid)

		mid := ld.laneState(components.LaneMid)
		if mid.LastPicked != 0 {
			t.Errorf("选中通道的 LastPicked 应归零，实际 %d", mid.LastPicked)
		}
		top := ld.laneState(components.LaneTop)
		if top.LastPicked != 1 {
			t.Errorf("未选中通道的 LastPicked 应递增到 1，实际 %d", top.LastPicked)
		}
	})

	t.Run("多通道解锁后分布覆盖所有通道", func(t *testing.T) {
		ld, _ := newTestLaneDirector(6)
		// 直接解锁全部通道
		for i := 0; i < 2; i++ {
			ld.OnBossDefeated()
			ld.Update(UnlockWarningSeconds + 0.1)
		}

		seen := make(map[components.Lane]int)
		for i := 0; i < 200; i++ {
			seen[ld.PickSpawnLane("")]++
		}
		for _, lane := range components.LaneOrder {
			if seen[lane] == 0 {
				t.Errorf("200 次选择后通道 %s 从未被选中", lane)
			}
		}
	})
}

func TestLaneDirector_ResolveSpawnPosition(t *testing.T) {
	ld, _ := newTestLaneDirector(7)
	defender := utils.Vec2{X: 100, Y: 300}
	bounds := utils.Rect{MinX: 0, MinY: 0, MaxX: 800, MaxY: 600}

	for _, lane := range components.LaneOrder {
		portal := ld.laneState(lane).Portal
		portalDistance := portal.DistanceTo(defender)

		for i := 0; i < 100; i++ {
			pos := ld.ResolveSpawnPosition(lane)

			if pos.X < bounds.MinX || pos.X > bounds.MaxX || pos.Y < bounds.MinY || pos.Y > bounds.MaxY {
				t.Fatalf("通道 %s 出生点 (%.1f,%.1f) 越出地图边界", lane, pos.X, pos.Y)
			}
			if pos.DistanceTo(defender) < portalDistance-1e-9 {
				t.Fatalf("通道 %s 出生点不应比出怪门更靠近防守点", lane)
			}
		}
	}
}

func TestSmoothWeightFormulas(t *testing.T) {
	t.Run("权重占比归一化", func(t *testing.T) {
		weightP := CalculateWeightP([]float64{1, 1, 2})
		sum := 0.0
		for _, p := range weightP {
			sum += p
		}
		if sum < 0.999 || sum > 1.001 {
			t.Errorf("权重占比之和应为 1，实际 %.4f", sum)
		}
		if weightP[2] != 0.5 {
			t.Errorf("权重 2 的占比应为 0.5，实际 %.4f", weightP[2])
		}
	})

	t.Run("零总权重全为零", func(t *testing.T) {
		for _, p := range CalculateWeightP([]float64{0, 0}) {
			if p != 0 {
				t.Errorf("零总权重时占比应为 0，实际 %.4f", p)
			}
		}
	})

	t.Run("久未选中的通道平滑权重更高", func(t *testing.T) {
		// 两条等权通道，一条刚被选中、一条等了 5 次
		weightP := 0.5
		fresh := CalculateSmoothWeight(weightP, CalculatePLast(0, weightP), CalculatePSecondLast(1, weightP))
		starved := CalculateSmoothWeight(weightP, CalculatePLast(5, weightP), CalculatePSecondLast(6, weightP))
		if starved <= fresh {
			t.Errorf("久未选中通道的平滑权重应更高：starved=%.4f fresh=%.4f", starved, fresh)
		}
	})

	t.Run("零占比通道平滑权重为零", func(t *testing.T) {
		if got := CalculateSmoothWeight(0, 1, 1); got != 0 {
			t.Errorf("零占比通道应为 0，实际 %.4f", got)
		}
	})
}
