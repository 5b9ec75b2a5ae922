package systems

import (
	"math/rand"
	"testing"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/ecs"
	"github.com/decker502/horde/pkg/events"
	"github.com/decker502/horde/pkg/utils"
)

func newTestPacing(seed int64) (*PacingSystem, *WaveDirector, *stubSpawner, *events.Bus) {
	em := ecs.NewEntityManager()
	bus := events.NewBus()
	spawner := &stubSpawner{}
	wd := NewWaveDirector(em, bus, spawner, rand.New(rand.NewSource(seed)))
	wd.Initialize(directorTestConfig(),
		utils.Vec2{X: 100, Y: 300},
		utils.Rect{MinX: 0, MinY: 0, MaxX: 800, MaxY: 600},
	)
	pacing := NewPacingSystem(em, wd)
	return pacing, wd, spawner, bus
}

// stepSeconds 以 0.1 秒帧推进指定秒数
func stepSeconds(pacing *PacingSystem, seconds float64) {
	steps := int(seconds / 0.1)
	for i := 0; i < steps; i++ {
		pacing.Update(0.1)
	}
}

func TestPacingSystem_FirstWaveCountdown(t *testing.T) {
	pacing, wd, _, _ := newTestPacing(1)
	pacing.Initialize(2.0, 1)

	t.Run("倒计时期间处于等待状态", func(t *testing.T) {
		if !pacing.IsPendingNextWave() {
			t.Error("初始化后应在等待第一波")
		}
		if got := pacing.NextWaveNumber(); got != 1 {
			t.Errorf("下一波编号应为 1，实际 %d", got)
		}
		stepSeconds(pacing, 1.0)
		if wd.CurrentWave() != 0 {
			t.Error("倒计时未结束不应开波")
		}
	})

	t.Run("倒计时耗尽触发第一波", func(t *testing.T) {
		stepSeconds(pacing, 1.5)
		if wd.CurrentWave() != 1 {
			t.Fatalf("第一波应已触发，实际波次 %d", wd.CurrentWave())
		}
		if pacing.IsPendingNextWave() {
			t.Error("波次进行中不应继续倒计时")
		}
	})
}

func TestPacingSystem_WaveToWaveLoop(t *testing.T) {
	pacing, wd, spawner, bus := newTestPacing(2)
	pacing.Initialize(0.5, 1)

	// 触发第一波并消费所有条目
	stepSeconds(pacing, 1.0)
	stepSeconds(pacing, 60.0)
	if wd.Phase() != WavePhaseDrained {
		t.Fatalf("第一波应出怪结束，实际 %v", wd.Phase())
	}

	// 清场：下一帧轮询到完成，开始为第二波倒计时
	for handle := components.SpawnHandle(1); int(handle) <= len(spawner.requests); handle++ {
		bus.Publish(events.Event{Type: events.EventUnitDied, Data: events.UnitDiedPayload{Handle: handle}})
	}
	pacing.Update(0.1)

	if !pacing.IsPendingNextWave() {
		t.Fatal("上一波完成后应开始为下一波倒计时")
	}
	if got := pacing.NextWaveNumber(); got != 2 {
		t.Errorf("下一波编号应为 2，实际 %d", got)
	}

	// 默认间隔 8 秒后第二波触发
	stepSeconds(pacing, 9.0)
	if wd.CurrentWave() != 2 {
		t.Errorf("第二波应已触发，实际波次 %d", wd.CurrentWave())
	}
}

func TestPacingSystem_PauseResume(t *testing.T) {
	pacing, wd, _, _ := newTestPacing(3)
	pacing.Initialize(1.0, 1)

	pacing.Pause()
	stepSeconds(pacing, 5.0)
	if wd.CurrentWave() != 0 {
		t.Fatal("暂停期间不应开波")
	}

	pacing.Resume()
	stepSeconds(pacing, 1.5)
	if wd.CurrentWave() != 1 {
		t.Error("恢复后倒计时应继续并触发第一波")
	}
}

func TestPacingSystem_ExternalAuthority(t *testing.T) {
	pacing, wd, _, _ := newTestPacing(4)
	pacing.Initialize(1.0, 1)

	t.Run("权威模式停用本地倒计时", func(t *testing.T) {
		pacing.SetExternalAuthority(true)
		stepSeconds(pacing, 10.0)
		if wd.CurrentWave() != 0 {
			t.Fatal("权威模式下本地倒计时不应触发波次")
		}
	})

	t.Run("外部调度直接触发", func(t *testing.T) {
		pacing.ScheduleExternalWaveStart(5, 0.5)
		stepSeconds(pacing, 1.0)
		if wd.CurrentWave() != 5 {
			t.Errorf("外部调度应触发第 5 波，实际 %d", wd.CurrentWave())
		}
	})

	t.Run("非权威模式下外部调度被忽略", func(t *testing.T) {
		pacing.SetExternalAuthority(false)
		before := wd.CurrentWave()
		pacing.ScheduleExternalWaveStart(9, 0)
		pacing.Update(0.1)
		if wd.CurrentWave() != before {
			t.Error("非权威模式下外部调度不应生效")
		}
	})
}

func TestPacingSystem_FractionalTiming(t *testing.T) {
	pacing, wd, _, _ := newTestPacing(5)
	pacing.Initialize(1.0, 1)

	// 每帧 0.007 秒（0.7 厘秒），小数部分必须被累积而不是丢弃
	for i := 0; i < 160; i++ {
		pacing.Update(0.007)
	}
	if wd.CurrentWave() != 1 {
		t.Error("小数厘秒累积后第一波应已触发")
	}
}
