package systems

import (
	"log"

	"github.com/decker502/horde/pkg/components"
	"github.com/decker502/horde/pkg/ecs"
)

// 波次间隔常量（厘秒）
const (
	// RegularWaveDelayCs 上一波完成到下一波开始的默认间隔
	RegularWaveDelayCs = 800
)

// PacingSystem 波次节奏系统
//
// 职责：
//   - 管理波与波之间的倒计时（上一波完成判定通过后开始计时）
//   - 驱动波次调度器的 Update / CheckWaveComplete / StartWave
//   - 支持暂停/恢复
//   - 外部权威模式：本地倒计时整体停用，波次由远端调度直接触发
//
// 架构说明：
//   - 使用 WaveTimerComponent 存储状态
//   - 只依赖波次调度器的公开契约，不触碰其内部状态
//
// 时间单位：倒计时以厘秒为基准，deltaTime 转换后的小数部分
// 单独累积，保证长会话下的精确计时。
type PacingSystem struct {
	entityManager *ecs.EntityManager
	director      *WaveDirector

	// timerEntityID 计时器组件所在的实体ID
	timerEntityID ecs.EntityID

	sessionTime float64

	verbose bool
}

// NewPacingSystem 创建波次节奏系统
func NewPacingSystem(em *ecs.EntityManager, director *WaveDirector) *PacingSystem {
	system := &PacingSystem{
		entityManager: em,
		director:      director,
	}
	system.createTimerEntity()
	return system
}

// createTimerEntity 创建计时器组件实体
func (s *PacingSystem) createTimerEntity() {
	entityID := s.entityManager.CreateEntity()
	s.timerEntityID = entityID

	ecs.AddComponent(s.entityManager, entityID, &components.WaveTimerComponent{})

	log.Printf("[PacingSystem] Created timer entity (ID: %d)", entityID)
}

// getTimerComponent 获取计时器组件
func (s *PacingSystem) getTimerComponent() *components.WaveTimerComponent {
	timer, ok := ecs.GetComponent[*components.WaveTimerComponent](s.entityManager, s.timerEntityID)
	if !ok {
		return nil
	}
	return timer
}

// Initialize 初始化节奏系统
//
// 参数：
//   - firstWaveDelaySeconds: 开场到第一波的延迟（秒）
//   - startingWave: 起始波次编号（通常为 1）
func (s *PacingSystem) Initialize(firstWaveDelaySeconds float64, startingWave int) {
	timer := s.getTimerComponent()
	if timer == nil {
		log.Printf("[PacingSystem] ERROR: Timer component not found")
		return
	}

	timer.CountdownCs = int(firstWaveDelaySeconds * 100)
	timer.AccumulatedCs = 0
	timer.Counting = true
	timer.NextWaveNumber = startingWave
	timer.IsPaused = false
	timer.WaveStartedAt = 0
	s.sessionTime = 0

	log.Printf("[PacingSystem] Initialized: first wave %d in %.1fs", startingWave, firstWaveDelaySeconds)
}

// SetVerbose 开关详细日志
func (s *PacingSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// IsPendingNextWave 是否正在为下一波倒计时
func (s *PacingSystem) IsPendingNextWave() bool {
	timer := s.getTimerComponent()
	return timer != nil && timer.Counting
}

// NextWaveNumber 下一个要触发的波次编号
func (s *PacingSystem) NextWaveNumber() int {
	timer := s.getTimerComponent()
	if timer == nil {
		return 0
	}
	return timer.NextWaveNumber
}

// Pause 暂停波次倒计时
func (s *PacingSystem) Pause() {
	if timer := s.getTimerComponent(); timer != nil {
		timer.IsPaused = true
		log.Printf("[PacingSystem] Paused at %d cs", timer.CountdownCs)
	}
}

// Resume 恢复波次倒计时
func (s *PacingSystem) Resume() {
	if timer := s.getTimerComponent(); timer != nil {
		timer.IsPaused = false
		log.Printf("[PacingSystem] Resumed at %d cs", timer.CountdownCs)
	}
}

// SetExternalAuthority 切换外部权威模式
// 开启后本地倒计时停用，波次触发只能来自 ScheduleExternalWaveStart
func (s *PacingSystem) SetExternalAuthority(enabled bool) {
	timer := s.getTimerComponent()
	if timer == nil {
		return
	}
	timer.ExternalAuthority = enabled
	if enabled {
		timer.Counting = false
	}
	log.Printf("[PacingSystem] External authority = %v", enabled)
}

// ScheduleExternalWaveStart 外部权威模式下安排波次开始
//
// 参数：
//   - waveNumber: 要触发的波次编号
//   - delaySeconds: 从现在起的延迟（秒），0 表示立即
func (s *PacingSystem) ScheduleExternalWaveStart(waveNumber int, delaySeconds float64) {
	timer := s.getTimerComponent()
	if timer == nil {
		return
	}
	if !timer.ExternalAuthority {
		log.Printf("[PacingSystem] WARNING: external wave start ignored, not in authority mode")
		return
	}

	timer.NextWaveNumber = waveNumber
	timer.CountdownCs = int(delaySeconds * 100)
	timer.AccumulatedCs = 0
	timer.Counting = true
	log.Printf("[PacingSystem] External wave %d scheduled in %.1fs", waveNumber, delaySeconds)
}

// Update 推进一帧
//
// 执行流程：
//  1. 驱动波次调度器的帧更新
//  2. 轮询上一波完成判定，完成后开始为下一波倒计时
//  3. 递减倒计时（厘秒整数部分递减，小数部分累积）
//  4. 倒计时耗尽时触发下一波
//
// 参数：
//   - deltaTime: 自上一帧以来经过的时间（秒）
func (s *PacingSystem) Update(deltaTime float64) {
	s.sessionTime += deltaTime
	s.director.Update(deltaTime)

	timer := s.getTimerComponent()
	if timer == nil {
		return
	}

	// 上一波完成后开始为下一波计时（外部权威模式下只移交编号，不计时）
	s.director.CheckWaveComplete(func(waveNumber, bonus int) {
		timer.NextWaveNumber = waveNumber + 1
		if timer.ExternalAuthority {
			return
		}
		timer.CountdownCs = RegularWaveDelayCs
		timer.AccumulatedCs = 0
		timer.Counting = true
		log.Printf("[PacingSystem] Wave %d done (bonus %d), next in %d cs", waveNumber, bonus, RegularWaveDelayCs)
	})

	if timer.IsPaused || !timer.Counting {
		return
	}

	// 秒转厘秒，整数部分递减，小数部分保留
	timer.AccumulatedCs += deltaTime * 100
	deltaCsInt := int(timer.AccumulatedCs)
	if deltaCsInt > 0 {
		timer.AccumulatedCs -= float64(deltaCsInt)
		timer.CountdownCs -= deltaCsInt

		if s.verbose {
			log.Printf("[PacingSystem] Countdown: %d cs", timer.CountdownCs)
		}
	}

	if timer.CountdownCs <= 1 {
		s.triggerNextWave(timer)
	}
}

// triggerNextWave 触发下一波并停止计时，直到这一波完成
func (s *PacingSystem) triggerNextWave(timer *components.WaveTimerComponent) {
	timer.Counting = false
	timer.CountdownCs = 0
	timer.WaveStartedAt = s.sessionTime

	log.Printf("[PacingSystem] Wave %d triggered at %.2fs", timer.NextWaveNumber, s.sessionTime)
	s.director.StartWave(timer.NextWaveNumber)
}
