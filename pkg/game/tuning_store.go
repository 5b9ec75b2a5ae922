package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/horde/pkg/config"
)

// 存储路径常量
const (
	tuningObject   = "tuning"
	tuningProperty = "overrides"
)

// TuningStore 调优覆盖存储
//
// 宿主运行时（或在线调参工具）可以把一份局部调优覆盖持久化到本地，
// 下次会话在基础调优数据之上合并后再归一化。覆盖始终是可选项：
// 没有覆盖、存储损坏或 gdata 不可用时都退回基础数据。
//
// 注意：这不是存档系统，只保存调参覆盖本身。
type TuningStore struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）

	// override 当前生效的覆盖（顶层键合并），nil 表示无覆盖
	override map[string]interface{}
}

// NewTuningStore 创建调优覆盖存储
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，覆盖仅存内存）
//
// 返回：
//   - *TuningStore: 存储实例
//   - error: 如果加载已保存的覆盖失败返回错误（不影响创建）
func NewTuningStore(gdataManager *gdata.Manager) (*TuningStore, error) {
	ts := &TuningStore{
		gdataManager: gdataManager,
	}

	if err := ts.Load(); err != nil {
		// 加载失败不是致命错误，无覆盖继续运行
		log.Printf("[TuningStore] Warning: Failed to load tuning overrides: %v (using base tuning)", err)
	}

	return ts, nil
}

// Load 从 gdata 加载调优覆盖
//
// gdataManager 为 nil 或覆盖不存在时清空覆盖。
//
// 返回：
//   - error: 如果反序列化失败返回错误
func (ts *TuningStore) Load() error {
	if ts.gdataManager == nil {
		ts.override = nil
		return nil
	}

	if !ts.gdataManager.ObjectPropExists(tuningObject, tuningProperty) {
		ts.override = nil
		return nil
	}

	data, err := ts.gdataManager.LoadObjectProp(tuningObject, tuningProperty)
	if err != nil {
		ts.override = nil
		return fmt.Errorf("failed to load tuning overrides: %w", err)
	}
	if len(data) == 0 {
		ts.override = nil
		return nil
	}

	var loaded map[string]interface{}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		ts.override = nil
		return fmt.Errorf("failed to unmarshal tuning overrides: %w", err)
	}

	ts.override = loaded
	log.Printf("[TuningStore] Tuning overrides loaded (%d top-level keys)", len(loaded))
	return nil
}

// SaveOverride 保存调优覆盖
//
// nil 覆盖等价于清除。gdataManager 为 nil 时只更新内存（降级模式，不报错）。
//
// 返回：
//   - error: 如果序列化或保存失败返回错误
func (ts *TuningStore) SaveOverride(override map[string]interface{}) error {
	ts.override = override

	if ts.gdataManager == nil {
		return nil
	}

	var data []byte
	if override != nil {
		var err error
		data, err = yaml.Marshal(override)
		if err != nil {
			return fmt.Errorf("failed to marshal tuning overrides: %w", err)
		}
	}

	if err := ts.gdataManager.SaveObjectProp(tuningObject, tuningProperty, data); err != nil {
		return fmt.Errorf("failed to save tuning overrides: %w", err)
	}

	log.Printf("[TuningStore] Tuning overrides saved")
	return nil
}

// ClearOverride 清除调优覆盖
func (ts *TuningStore) ClearOverride() error {
	return ts.SaveOverride(nil)
}

// HasOverride 当前是否有生效的覆盖
func (ts *TuningStore) HasOverride() bool {
	return len(ts.override) > 0
}

// ResolveTuning 在基础调优数据之上合并覆盖并归一化
//
// 合并只在顶层键进行：覆盖中出现的键整体取代基础数据中的同名键。
// 归一化保证结果永远可用（空输入也会得到兜底兵种）。
func (ts *TuningStore) ResolveTuning(base map[string]interface{}) *config.TuningConfig {
	if len(ts.override) == 0 {
		return config.NormalizeTuning(base)
	}

	merged := make(map[string]interface{}, len(base)+len(ts.override))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range ts.override {
		merged[key] = value
	}
	return config.NormalizeTuning(merged)
}
