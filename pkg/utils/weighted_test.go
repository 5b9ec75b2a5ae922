package utils

import (
	"math/rand"
	"testing"
)

// TestWeightedIndex 测试加权下标选择
func TestWeightedIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	t.Run("全零权重返回 -1", func(t *testing.T) {
		if idx := WeightedIndex(rng, []float64{0, 0, 0}); idx != -1 {
			t.Errorf("Expected -1, got %d", idx)
		}
	})

	t.Run("空列表返回 -1", func(t *testing.T) {
		if idx := WeightedIndex(rng, nil); idx != -1 {
			t.Errorf("Expected -1, got %d", idx)
		}
	})

	t.Run("单个正权重必选中", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			if idx := WeightedIndex(rng, []float64{0, 3.0, 0}); idx != 1 {
				t.Fatalf("Expected 1, got %d", idx)
			}
		}
	})

	t.Run("负权重候选永不选中", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			idx := WeightedIndex(rng, []float64{-1.0, 2.0, 0.5})
			if idx == 0 {
				t.Fatal("Negative weight candidate was selected")
			}
		}
	})

	t.Run("权重越大选中频率越高", func(t *testing.T) {
		counts := make([]int, 2)
		for i := 0; i < 2000; i++ {
			idx := WeightedIndex(rng, []float64{9.0, 1.0})
			counts[idx]++
		}
		// 期望比例约 9:1，宽松验证
		if counts[0] <= counts[1]*3 {
			t.Errorf("Expected heavy bias to index 0, got %v", counts)
		}
	})
}

// TestSampleWithoutReplacement 测试不放回抽样
func TestSampleWithoutReplacement(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("结果无重复", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			picked := SampleWithoutReplacement(rng, []float64{1, 2, 3, 4, 5}, 3)
			if len(picked) != 3 {
				t.Fatalf("Expected 3 picks, got %d", len(picked))
			}
			seen := make(map[int]bool)
			for _, idx := range picked {
				if seen[idx] {
					t.Fatalf("Duplicate index %d in %v", idx, picked)
				}
				seen[idx] = true
			}
		}
	})

	t.Run("候选不足时返回全部正权重候选", func(t *testing.T) {
		picked := SampleWithoutReplacement(rng, []float64{1.0, 0, 2.0}, 5)
		if len(picked) != 2 {
			t.Errorf("Expected 2 picks, got %d: %v", len(picked), picked)
		}
	})
}

// TestCombinations 测试组合枚举
func TestCombinations(t *testing.T) {
	tests := []struct {
		name          string
		n             int
		k             int
		expectedCount int
	}{
		{name: "C(5,3)=10", n: 5, k: 3, expectedCount: 10},
		{name: "C(4,4)=1", n: 4, k: 4, expectedCount: 1},
		{name: "C(3,1)=3", n: 3, k: 1, expectedCount: 3},
		{name: "k>n 返回空", n: 2, k: 3, expectedCount: 0},
		{name: "k=0 返回空", n: 5, k: 0, expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combos := Combinations(tt.n, tt.k)
			if len(combos) != tt.expectedCount {
				t.Errorf("Expected %d combinations, got %d", tt.expectedCount, len(combos))
			}
			// 组合内部下标严格递增（无重复）
			for _, combo := range combos {
				for i := 1; i < len(combo); i++ {
					if combo[i] <= combo[i-1] {
						t.Errorf("Combination %v is not strictly increasing", combo)
					}
				}
			}
		})
	}
}
