package parallel

import (
	"fmt"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallN(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForErr_LowestIndexWins(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	var ran int64
	err := ForErr(20, func(i int) error {
		atomic.AddInt64(&ran, 1)
		if i == 7 || i == 13 {
			return fmt.Errorf("item %d", i)
		}
		return nil
	}, cfg)

	if err == nil || err.Error() != "item 7" {
		t.Errorf("Expected item 7, got %v", err)
	}
	if ran != 20 {
		t.Errorf("Expected every item to run, ran %d", ran)
	}
}

func TestForErr_NoError(t *testing.T) {
	err := ForErr(10, func(int) error { return nil }, DefaultConfig())
	if err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestWithWorkers(t *testing.T) {
	cfg := DefaultConfig().WithWorkers(1)
	if cfg.Enabled {
		t.Error("One worker should disable parallelism")
	}

	cfg = Config{}.WithWorkers(3)
	if !cfg.Enabled || cfg.NumWorkers != 3 {
		t.Errorf("Unexpected config %+v", cfg)
	}

	keep := DefaultConfig()
	if keep.WithWorkers(0) != keep {
		t.Error("Zero workers should keep the config")
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}
