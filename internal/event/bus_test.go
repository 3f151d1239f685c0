package event

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestNewBus 测试创建新的事件总线
func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() 返回 nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() handlers map 未初始化")
	}
}

// TestSubscribeAndPublish 测试订阅和发布事件
func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var received any
	bus.Subscribe("test", func(event any) {
		received = event
	})

	bus.Publish("test", "hello")

	if received != "hello" {
		t.Errorf("handler 收到 %v, 期望 %v", received, "hello")
	}
}

// TestPublishNoSubscribers 测试发布无订阅者的事件不会 panic
func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	// 不应 panic
	bus.Publish("nonexistent", "data")
}

// TestMultipleSubscribers 测试多个订阅者
func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	var count int32

	bus.Subscribe("test", func(event any) {
		atomic.AddInt32(&count, 1)
	})
	bus.Subscribe("test", func(event any) {
		atomic.AddInt32(&count, 1)
	})
	bus.Subscribe("test", func(event any) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish("test", "data")

	if count != 3 {
		t.Errorf("handler 被调用 %d 次, 期望 3 次", count)
	}
}

// TestMultipleEvents 测试不同事件名称互不干扰
func TestMultipleEvents(t *testing.T) {
	bus := NewBus()
	var animReceived, jumpReceived bool

	bus.Subscribe("animation", func(event any) {
		animReceived = true
	})
	bus.Subscribe("jump", func(event any) {
		jumpReceived = true
	})

	bus.Publish("animation", "msg")

	if !animReceived {
		t.Error("animation handler 应该被调用")
	}
	if jumpReceived {
		t.Error("jump handler 不应该被调用")
	}
}

// TestConcurrentSubscribeAndPublish 测试并发订阅和发布的线程安全性
func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	// 先订阅一个handler
	bus.Subscribe("test", func(event any) {
		count.Add(1)
	})

	var wg sync.WaitGroup

	// 并发发布
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish("test", "data")
		}()
	}

	// 并发订阅
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe("test", func(event any) {
				count.Add(1)
			})
		}()
	}

	wg.Wait()

	if count.Load() < 100 {
		t.Errorf("至少应该收到 100 次事件, 实际收到 %d 次", count.Load())
	}
}

// TestPublishIsSynchronousAndOrdered 测试同步分发与订阅顺序
func TestPublishIsSynchronousAndOrdered(t *testing.T) {
	bus := NewBus()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		bus.Subscribe("test", func(event any) {
			order = append(order, i)
		})
	}

	bus.Publish("test", nil)

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("调用顺序 %v, 期望 [0 1 2]", order)
	}
}

// TestPanickingHandlerDoesNotStopOthers 测试 panic 的 handler 不影响后续 handler
func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Subscribe("test", func(event any) {
		panic("boom")
	})
	bus.Subscribe("test", func(event any) {
		called = true
	})

	bus.Publish("test", nil)

	if !called {
		t.Error("panic 之后的 handler 应该被调用")
	}
}

// TestPublishOnNilBus 测试 nil 总线发布不会 panic
func TestPublishOnNilBus(t *testing.T) {
	var bus *Bus
	bus.Publish("test", "data")
}

// TestPublishEventData 测试事件数据正确传递
func TestPublishEventData(t *testing.T) {
	bus := NewBus()
	var received *JumpPhaseEvent
	bus.Subscribe(EventJumpPhase, func(event any) {
		received = event.(*JumpPhaseEvent)
	})

	sent := &JumpPhaseEvent{From: "Idle", To: "DelayAfterLaunch"}
	bus.Publish(EventJumpPhase, sent)

	if received == nil {
		t.Fatal("handler 未收到事件")
	}
	if received.From != "Idle" || received.To != "DelayAfterLaunch" {
		t.Errorf("收到 %+v, 期望 %+v", received, sent)
	}
}
