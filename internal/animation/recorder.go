package animation

import (
	"log/slog"
	"math"
	"sync"

	"github.com/Versifine/gait/internal/event"
)

// scalarEpsilon suppresses change events for float jitter on smoothed params.
const scalarEpsilon = 1e-6

type Publisher interface {
	Publish(eventName string, evt any)
}

// Recorder is an animation parameter sink. It keeps the latest value of every
// named parameter and counts one-shot triggers until they are consumed.
type Recorder struct {
	mu       sync.Mutex
	scalars  map[string]float64
	bools    map[string]bool
	triggers map[string]int
	bus      Publisher
}

func NewRecorder(bus Publisher) *Recorder {
	return &Recorder{
		scalars:  make(map[string]float64),
		bools:    make(map[string]bool),
		triggers: make(map[string]int),
		bus:      bus,
	}
}

func (r *Recorder) SetScalar(name string, value float64) {
	r.mu.Lock()
	prev, seen := r.scalars[name]
	r.scalars[name] = value
	r.mu.Unlock()

	if seen && math.Abs(prev-value) <= scalarEpsilon {
		return
	}
	r.publish(event.EventAnimationParam, &event.AnimationParamEvent{Name: name, Scalar: value})
}

func (r *Recorder) SetBool(name string, value bool) {
	r.mu.Lock()
	prev, seen := r.bools[name]
	r.bools[name] = value
	r.mu.Unlock()

	if seen && prev == value {
		return
	}
	slog.Debug("animation bool changed", "name", name, "value", value)
	r.publish(event.EventAnimationParam, &event.AnimationParamEvent{Name: name, Bool: value, IsBool: true})
}

func (r *Recorder) TriggerOnce(name string) {
	r.mu.Lock()
	r.triggers[name]++
	r.mu.Unlock()

	slog.Debug("animation trigger", "name", name)
	r.publish(event.EventAnimationTrigger, &event.AnimationTriggerEvent{Name: name})
}

func (r *Recorder) Scalar(name string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.scalars[name]
	return v, ok
}

func (r *Recorder) Bool(name string) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.bools[name]
	return v, ok
}

// Pending returns the number of unconsumed fires of a trigger.
func (r *Recorder) Pending(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.triggers[name]
}

// ConsumeTrigger clears a trigger, reporting whether it had fired.
func (r *Recorder) ConsumeTrigger(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.triggers[name]
	delete(r.triggers, name)
	return n > 0
}

func (r *Recorder) publish(name string, evt any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(name, evt)
}

