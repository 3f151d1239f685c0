package controller

import (
	"math"
	"testing"

	"github.com/Versifine/gait/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %.8f, want %.8f (tol=%.8f)", field, got, want, tol)
	}
}

func approxVec(t *testing.T, got, want mgl64.Vec3, tol float64, field string) {
	t.Helper()
	if !got.ApproxEqualThreshold(want, tol) {
		t.Fatalf("%s = %v, want %v (tol=%.8f)", field, got, want, tol)
	}
}

type fakeWorld struct {
	grounded bool
	queries  int
	center   mgl64.Vec3
	radius   float64
	mask     physics.LayerMask
}

func (w *fakeWorld) OverlapSphere(center mgl64.Vec3, radius float64, mask physics.LayerMask) bool {
	w.queries++
	w.center, w.radius, w.mask = center, radius, mask
	return w.grounded
}

type fakeBody struct {
	velocity mgl64.Vec3
	impulses []mgl64.Vec3
	sets     int
}

func (b *fakeBody) Velocity() mgl64.Vec3 { return b.velocity }

func (b *fakeBody) SetVelocity(v mgl64.Vec3) {
	b.velocity = v
	b.sets++
}

func (b *fakeBody) ApplyImpulse(impulse mgl64.Vec3) {
	b.impulses = append(b.impulses, impulse)
}

type fakeTarget struct {
	rotation mgl64.Quat
	sets     int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{rotation: mgl64.QuatIdent()}
}

func (f *fakeTarget) Rotation() mgl64.Quat { return f.rotation }

func (f *fakeTarget) SetRotation(q mgl64.Quat) {
	f.rotation = q
	f.sets++
}

type fakeAnimator struct {
	scalars  map[string]float64
	bools    map[string]bool
	triggers map[string]int
}

func newFakeAnimator() *fakeAnimator {
	return &fakeAnimator{
		scalars:  make(map[string]float64),
		bools:    make(map[string]bool),
		triggers: make(map[string]int),
	}
}

func (a *fakeAnimator) SetScalar(name string, value float64) { a.scalars[name] = value }
func (a *fakeAnimator) SetBool(name string, value bool)      { a.bools[name] = value }
func (a *fakeAnimator) TriggerOnce(name string)              { a.triggers[name]++ }

type fixedPoint mgl64.Vec3

func (p fixedPoint) Position() mgl64.Vec3 { return mgl64.Vec3(p) }

type recordingEvents struct {
	names []string
}

func (r *recordingEvents) Publish(name string, evt any) {
	r.names = append(r.names, name)
}

type harness struct {
	world    *fakeWorld
	body     *fakeBody
	facing   *fakeTarget
	camera   *fakeTarget
	animator *fakeAnimator
	events   *recordingEvents
	ctrl     *Controller
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		world:    &fakeWorld{grounded: true},
		body:     &fakeBody{},
		facing:   newFakeTarget(),
		camera:   newFakeTarget(),
		animator: newFakeAnimator(),
		events:   &recordingEvents{},
	}
	ctrl, err := New(cfg, Deps{
		World:      h.world,
		Body:       h.body,
		Facing:     h.facing,
		Camera:     h.camera,
		Animator:   h.animator,
		CheckPoint: fixedPoint{0, 0.1, 0},
		Events:     h.events,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.ctrl = ctrl
	return h
}
