package body

import (
	"math"
	"testing"

	"github.com/Versifine/gait/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

const testDt = 0.02

func flatWorld() *physics.World {
	w := physics.NewWorld()
	w.AddFloor(-4, 4, -4, 4, -1, physics.LayerGround)
	return w
}

func TestNew_SpawnOnFloorIsGrounded(t *testing.T) {
	b := New(mgl64.Vec3{0.5, 0, 0.5}, DefaultOptions(), flatWorld())
	if !b.PhysicsState().OnGround {
		t.Fatalf("onGround = false, want true")
	}
	if b.Rotation() != mgl64.QuatIdent() {
		t.Fatalf("rotation = %v, want identity", b.Rotation())
	}
}

func TestBodyStep_ImpulseAppliedOnNextStep(t *testing.T) {
	opts := DefaultOptions()
	opts.Mass = 2
	b := New(mgl64.Vec3{0.5, 0, 0.5}, opts, flatWorld())

	b.ApplyImpulse(mgl64.Vec3{0, 10, 0})
	if v := b.Velocity(); v.Y() != 0 {
		t.Fatalf("velocity.y = %.4f before step, want 0", v.Y())
	}

	b.Step(testDt)

	want := 10/opts.Mass + physics.DefaultGravity*testDt
	if got := b.Velocity().Y(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("velocity.y = %.6f, want %.6f", got, want)
	}
	if b.Position().Y() <= 0 {
		t.Fatalf("position.y = %.6f, want > 0", b.Position().Y())
	}

	b.Step(testDt)
	if got := b.Velocity().Y(); got >= want {
		t.Fatalf("impulse applied twice: velocity.y = %.6f", got)
	}
}

func TestBodyStep_SetVelocityMovesHorizontally(t *testing.T) {
	b := New(mgl64.Vec3{0.5, 0, 0.5}, DefaultOptions(), flatWorld())
	b.SetVelocity(mgl64.Vec3{0, 0, 3})
	b.Step(testDt)

	pos := b.Position()
	if math.Abs(pos.Z()-(0.5+3*testDt)) > 1e-9 {
		t.Fatalf("position.z = %.6f, want %.6f", pos.Z(), 0.5+3*testDt)
	}
	if pos.Y() != 0 {
		t.Fatalf("position.y = %.6f, want 0", pos.Y())
	}
}

func TestSetPositionClearsMotion(t *testing.T) {
	b := New(mgl64.Vec3{0.5, 0, 0.5}, DefaultOptions(), flatWorld())
	b.SetVelocity(mgl64.Vec3{1, 1, 1})
	b.ApplyImpulse(mgl64.Vec3{0, 5, 0})

	b.SetPosition(mgl64.Vec3{0.5, 3, 0.5})

	state := b.PhysicsState()
	if state.Velocity != (mgl64.Vec3{}) {
		t.Fatalf("velocity = %v, want zero", state.Velocity)
	}
	if state.OnGround {
		t.Fatalf("onGround = true at y=3")
	}
	b.Step(testDt)
	if b.Velocity().Y() > 0 {
		t.Fatalf("pending impulse survived teleport")
	}
}

func TestAnchorAndPivotFollowBody(t *testing.T) {
	b := New(mgl64.Vec3{1, 2, 3}, DefaultOptions(), nil)
	anchor := b.Anchor(mgl64.Vec3{0, 0.5, 0})
	pivot := NewPivot(b, 1.5)

	if got := anchor.Position(); got != (mgl64.Vec3{1, 2.5, 3}) {
		t.Fatalf("anchor = %v, want (1, 2.5, 3)", got)
	}
	b.SetPosition(mgl64.Vec3{4, 0, 0})
	if got := pivot.Position(); got != (mgl64.Vec3{4, 1.5, 0}) {
		t.Fatalf("pivot = %v, want (4, 1.5, 0)", got)
	}

	quarter := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	pivot.SetRotation(quarter)
	fwd := pivot.Forward()
	if math.Abs(fwd.X()-1) > 1e-9 || math.Abs(fwd.Z()) > 1e-9 {
		t.Fatalf("pivot forward = %v, want (1, 0, 0)", fwd)
	}
	if b.Rotation() != mgl64.QuatIdent() {
		t.Fatalf("pivot rotation leaked into body rotation")
	}
}
