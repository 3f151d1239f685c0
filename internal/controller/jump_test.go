package controller

import "testing"

func TestJumpController_LiteralGate(t *testing.T) {
	tests := []struct {
		name     string
		grounded bool
		canJump  bool
		want     bool
	}{
		{"grounded and ready is a no-op", true, true, false},
		{"airborne and ready fires", false, true, true},
		{"grounded while cooling fires", true, false, true},
		{"airborne while cooling fires", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJumpController(GateLiteral, 1)
			j.canJump = tt.canJump
			if got := j.Accepts(tt.grounded); got != tt.want {
				t.Fatalf("Accepts(grounded=%t) with canJump=%t = %t, want %t", tt.grounded, tt.canJump, got, tt.want)
			}
		})
	}
}

func TestJumpController_GroundedGate(t *testing.T) {
	tests := []struct {
		name     string
		grounded bool
		canJump  bool
		want     bool
	}{
		{"grounded and ready fires", true, true, true},
		{"airborne and ready is rejected", false, true, false},
		{"grounded while cooling is rejected", true, false, false},
		{"airborne while cooling is rejected", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJumpController(GateGrounded, 1)
			j.canJump = tt.canJump
			if got := j.Accepts(tt.grounded); got != tt.want {
				t.Fatalf("Accepts(grounded=%t) with canJump=%t = %t, want %t", tt.grounded, tt.canJump, got, tt.want)
			}
		})
	}
}

func TestJumpController_ScriptedTimeline(t *testing.T) {
	j := NewJumpController(GateGrounded, 1.0)

	if !j.Request(true) {
		t.Fatalf("Request(grounded) = false, want true")
	}
	if j.CanJump() {
		t.Fatalf("canJump = true right after launch")
	}
	if j.Phase() != PhaseDelayAfterLaunch {
		t.Fatalf("phase = %s, want DelayAfterLaunch", j.Phase())
	}

	steps := []struct {
		dt        float64
		grounded  bool
		at        string
		wantPhase JumpPhase
		wantCan   bool
	}{
		{0.016, false, "launch frame", PhaseDelayAfterLaunch, false},
		{0.24, false, "t=0.24", PhaseDelayAfterLaunch, false},
		{0.06, true, "t=0.30 grounded", PhaseDelayAfterGround, false},
		{0.49, true, "t=0.79", PhaseDelayAfterGround, false},
		{0.50, false, "t=1.29", PhaseDelayAfterGround, false},
		{0.01 + 1e-6, true, "t=1.30+eps", PhaseIdle, true},
	}
	for _, s := range steps {
		j.Tick(s.dt, s.grounded)
		if j.Phase() != s.wantPhase || j.CanJump() != s.wantCan {
			t.Fatalf("%s: phase=%s canJump=%t, want phase=%s canJump=%t",
				s.at, j.Phase(), j.CanJump(), s.wantPhase, s.wantCan)
		}
	}
}

func TestJumpController_WaitsForGroundIndefinitely(t *testing.T) {
	j := NewJumpController(GateGrounded, 0.5)
	j.Request(true)

	for i := 0; i < 1000; i++ {
		j.Tick(0.1, false)
	}
	if j.Phase() != PhaseWaitingForGround || j.CanJump() {
		t.Fatalf("phase=%s canJump=%t, want WaitingForGround/false", j.Phase(), j.CanJump())
	}

	j.Tick(0.1, true)
	if j.Phase() != PhaseDelayAfterGround {
		t.Fatalf("phase = %s, want DelayAfterGround", j.Phase())
	}
}

func TestJumpController_GroundedBeforeDelayIsIgnored(t *testing.T) {
	j := NewJumpController(GateGrounded, 1)
	j.Request(true)

	// grounded during the launch delay must not count
	j.Tick(0.016, true)
	j.Tick(0.1, true)
	j.Tick(0.1, true)
	if j.Phase() != PhaseDelayAfterLaunch {
		t.Fatalf("phase = %s, want DelayAfterLaunch", j.Phase())
	}

	// the tick that finishes the delay polls ground in the same tick
	j.Tick(0.06, true)
	if j.Phase() != PhaseDelayAfterGround {
		t.Fatalf("phase = %s, want DelayAfterGround", j.Phase())
	}
	if j.Elapsed() != 0 {
		t.Fatalf("elapsed = %.3f, want 0 on entering DelayAfterGround", j.Elapsed())
	}
}

func TestJumpController_LaunchFrameDoesNotCount(t *testing.T) {
	j := NewJumpController(GateGrounded, 1)
	j.Request(true)

	// the tick in the launch frame carries time spent before the jump
	j.Tick(0.2, false)
	if j.Elapsed() != 0 || j.Phase() != PhaseDelayAfterLaunch {
		t.Fatalf("after launch frame: phase=%s elapsed=%.3f, want DelayAfterLaunch/0", j.Phase(), j.Elapsed())
	}

	j.Tick(0.2, false)
	if j.Phase() != PhaseDelayAfterLaunch {
		t.Fatalf("phase = %s after 0.2s, want DelayAfterLaunch", j.Phase())
	}
	j.Tick(0.05, false)
	if j.Phase() != PhaseWaitingForGround {
		t.Fatalf("phase = %s after 0.25s, want WaitingForGround", j.Phase())
	}
}

func TestJumpController_LiteralRefireKeepsRunningCooldown(t *testing.T) {
	j := NewJumpController(GateLiteral, 1)

	if j.Request(true) {
		t.Fatalf("literal gate fired while grounded and ready")
	}
	if !j.Request(false) {
		t.Fatalf("literal gate rejected airborne request")
	}
	j.Tick(0.01, false) // launch frame

	// frame i ends at t = i*0.01; refire at t=0.2, ground from t=0.3.
	// The first launch reopens the gate at t = 0.3 + 1.0.
	for i := 1; i <= 140; i++ {
		if i == 20 {
			phase, elapsed := j.Phase(), j.Elapsed()
			if !j.Request(false) {
				t.Fatalf("literal gate rejected request while cooling")
			}
			if j.Phase() != phase || j.Elapsed() != elapsed || j.CanJump() {
				t.Fatalf("refire changed cooldown: phase=%s elapsed=%.3f, want %s/%.3f",
					j.Phase(), j.Elapsed(), phase, elapsed)
			}
		}
		j.Tick(0.01, i >= 30)

		switch i {
		case 28:
			if j.Phase() != PhaseWaitingForGround {
				t.Fatalf("t=0.28: phase = %s, want WaitingForGround", j.Phase())
			}
		case 128:
			if j.CanJump() {
				t.Fatalf("t=1.28: gate reopened before the first cooldown finished")
			}
		case 132:
			if !j.CanJump() || j.Phase() != PhaseIdle {
				t.Fatalf("t=1.32: phase=%s canJump=%t, want reopened by the first cooldown", j.Phase(), j.CanJump())
			}
		}
	}
}

func TestJumpController_PhaseCallback(t *testing.T) {
	j := NewJumpController(GateGrounded, 0)
	var seen []string
	j.onPhase = func(from, to JumpPhase) {
		seen = append(seen, from.String()+">"+to.String())
	}

	j.Request(true)
	j.Tick(0.016, true)
	j.Tick(0.25, true)
	j.Tick(0.01, true)

	want := []string{
		"Idle>DelayAfterLaunch",
		"DelayAfterLaunch>WaitingForGround",
		"WaitingForGround>DelayAfterGround",
		"DelayAfterGround>Idle",
	}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, seen[i], want[i])
		}
	}
	if !j.CanJump() {
		t.Fatalf("canJump = false after full cooldown")
	}
}

func TestJumpPhaseString(t *testing.T) {
	if PhaseIdle.Cooling() {
		t.Fatalf("Idle reports cooling")
	}
	if !PhaseWaitingForGround.Cooling() {
		t.Fatalf("WaitingForGround does not report cooling")
	}
	if JumpPhase(99).String() != "Unknown" {
		t.Fatalf("JumpPhase(99).String() = %q", JumpPhase(99).String())
	}
}
