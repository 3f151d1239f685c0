package body

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Pivot is the camera target: it follows the body at a fixed height and owns
// its own rotation, independent of the body's facing.
type Pivot struct {
	Anchor

	mu       sync.Mutex
	rotation mgl64.Quat
}

func NewPivot(b *Body, height float64) *Pivot {
	return &Pivot{
		Anchor:   Anchor{body: b, offset: mgl64.Vec3{0, height, 0}},
		rotation: mgl64.QuatIdent(),
	}
}

func (p *Pivot) Rotation() mgl64.Quat {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rotation
}

func (p *Pivot) SetRotation(q mgl64.Quat) {
	p.mu.Lock()
	p.rotation = q
	p.mu.Unlock()
}

func (p *Pivot) Forward() mgl64.Vec3 {
	return p.Rotation().Rotate(mgl64.Vec3{0, 0, 1})
}
