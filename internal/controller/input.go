package controller

import "github.com/go-gl/mathgl/mgl64"

// InputState holds the latest reported value of each input. Later reports
// overwrite earlier ones; nothing is queued.
type InputState struct {
	Move mgl64.Vec2
	Look mgl64.Vec2
	Run  bool
}
