package graphics

// Context defines the interface for an OpenGL context owned by a display
// surface.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	// GazePosition returns the current gaze point in normalized [0,1]
	// framebuffer coordinates, origin at the lower left.
	GazePosition() (float32, float32)
}
