package renderer

// RenderStats accumulates per-frame counters across the shadow and color
// passes. Reset at the start of every frame.
type RenderStats struct {
	DrawCalls      uint32
	ShadersBound   uint32
	MaterialsBound uint32
	IndicesDrawn   uint32
	OrdersSkipped  uint32
}
