package resources

// Index identifies a mesh, material or framebuffer in the manager. Indices
// are handed out from a monotonically increasing counter and never reused,
// so a stale Index can be detected instead of silently resolving to a
// different resource.
type Index uint32

// NilIndex never resolves.
const NilIndex Index = 0
