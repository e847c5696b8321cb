package resources

import (
	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// Mesh owns a vertex and an index buffer. Geometry may be rewritten between
// frames; growing past the allocated capacity reallocates the buffer.
type Mesh struct {
	vertexBuffer *vulkan.DynamicBuffer[math.Vertex3D]
	indexBuffer  *vulkan.DynamicBuffer[uint32]
	indexCount   uint32
}

func NewMesh(device *vulkan.Device, vertices []math.Vertex3D, indices []uint32) (*Mesh, error) {
	vertexBuffer, err := vulkan.NewDynamicBuffer[math.Vertex3D](device, vulkan.BufferUsageVertex, len(vertices))
	if err != nil {
		return nil, err
	}
	indexBuffer, err := vulkan.NewDynamicBuffer[uint32](device, vulkan.BufferUsageIndex, len(indices))
	if err != nil {
		vertexBuffer.Destroy()
		return nil, err
	}

	m := &Mesh{vertexBuffer: vertexBuffer, indexBuffer: indexBuffer}
	if err := m.UpdateVertices(vertices); err != nil {
		m.Destroy()
		return nil, err
	}
	if err := m.UpdateIndices(indices); err != nil {
		m.Destroy()
		return nil, err
	}
	return m, nil
}

// UpdateVertices rewrites the vertex data, growing the buffer first when the
// new geometry does not fit.
func (m *Mesh) UpdateVertices(vertices []math.Vertex3D) error {
	if len(vertices) > m.vertexBuffer.Capacity() {
		if err := m.vertexBuffer.Resize(len(vertices)); err != nil {
			return err
		}
	}
	return m.vertexBuffer.Write(vertices)
}

// UpdateIndices rewrites the index data, growing the buffer first when
// needed.
func (m *Mesh) UpdateIndices(indices []uint32) error {
	if len(indices) > m.indexBuffer.Capacity() {
		if err := m.indexBuffer.Resize(len(indices)); err != nil {
			return err
		}
	}
	if err := m.indexBuffer.Write(indices); err != nil {
		return err
	}
	m.indexCount = uint32(len(indices))
	return nil
}

func (m *Mesh) VertexBuffer() vk.Buffer {
	return m.vertexBuffer.Handle()
}

func (m *Mesh) IndexBuffer() vk.Buffer {
	return m.indexBuffer.Handle()
}

func (m *Mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *Mesh) Destroy() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Destroy()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Destroy()
		m.indexBuffer = nil
	}
}
