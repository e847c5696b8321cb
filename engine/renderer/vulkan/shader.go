package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/math"
)

// ShaderOptions selects the fixed-function state baked into the pipeline.
type ShaderOptions struct {
	FrontCull  bool
	Wireframe  bool
	DepthTest  bool
	DepthWrite bool
}

// SpirV is a pair of compiled shader stages.
type SpirV struct {
	Vertex   []byte
	Fragment []byte
}

// Shader wraps one graphics pipeline. Recreate swaps the pipeline in place so
// handles held elsewhere stay valid across hot reloads.
type Shader struct {
	pipeline   vk.Pipeline
	options    ShaderOptions
	renderPass *RenderPass
	layout     *ShaderLayout
	device     *Device
}

func NewShader(device *Device, renderPass *RenderPass, layout *ShaderLayout, spirv SpirV, options ShaderOptions) (*Shader, error) {
	s := &Shader{
		options:    options,
		renderPass: renderPass,
		layout:     layout,
		device:     device,
	}
	if err := s.build(spirv); err != nil {
		return nil, err
	}
	return s, nil
}

// Recreate rebuilds the pipeline from new bytecode with the same options.
// The caller must drain in-flight frames first.
func (s *Shader) Recreate(spirv SpirV) error {
	old := s.pipeline
	if err := s.build(spirv); err != nil {
		return err
	}
	if old != vk.NullPipeline {
		_ = lockPool.SafeCall(PipelineManagement, func() error {
			vk.DestroyPipeline(s.device.Logical(), old, nil)
			return nil
		})
	}
	return nil
}

func (s *Shader) build(spirv SpirV) error {
	vertModule, err := s.createModule(spirv.Vertex)
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(s.device.Logical(), vertModule, nil)

	fragModule, err := s.createModule(spirv.Fragment)
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(s.device.Logical(), fragModule, nil)

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertModule,
			PName:  "main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  "main\x00",
		},
	}

	// Viewport and scissor are dynamic; placeholders satisfy validation.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{{Width: 1, Height: 1, MaxDepth: 1}},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{{Extent: vk.Extent2D{Width: 1, Height: 1}}},
	}
	viewportState.Deref()

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		FrontFace:               vk.FrontFaceCounterClockwise,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		DepthBiasEnable:         vk.False,
	}
	if s.options.Wireframe {
		rasterizerCreateInfo.PolygonMode = vk.PolygonModeLine
		rasterizerCreateInfo.CullMode = vk.CullModeFlags(vk.CullModeNone)
	}
	if s.options.FrontCull {
		rasterizerCreateInfo.CullMode = vk.CullModeFlags(vk.CullModeFrontBit)
	}
	rasterizerCreateInfo.Deref()

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}
	multisamplingCreateInfo.Deref()

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   vk.False,
		DepthWriteEnable:  vk.False,
		StencilTestEnable: vk.False,
	}
	if s.options.DepthTest {
		depthStencil.DepthTestEnable = vk.True
		depthStencil.DepthCompareOp = vk.CompareOpLessOrEqual
	}
	if s.options.DepthWrite {
		depthStencil.DepthWriteEnable = vk.True
	}
	depthStencil.Deref()

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:         vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable: vk.False,
		LogicOp:       vk.LogicOpCopy,
	}
	if s.renderPass.HasColor {
		colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
			BlendEnable:         vk.True,
			SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
			DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
			ColorBlendOp:        vk.BlendOpAdd,
			SrcAlphaBlendFactor: vk.BlendFactorSrcAlpha,
			DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
			AlphaBlendOp:        vk.BlendOpAdd,
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
				vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
		}
		colorBlendAttachmentState.Deref()
		colorBlendStateCreateInfo.AttachmentCount = 1
		colorBlendStateCreateInfo.PAttachments = []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState}
	}
	colorBlendStateCreateInfo.Deref()

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
		vk.DynamicStateLineWidth,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	dynamicStateCreateInfo.Deref()

	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(math.Vertex3D{})),
		InputRate: vk.VertexInputRateVertex,
	}
	bindingDescription.Deref()

	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(math.Vertex3D{}.Position))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(math.Vertex3D{}.Normal))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(math.Vertex3D{}.Texcoord))},
		{Location: 3, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(math.Vertex3D{}.Colour))},
	}
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDescription},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
	vertexInputInfo.Deref()

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	inputAssembly.Deref()

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              s.layout.PipelineLayout(),
		RenderPass:          s.renderPass.Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
	pipelineCreateInfo.Deref()

	pipelines := make([]vk.Pipeline, 1)
	if err := lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreateGraphicsPipelines(
			s.device.Logical(),
			vk.NullPipelineCache,
			1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
			nil,
			pipelines)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return err
	}

	s.pipeline = pipelines[0]
	core.LogDebug("graphics pipeline created")
	return nil
}

func (s *Shader) createModule(code []byte) (vk.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return vk.NullShaderModule, fmt.Errorf("SPIR-V bytecode length must be a positive multiple of 4, got %d", len(code))
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    sliceUint32(code),
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(s.device.Logical(), &createInfo, nil, &module); res != vk.Success {
		err := fmt.Errorf("failed to create shader module: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return vk.NullShaderModule, err
	}
	return module, nil
}

// sliceUint32 reinterprets SPIR-V bytes as the word slice Vulkan expects.
func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

func (s *Shader) Pipeline() vk.Pipeline {
	return s.pipeline
}

func (s *Shader) Options() ShaderOptions {
	return s.options
}

func (s *Shader) Destroy() {
	if s.pipeline != vk.NullPipeline {
		_ = lockPool.SafeCall(PipelineManagement, func() error {
			vk.DestroyPipeline(s.device.Logical(), s.pipeline, nil)
			s.pipeline = vk.NullPipeline
			return nil
		})
	}
}
