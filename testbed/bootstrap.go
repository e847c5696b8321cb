package testbed

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// bootstrap brings up a headless instance and logical device. The engine
// core only consumes the resulting handles; creation stays with the
// embedder, which for the testbed is this file.
func bootstrap() (vulkan.DeviceOptions, func(), error) {
	var opts vulkan.DeviceOptions

	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return opts, nil, fmt.Errorf("failed to locate the Vulkan loader: %w", err)
	}
	if err := vk.Init(); err != nil {
		return opts, nil, fmt.Errorf("failed to initialize Vulkan: %w", err)
	}

	appInfo := vk.ApplicationInfo{
		SType:            vk.StructureTypeApplicationInfo,
		PApplicationName: "vireo-testbed\x00",
		PEngineName:      "vireo\x00",
		ApiVersion:       vk.MakeVersion(1, 1, 0),
	}
	instanceInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&instanceInfo, nil, &instance); res != vk.Success {
		return opts, nil, fmt.Errorf("vkCreateInstance failed with %d", res)
	}
	vk.InitInstance(instance)

	var deviceCount uint32
	vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)
	if deviceCount == 0 {
		vk.DestroyInstance(instance, nil)
		return opts, nil, fmt.Errorf("no Vulkan devices found")
	}
	physicalDevices := make([]vk.PhysicalDevice, deviceCount)
	vk.EnumeratePhysicalDevices(instance, &deviceCount, physicalDevices)
	physical := physicalDevices[0]

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physical, &familyCount, families)

	queueFamilyIndex := uint32(0)
	found := false
	for i, family := range families {
		family.Deref()
		if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			queueFamilyIndex = uint32(i)
			found = true
			break
		}
	}
	if !found {
		vk.DestroyInstance(instance, nil)
		return opts, nil, fmt.Errorf("no graphics queue family found")
	}

	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: queueFamilyIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	features := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: vk.True,
		FillModeNonSolid:  vk.True,
	}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
		PEnabledFeatures:     []vk.PhysicalDeviceFeatures{features},
	}
	var logical vk.Device
	if res := vk.CreateDevice(physical, &deviceInfo, nil, &logical); res != vk.Success {
		vk.DestroyInstance(instance, nil)
		return opts, nil, fmt.Errorf("vkCreateDevice failed with %d", res)
	}

	var queue vk.Queue
	vk.GetDeviceQueue(logical, queueFamilyIndex, 0, &queue)

	opts = vulkan.DeviceOptions{
		PhysicalDevice:   physical,
		LogicalDevice:    logical,
		Queue:            queue,
		QueueFamilyIndex: queueFamilyIndex,
	}
	cleanup := func() {
		vk.DestroyDevice(logical, nil)
		vk.DestroyInstance(instance, nil)
		core.LogDebug("vulkan handles released")
	}
	return opts, cleanup, nil
}
