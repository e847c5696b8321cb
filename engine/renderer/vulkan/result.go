package vulkan

import (
	vk "github.com/goki/vulkan"
)

func ConditionalOperator[T any](condition bool, ifTrue, ifFalse T) T {
	if condition {
		return ifTrue
	}
	return ifFalse
}

func VulkanResultIsSuccess(result vk.Result) bool {
	switch result {
	case vk.Success, vk.NotReady, vk.Timeout, vk.EventSet, vk.EventReset,
		vk.Incomplete, vk.Suboptimal, vk.ThreadIdle, vk.ThreadDone,
		vk.OperationDeferred, vk.OperationNotDeferred, vk.PipelineCompileRequired:
		return true
	default:
		return false
	}
}

func VulkanResultString(result vk.Result, getExtended bool) string {
	// From: https://www.khronos.org/registry/vulkan/specs/1.3-extensions/man/html/VkResult.html
	switch result {
	default:
		fallthrough
	case vk.Success:
		return ConditionalOperator(!getExtended, "VK_SUCCESS", "VK_SUCCESS Command successfully completed")
	case vk.NotReady:
		return ConditionalOperator(!getExtended, "VK_NOT_READY", "VK_NOT_READY A fence or query has not yet completed")
	case vk.Timeout:
		return ConditionalOperator(!getExtended, "VK_TIMEOUT", "VK_TIMEOUT A wait operation has not completed in the specified time")
	case vk.Incomplete:
		return ConditionalOperator(!getExtended, "VK_INCOMPLETE", "VK_INCOMPLETE A return array was too small for the result")
	case vk.ErrorOutOfHostMemory:
		return ConditionalOperator(!getExtended, "VK_ERROR_OUT_OF_HOST_MEMORY", "VK_ERROR_OUT_OF_HOST_MEMORY A host memory allocation has failed.")
	case vk.ErrorOutOfDeviceMemory:
		return ConditionalOperator(!getExtended, "VK_ERROR_OUT_OF_DEVICE_MEMORY", "VK_ERROR_OUT_OF_DEVICE_MEMORY A device memory allocation has failed.")
	case vk.ErrorInitializationFailed:
		return ConditionalOperator(!getExtended, "VK_ERROR_INITIALIZATION_FAILED", "VK_ERROR_INITIALIZATION_FAILED Initialization of an object could not be completed for implementation-specific reasons.")
	case vk.ErrorDeviceLost:
		return ConditionalOperator(!getExtended, "VK_ERROR_DEVICE_LOST", "VK_ERROR_DEVICE_LOST The logical or physical device has been lost.")
	case vk.ErrorMemoryMapFailed:
		return ConditionalOperator(!getExtended, "VK_ERROR_MEMORY_MAP_FAILED", "VK_ERROR_MEMORY_MAP_FAILED Mapping of a memory object has failed.")
	case vk.ErrorTooManyObjects:
		return ConditionalOperator(!getExtended, "VK_ERROR_TOO_MANY_OBJECTS", "VK_ERROR_TOO_MANY_OBJECTS Too many objects of the type have already been created.")
	case vk.ErrorFormatNotSupported:
		return ConditionalOperator(!getExtended, "VK_ERROR_FORMAT_NOT_SUPPORTED", "VK_ERROR_FORMAT_NOT_SUPPORTED A requested format is not supported on this device.")
	case vk.ErrorFragmentedPool:
		return ConditionalOperator(!getExtended, "VK_ERROR_FRAGMENTED_POOL", "VK_ERROR_FRAGMENTED_POOL A pool allocation has failed due to fragmentation of the pool's memory.")
	case vk.ErrorOutOfPoolMemory:
		return ConditionalOperator(!getExtended, "VK_ERROR_OUT_OF_POOL_MEMORY", "VK_ERROR_OUT_OF_POOL_MEMORY A pool memory allocation has failed.")
	}
}
