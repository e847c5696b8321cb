package core

import (
	"errors"
)

var (
	// ErrOutOfDeviceMemory is returned when a GPU allocation fails. Fatal to
	// the operation that required the allocation.
	ErrOutOfDeviceMemory = errors.New("out of device memory")

	// ErrInvalidHandle is returned when a resource handle no longer resolves
	// to a live entry. Recovered locally by skipping the dependent work.
	ErrInvalidHandle = errors.New("invalid resource handle")

	// ErrBufferTooSmall is returned when a write exceeds a buffer's allocated
	// capacity without a prior resize. Programmer error.
	ErrBufferTooSmall = errors.New("write exceeds buffer capacity")

	// ErrEmptyDefaultImageSlot is returned when the image uniform needs to
	// fill empty slots but slot 0 holds no image to repeat.
	ErrEmptyDefaultImageSlot = errors.New("image slot 0 is empty")
)
