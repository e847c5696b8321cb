package assets

import (
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
	"github.com/vireo3d/vireo/engine/resources"
)

// ShaderWatcher rebuilds shader pipelines when their compiled stages change
// on disk. Pipelines are recreated in place, so shader handles held by
// collected orders and builtins stay valid across a reload.
type ShaderWatcher struct {
	device  *vulkan.Device
	loader  *ShaderDir
	shaders map[string]resources.Ref[*resources.Shader]

	mutex    sync.RWMutex
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	isClosed bool
}

func NewShaderWatcher(device *vulkan.Device, loader *ShaderDir) (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &ShaderWatcher{
		device:   device,
		loader:   loader,
		shaders:  make(map[string]resources.Ref[*resources.Shader]),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	if err := fsWatch.Add(loader.Dir()); err != nil {
		fsWatch.Close()
		return nil, err
	}
	go w.start()
	return w, nil
}

// Register tracks a shader for reload. The name must match the one it was
// loaded under.
func (w *ShaderWatcher) Register(name string, shader resources.Ref[*resources.Shader]) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.shaders[name] = shader
}

func (w *ShaderWatcher) start() {
	for {
		select {
		case e := <-w.fsnotify.Events:
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.reload(ShaderName(e.Name))
			}

		case e := <-w.fsnotify.Errors:
			core.LogError(e.Error())

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *ShaderWatcher) reload(name string) {
	if name == "" {
		return
	}
	w.mutex.RLock()
	ref, ok := w.shaders[name]
	w.mutex.RUnlock()
	if !ok {
		return
	}

	spirv, err := w.loader.Load(name)
	if err != nil {
		core.LogError("shader %q reload failed: %v", name, err)
		return
	}

	// In-flight frames may still run the old pipeline.
	if err := w.device.WaitIdle(); err != nil {
		core.LogError("shader %q reload failed waiting for device: %v", name, err)
		return
	}
	ref.With(func(s **resources.Shader) {
		if err := (*s).Recreate(spirv); err != nil {
			core.LogError("shader %q reload failed: %v", name, err)
			return
		}
		core.LogInfo("shader %q reloaded", name)
	})
}

func (w *ShaderWatcher) Close() error {
	if w.isClosed {
		return errors.New("shader watcher already closed")
	}
	w.isClosed = true
	close(w.done)
	return nil
}
