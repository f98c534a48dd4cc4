package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var errNotInitialized = errors.New("window is not initialized")

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

// newPlatformWindow opens a GLFW window without a client API, since WebGPU drives the surface,
// and routes its input events to the parent's callbacks.
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}

	gw := &glfwWindow{parent: w, window: win, running: true}
	w.internalWindow = gw

	win.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))
	win.SetKeyCallback(gw.key)
	win.SetCursorPosCallback(gw.cursor)
	// the surface is sized in framebuffer pixels, which differ from window units on high-DPI displays
	win.SetFramebufferSizeCallback(gw.framebuffer)

	w.width, w.height = win.GetFramebufferSize()
	platformSetCursorCaptured(w, w.cursorCaptured)
	return nil
}

// key quits on Escape and forwards every other press, repeat and release.
func (gw *glfwWindow) key(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	w := gw.parent
	if key == glfw.KeyEscape && action == glfw.Press {
		gw.running = false
		gw.window.SetShouldClose(true)
		return
	}
	if action == glfw.Release {
		if w.onKeyUp != nil {
			w.onKeyUp(int(key))
		}
		return
	}
	if w.onKeyDown != nil {
		w.onKeyDown(int(key))
	}
}

func (gw *glfwWindow) cursor(_ *glfw.Window, x, y float64) {
	if gw.parent.onMouseMove != nil {
		gw.parent.onMouseMove(x, y)
	}
}

// framebuffer drops the 0x0 size a minimised window reports.
func (gw *glfwWindow) framebuffer(_ *glfw.Window, width, height int) {
	if width == 0 || height == 0 {
		return
	}
	w := gw.parent
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

func glfwOf(w *engineWindow) *glfwWindow {
	if w.internalWindow == nil {
		return nil
	}
	return w.internalWindow.(*glfwWindow)
}

// platformSetCursorCaptured disables the cursor while captured and turns on raw motion where
// the platform has it, so mouse-look ignores OS acceleration.
func platformSetCursorCaptured(w *engineWindow, captured bool) {
	gw := glfwOf(w)
	if gw == nil {
		return
	}
	if !captured {
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		return
	}
	gw.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	if glfw.RawMouseMotionSupported() {
		gw.window.SetInputMode(glfw.RawMouseMotion, glfw.True)
	}
}

func platformSetTitle(w *engineWindow, title string) {
	if gw := glfwOf(w); gw != nil {
		gw.window.SetTitle(title)
	}
}

// platformGetSurfaceDescriptor asks the wgpuglfw bridge for the native surface of the window.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw := glfwOf(w)
	if gw == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw := glfwOf(w)
	return gw != nil && gw.running && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the window and terminates GLFW.
func platformCloseWindow(w *engineWindow) error {
	gw := glfwOf(w)
	if gw == nil {
		return errNotInitialized
	}
	gw.running = false
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls pending events without blocking and reports whether the
// window is still open.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
