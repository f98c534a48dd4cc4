package main

import (
	"log"
	"os"
	"time"

	"github.com/Carmen-Shannon/vtrace-go/config"
	"github.com/Carmen-Shannon/vtrace-go/engine"
	"github.com/Carmen-Shannon/vtrace-go/engine/camera"
	"github.com/Carmen-Shannon/vtrace-go/engine/pager"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/vtrace-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/vtrace-go/engine/scene"
	"github.com/Carmen-Shannon/vtrace-go/engine/terrain"
	"github.com/Carmen-Shannon/vtrace-go/engine/window"
	"github.com/Carmen-Shannon/vtrace-go/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

// configEnv names the variable holding the optional config file path.
const configEnv = config.EnvPrefix + "CONFIG"

func main() {
	cfg, err := config.Load(os.Getenv(configEnv))
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}

	// ── Window + Engine ─────────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithCursorCaptured(cfg.Window.CaptureCursor),
	)

	eng := engine.NewEngine(
		engine.WithProfiling(cfg.Profiler.Enabled),
		engine.WithProfilerInterval(time.Duration(cfg.Profiler.Interval*float64(time.Second))),
		engine.WithTickRate(cfg.World.TickRate),
		engine.WithRenderFrameLimit(cfg.Renderer.FrameLimit),
		engine.WithWindow(win),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	presentMode := renderer.PresentModeVSync
	if !cfg.Renderer.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.SoftwareFallback),
	)
	defer r.Release()

	// ── Shaders + Pipeline ──────────────────────────────────────────────
	vs, err := shader.NewShader("raymarch_vert", shader.ShaderTypeVertex, shader.RaymarchSource)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	fs, err := shader.NewShader("raymarch_frag", shader.ShaderTypeFragment, shader.RaymarchSource)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	// front faces are culled so the ray still enters a chunk when the camera is inside its cube
	if err := r.RegisterPipelines(pipeline.NewPipeline(scene.DefaultPipelineKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeFront),
	)); err != nil {
		log.Fatalf("[Main] %v", err)
	}

	// ── Camera ──────────────────────────────────────────────────────────
	ctrl := camera.NewCameraController(
		camera.WithSpeed(cfg.World.Speed),
		camera.WithSensitivity(cfg.World.Sensitivity),
	)
	cam := camera.NewCamera(
		camera.WithFov(cfg.Renderer.FovRadians()),
		camera.WithAspect(float32(win.Width())/float32(win.Height())),
		camera.WithClipRange(cfg.Renderer.Near, cfg.Renderer.Far),
		camera.WithController(ctrl),
	)

	// ── Terrain + World ─────────────────────────────────────────────────
	gen := terrain.NewGenerator(cfg.Terrain.Seed,
		terrain.WithRadius(cfg.Terrain.Radius),
		terrain.WithShellDepth(cfg.Terrain.ShellDepth),
		terrain.WithFrequency(cfg.Terrain.Frequency),
		terrain.WithBillow(terrain.BillowParams{
			Octaves:     cfg.Terrain.Octaves,
			Persistence: cfg.Terrain.Persistence,
			Lacunarity:  cfg.Terrain.Lacunarity,
		}),
	)

	pagerOpts := []pager.PagerBuilderOption{}
	if cfg.World.Workers > 0 {
		pagerOpts = append(pagerOpts, pager.WithWorkers(cfg.World.Workers))
	}
	w := world.NewWorld(ctrl, pager.NewPager(gen, pagerOpts...),
		world.WithViewDistance(cfg.World.ViewDistance),
	)

	// ── Scene ───────────────────────────────────────────────────────────
	sc := scene.NewScene("planetoid", cam, r, w,
		scene.WithActive(true),
		scene.WithCullingDisabled(cfg.World.DisableCulling),
	)
	eng.AddScene(0, sc)

	log.Printf("[Main] seed %d, radius %d, view distance %d chunks",
		cfg.Terrain.Seed, cfg.Terrain.Radius, cfg.World.ViewDistance)

	eng.Run()
}
