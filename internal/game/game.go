// Package game implements the viewer's frame loop: it spawns the host
// character, drives the model swap controller and draws the picker overlay.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/config"
	"github.com/Faultbox/skinswap/internal/engine/camera"
	"github.com/Faultbox/skinswap/internal/engine/capture"
	"github.com/Faultbox/skinswap/internal/engine/input"
	"github.com/Faultbox/skinswap/internal/engine/lighting"
	"github.com/Faultbox/skinswap/internal/engine/renderer"
	"github.com/Faultbox/skinswap/internal/engine/scene"
	"github.com/Faultbox/skinswap/internal/engine/texture"
	"github.com/Faultbox/skinswap/internal/engine/ui2d"
	"github.com/Faultbox/skinswap/internal/engine/window"
	"github.com/Faultbox/skinswap/internal/importer"
	"github.com/Faultbox/skinswap/internal/logger"
	"github.com/Faultbox/skinswap/internal/registry"
	"github.com/Faultbox/skinswap/internal/remap"
	"github.com/Faultbox/skinswap/internal/swap"
	"github.com/Faultbox/skinswap/internal/ui"
)

// Title is the window title.
const Title = "skinswap"

// hostName names the spawned character's root node.
const hostName = "Character"

// Game is the main viewer instance.
type Game struct {
	store   *config.Store
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	ui       *ui2d.Context
	camera   *camera.OrbitCamera

	host       *scene.Node
	models     *registry.Registry
	controller *swap.Controller
	overlay    *ui.Overlay
	toggleKey  sdl.Scancode

	capture     *capture.Capture
	captureKey  sdl.Scancode
	wantCapture bool
}

// New creates the window, loads the host character and applies the
// persisted model selection.
func New(store *config.Store, log *zap.Logger) (*Game, error) {
	cfg := store.Config()
	g := &Game{
		store: store,
		log:   logger.OrNamed(log, "game"),
	}

	g.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("host", cfg.Host.Asset),
		zap.String("models", cfg.Models.Dir),
	)

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := g.window.GetSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:  width,
		Height: height,
		Sun:    lighting.DefaultSun(),
	}, logger.Named("renderer"))
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.ui, err = ui2d.NewContext(width, height)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create ui: %w", err)
	}

	g.input = input.New()
	g.toggleKey = g.resolveKey(cfg.Input.ToggleOverlay, config.Default().Input.ToggleOverlay)
	g.captureKey = g.resolveKey(cfg.Input.Screenshot, config.Default().Input.Screenshot)
	g.capture = capture.New(cfg.Graphics.ScreenshotDir, Title)

	imp := importer.New(importer.Options{
		Scale:             cfg.Import.Scale,
		ConvertHandedness: cfg.Import.ConvertHandedness,
	}, logger.Named("importer"))

	g.host, err = imp.LoadHost(cfg.Host.Asset, hostName)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to load host character: %w", err)
	}
	bounds, err := uploadHost(g.host, g.renderer)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to upload host character: %w", err)
	}

	g.camera = camera.NewOrbitCamera()
	g.camera.FitToBounds(bounds)

	g.models = registry.New(cfg.Models.Dir, logger.Named("registry"))
	if err := g.models.Scan(); err != nil {
		g.log.Warn("model scan failed", zap.Error(err))
	}

	g.controller = swap.New(swap.Options{
		Models:   g.models,
		Importer: imp,
		Remapper: remap.New(cfg.Import.MaxFallbackReports, logger.Named("remap")),
		Textures: texture.NewLoader(cfg.Texture.MaxSize),
		Backend:  g.renderer,
		Log:      logger.Named("swap"),
	})

	selected := store.SelectedModel()
	if err := g.controller.Attach(g.host, selected); err != nil {
		g.log.Warn("saved model not applied, keeping default",
			zap.String("model", selected),
			zap.Error(err),
		)
	}

	g.overlay = ui.New(g.models, g.controller, store, logger.Named("overlay"))

	g.log.Info("viewer initialized", zap.String("model", g.controller.Current()))
	return g, nil
}

// resolveKey parses a configured hotkey, falling back to the default
// binding.
func (g *Game) resolveKey(name, fallback string) sdl.Scancode {
	key, err := input.ParseKey(name)
	if err == nil {
		return key
	}
	g.log.Warn("invalid hotkey, using default",
		zap.String("key", name),
		zap.String("default", fallback),
		zap.Error(err),
	)
	key, _ = input.ParseKey(fallback)
	return key
}

// Run starts the main loop.
func (g *Game) Run() error {
	g.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting frame loop")

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		// 2. Render
		g.render()

		// 3. Present (swap buffers)
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	in := g.ui.Input()
	mx, my := g.input.MousePosition()
	in.MouseX, in.MouseY = float32(mx), float32(my)
	in.MouseLeftDown = g.input.IsMouseDown(sdl.BUTTON_LEFT)

	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.renderer.Resize(event.Width, event.Height)
			g.ui.Resize(event.Width, event.Height)

		case input.EventKeyDown:
			if !event.Repeat {
				g.handleKey(event.Key)
			}

		case input.EventMouseMove:
			if g.input.IsMouseDown(sdl.BUTTON_LEFT) && !g.ui.MouseOverUI() {
				g.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
			}

		case input.EventMouseWheel:
			if g.ui.MouseOverUI() {
				in.ScrollY += event.Wheel
			} else {
				g.camera.HandleZoom(event.Wheel)
			}
		}
	}
}

func (g *Game) handleKey(key sdl.Scancode) {
	if key == g.captureKey {
		g.wantCapture = true
		return
	}
	if key == g.toggleKey {
		g.overlay.Toggle()
		if g.overlay.Visible() {
			g.log.Debug("overlay shown", zap.Int("models", len(g.overlay.Entries())))
		}
		return
	}

	if !g.overlay.Visible() {
		if key == sdl.SCANCODE_ESCAPE {
			g.running = false
		}
		return
	}

	switch key {
	case sdl.SCANCODE_ESCAPE:
		g.overlay.Toggle()
	case sdl.SCANCODE_UP:
		g.overlay.Move(-1)
	case sdl.SCANCODE_DOWN:
		g.overlay.Move(1)
	case sdl.SCANCODE_RETURN, sdl.SCANCODE_KP_ENTER:
		g.apply()
	}
}

// apply applies the overlay's selection. Failures keep the current model
// and are shown in the panel status line.
func (g *Game) apply() {
	err := g.overlay.Apply()
	switch {
	case err == nil:
		g.log.Info("model applied",
			zap.String("model", g.controller.Current()),
			zap.Int("alive", g.controller.Stats().Alive()),
		)
	case errors.Is(err, swap.ErrBusy):
		g.log.Debug("apply ignored while busy")
	default:
		g.log.Warn("apply failed",
			zap.String("model", g.overlay.Selected()),
			zap.String("current", g.controller.Current()),
			zap.Error(err),
		)
	}
}

func (g *Game) render() {
	g.renderer.Begin()
	view := g.camera.ViewMatrix()
	proj := g.camera.ProjectionMatrix(g.renderer.Aspect())
	g.renderer.DrawScene(g.host, view, proj)
	g.renderer.End()

	// Captured before the overlay is drawn
	if g.wantCapture {
		g.wantCapture = false
		g.saveScreenshot()
	}

	g.ui.Begin()
	if g.overlay.Visible() {
		g.drawOverlay()
	}
	g.ui.End()
}

func (g *Game) saveScreenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.capture.SavePixels(pixels, w, h, g.controller.Current())
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up viewer resources.
func (g *Game) Close() {
	g.log.Info("closing viewer")

	if g.controller != nil {
		g.controller.Detach()
	}
	if g.host != nil {
		g.host.Destroy()
	}
	if g.ui != nil {
		g.ui.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
