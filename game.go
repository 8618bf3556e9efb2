package main

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/entity"
	"github.com/milk9111/reticulum/ecs/render"
	"github.com/milk9111/reticulum/ecs/system"
	"github.com/milk9111/reticulum/gaze"
	"github.com/milk9111/reticulum/prefabs"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 960
	baseHeight = 720
	frameTime  = 1.0 / 60.0
)

var background = color.NRGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff}

type Game struct {
	frames int

	sceneName   string
	optionsFile string

	world      *ecs.World
	scene      *entity.Scene
	session    *gaze.Session
	options    gaze.Options
	scheduler  *ecs.Scheduler
	cameraSys  *system.CameraSystem
	gazeSystem *system.GazeSystem
	renderer   *render.RenderSystem
	watcher    *prefabs.Watcher
	hud        *HUD

	paused       bool
	reload       bool
	dragging     bool
	lastX, lastY int
	clipboardOK  bool
}

// NewGame loads the named scene. optionsFile overrides the scene's own
// options file when set. With watch on, edits under the prefab directory
// are applied while the demo runs.
func NewGame(sceneName, optionsFile string, watch bool) (*Game, error) {
	g := &Game{
		sceneName:   sceneName,
		optionsFile: optionsFile,
	}
	if err := g.loadScene(); err != nil {
		return nil, err
	}

	if watch {
		watcher, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			log.Printf("prefab watcher disabled: %v", err)
		} else {
			g.watcher = watcher
		}
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
	} else {
		g.clipboardOK = true
	}

	g.hud = NewHUD(g)
	return g, nil
}

// loadScene rebuilds the world from the scene file and binds a fresh
// session to its camera.
func (g *Game) loadScene() error {
	w := ecs.NewWorld()
	scene, err := entity.LoadScene(w, prefabs.SceneFile(g.sceneName))
	if err != nil {
		return fmt.Errorf("load scene %s: %w", g.sceneName, err)
	}

	opts := scene.Options
	if g.optionsFile != "" {
		opts, err = prefabs.LoadOptions(g.optionsFile)
		if err != nil {
			return err
		}
	}

	session := gaze.NewSession(w, nil)
	if err := scene.Register(session, w); err != nil {
		return err
	}
	if err := session.Init(scene.Camera, opts); err != nil {
		return err
	}

	g.world = w
	g.scene = scene
	g.session = session
	g.options = opts
	if g.paused {
		session.Clock().Pause()
	}

	g.cameraSys = system.NewCameraSystem(frameTime)
	if g.gazeSystem == nil {
		g.gazeSystem = system.NewGazeSystem(session)
	} else {
		g.gazeSystem.SetSession(session)
	}
	g.scheduler = ecs.NewScheduler(
		g.cameraSys,
		system.NewPhysicsSystem(frameTime),
		g.gazeSystem,
	)
	g.renderer = render.NewRenderSystem()
	return nil
}

// reinit rebinds the session with the current options. The registry and
// the scene survive.
func (g *Game) reinit() {
	if err := g.session.Init(g.scene.Camera, g.options); err != nil {
		log.Printf("reinit session: %v", err)
	}
}

func (g *Game) toggleProximity() {
	g.options.Proximity = !g.options.Proximity
	g.reinit()
}

func (g *Game) copyLog() {
	if !g.clipboardOK {
		log.Printf("clipboard unavailable, gaze log:\n%s", strings.Join(g.gazeSystem.Log(), "\n"))
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(strings.Join(g.gazeSystem.Log(), "\n")))
}

// setPaused pauses the demo together with the session clock.
func (g *Game) setPaused(paused bool) {
	g.paused = paused
	if paused {
		g.session.Clock().Pause()
	} else {
		g.session.Clock().Resume()
	}
}

func (g *Game) requestReload() {
	g.reload = true
}

func (g *Game) applyChanges() {
	if g.watcher != nil {
		for _, change := range g.watcher.Poll() {
			switch change.Kind {
			case prefabs.ChangeOptions:
				opts, err := prefabs.LoadOptions(g.optionsFileOrDefault())
				if err != nil {
					log.Printf("reload options: %v", err)
					continue
				}
				g.options = opts
				g.reinit()
			case prefabs.ChangeScript:
				n := entity.ReloadScripts(g.world, change.Path)
				log.Printf("reloaded %d script listener(s) for %s", n, change.Path)
			case prefabs.ChangeScene, prefabs.ChangePrefab:
				g.reload = true
			}
		}
	}

	if g.reload {
		g.reload = false
		if err := g.loadScene(); err != nil {
			log.Printf("reload scene: %v", err)
		}
	}
}

func (g *Game) optionsFileOrDefault() string {
	if g.optionsFile != "" {
		return g.optionsFile
	}
	if g.scene != nil && g.scene.OptionsFile != "" {
		return g.scene.OptionsFile
	}
	return prefabs.OptionsFile
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.toggleProximity()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyLog()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.requestReload()
	}

	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.dragging {
			g.cameraSys.Look(float64(x-g.lastX), float64(y-g.lastY))
		}
		g.dragging = true
	} else {
		g.dragging = false
	}
	g.lastX, g.lastY = x, y

	const keyLook = 4.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cameraSys.Look(-keyLook, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cameraSys.Look(keyLook, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cameraSys.Look(0, -keyLook)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cameraSys.Look(0, keyLook)
	}
}

func (g *Game) Update() error {
	g.frames++

	g.applyChanges()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.setPaused(!g.paused)
	}

	if !g.paused {
		g.handleInput()
		g.scheduler.Update(g.world)
		// the HUD reads the gaze log, nothing else consumes world events
		g.world.Events().Drain()
	}

	g.hud.Update(g)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.renderer.Draw(g.world, screen)
	g.hud.Draw(screen)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close stops the prefab watcher.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}
