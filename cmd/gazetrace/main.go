// Command gazetrace runs a scene headless on a mock clock and prints every
// gaze transition, one per line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/milk9111/reticulum/ecs"
	"github.com/milk9111/reticulum/ecs/component"
	"github.com/milk9111/reticulum/ecs/entity"
	"github.com/milk9111/reticulum/ecs/system"
	"github.com/milk9111/reticulum/gaze"
	"github.com/milk9111/reticulum/prefabs"
)

type config struct {
	scene       string
	options     string
	frames      int
	dt          float64
	yawRate     float64
	keepYawRate bool
	proximity   bool
	summary     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func parseFlags(args []string) (config, error) {
	cfg := config{keepYawRate: true}
	fs := flag.NewFlagSet("gazetrace", flag.ContinueOnError)
	fs.StringVar(&cfg.scene, "scene", "ring", "scene name in prefabs/ (scene_<name>.yaml, or a file name)")
	fs.StringVar(&cfg.options, "options", "", "gaze options file overriding the scene's own")
	fs.IntVar(&cfg.frames, "frames", 600, "number of frames to simulate")
	fs.Float64Var(&cfg.dt, "dt", 1.0/60.0, "seconds per frame")
	fs.Float64Var(&cfg.yawRate, "yaw-rate", 0, "camera yaw rate in radians per second (default: the scene's)")
	fs.BoolVar(&cfg.proximity, "proximity", false, "enable the proximity check")
	fs.BoolVar(&cfg.summary, "summary", true, "print per-entity event counts at the end")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "yaw-rate" {
			cfg.keepYawRate = false
		}
	})
	if cfg.frames < 0 {
		return cfg, fmt.Errorf("frames must not be negative")
	}
	if cfg.dt <= 0 {
		return cfg, fmt.Errorf("dt must be positive")
	}
	return cfg, nil
}

func run(args []string, out io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}

	w := ecs.NewWorld()
	scene, err := entity.LoadScene(w, prefabs.SceneFile(cfg.scene))
	if err != nil {
		return err
	}

	opts := scene.Options
	if cfg.options != "" {
		if opts, err = prefabs.LoadOptions(cfg.options); err != nil {
			return err
		}
	}
	if cfg.proximity {
		opts.Proximity = true
	}

	if !cfg.keepYawRate {
		if rig, ok := ecs.Get(w, scene.Camera, component.CameraRigComponent.Kind()); ok {
			rig.YawRate = cfg.yawRate
		}
	}

	mock := gaze.NewMockTimeProvider(time.Unix(0, 0))
	session := gaze.NewSession(w, gaze.NewClock(mock))
	if err := scene.Register(session, w); err != nil {
		return err
	}
	if err := session.Init(scene.Camera, opts); err != nil {
		return err
	}

	gazeSystem := system.NewGazeSystem(session)
	scheduler := ecs.NewScheduler(
		system.NewCameraSystem(cfg.dt),
		system.NewPhysicsSystem(cfg.dt),
		gazeSystem,
	)

	fmt.Fprintf(out, "# scene %s, %d gazeable, ray %s, %d frames of %.4fs\n",
		scene.Name, session.Registry().Len(), session.Mode(), cfg.frames, cfg.dt)

	counts := make(map[string]map[string]int)
	for frame := 0; frame < cfg.frames; frame++ {
		mock.AdvanceSeconds(cfg.dt)
		scheduler.Update(w)
		for _, evt := range w.Events().Drain() {
			fmt.Fprintln(out, system.FormatGazeEvent(w, evt))
			payload, ok := evt.Data.(gaze.GazeEvent)
			if !ok {
				continue
			}
			label := system.EntityLabel(w, payload.Entity)
			if counts[label] == nil {
				counts[label] = make(map[string]int)
			}
			counts[label][evt.Type]++
		}
	}

	if cfg.summary {
		writeSummary(out, counts)
	}
	return nil
}

func writeSummary(out io.Writer, counts map[string]map[string]int) {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	fmt.Fprintln(out, "# summary")
	for _, label := range labels {
		c := counts[label]
		fmt.Fprintf(out, "# %-16s over=%d out=%d long=%d\n",
			label, c[gaze.EventGazeOver], c[gaze.EventGazeOut], c[gaze.EventGazeLong])
	}
}
