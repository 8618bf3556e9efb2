package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/reticulum/prefabs"
)

func main() {
	sceneName := flag.String("scene", "ring", "scene name in prefabs/ (scene_<name>.yaml, or a file name)")
	optionsFile := flag.String("options", "", "gaze options file overriding the scene's own")
	watch := flag.Bool("watch", true, "reload prefabs, options and scripts when they change on disk")
	list := flag.Bool("list", false, "list the available scenes and exit")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *list {
		fmt.Println(strings.Join(prefabs.Scenes(), "\n"))
		os.Exit(0)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("reticulum")

	game, err := NewGame(*sceneName, *optionsFile, *watch)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
