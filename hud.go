package main

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/reticulum/ecs/system"
)

const hudLogLines = 8

// HUD is the overlay: a status line that is always shown and a pause panel
// with the gaze log and session toggles.
type HUD struct {
	ui     *ebitenui.UI
	status *widget.Text
	log    *widget.Text
	panel  *widget.Container
	prox   *widget.Button
	shown  bool
}

// NewHUD builds the overlay. Buttons use colored nine-slices and the
// built-in basic font, so no theme assets are needed.
func NewHUD(g *Game) *HUD {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	btnImage := &widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}

	h := &HUD{}

	h.status = widget.NewText(
		widget.TextOpts.Text("", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
			HorizontalPosition: widget.AnchorLayoutPositionStart,
			VerticalPosition:   widget.AnchorLayoutPositionStart,
		})),
	)

	title := widget.NewText(
		widget.TextOpts.Text("Paused", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	h.log = widget.NewText(
		widget.TextOpts.Text("", &face, color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}),
	)

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(btnImage),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.TextPadding(&widget.Insets{Left: 12, Right: 12, Top: 4, Bottom: 4}),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		)
	}

	resumeBtn := button("Resume", func() { g.setPaused(false) })
	h.prox = button(proximityLabel(false), func() { g.toggleProximity() })
	copyBtn := button("Copy gaze log", func() { g.copyLog() })
	reloadBtn := button("Reload scene", func() { g.requestReload() })

	h.panel = widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(baseWidth/2, baseHeight/2),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	h.panel.AddChild(title)
	h.panel.AddChild(resumeBtn)
	h.panel.AddChild(h.prox)
	h.panel.AddChild(copyBtn)
	h.panel.AddChild(reloadBtn)
	h.panel.AddChild(h.log)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout(
			widget.AnchorLayoutOpts.Padding(widget.NewInsetsSimple(8)),
		)),
	)
	root.AddChild(h.status)

	h.ui = &ebitenui.UI{Container: root}
	return h
}

// Update refreshes the labels and shows or hides the pause panel.
func (h *HUD) Update(g *Game) {
	if h == nil {
		return
	}

	h.status.Label = statusLine(g)
	h.prox.SetText(proximityLabel(g.options.Proximity))
	h.log.Label = strings.Join(lastLines(g.gazeSystem.Log(), hudLogLines), "\n")

	if g.paused != h.shown {
		if g.paused {
			h.ui.Container.AddChild(h.panel)
		} else {
			h.ui.Container.RemoveChild(h.panel)
		}
		h.shown = g.paused
	}

	h.ui.Update()
}

func (h *HUD) Draw(screen *ebiten.Image) {
	if h == nil {
		return
	}
	h.ui.Draw(screen)
}

func statusLine(g *Game) string {
	target := "-"
	speed := 0.0
	mode := "inert"
	if g.session != nil {
		target = system.EntityLabel(g.world, g.session.Current())
		speed = g.session.Reticle().MoveSpeed()
		if g.session.Ready() {
			mode = g.session.Mode().String()
		}
	}
	return fmt.Sprintf("scene %s | gaze %s | reticle %.2f | ray %s | FPS %.0f\nEsc pause  P proximity  C copy log  R reload",
		g.sceneName, target, speed, mode, ebiten.ActualFPS())
}

func proximityLabel(on bool) string {
	if on {
		return "Proximity: on"
	}
	return "Proximity: off"
}

func lastLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
