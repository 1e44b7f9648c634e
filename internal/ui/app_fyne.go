//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"wibeboard/internal/board"
	"wibeboard/internal/connector"
	"wibeboard/internal/crash"
	"wibeboard/internal/geometry"
	applog "wibeboard/internal/log"
	"wibeboard/internal/sched"
	"wibeboard/internal/version"
)

// Run opens the board window and blocks until it is closed.
func Run(opts Options) error {
	cfg := opts.Config
	applog.Init(applog.FromConfig(cfg.Logging))
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("io.wibeboard")
	w := fyneApp.NewWindow("Wibeboard " + version.Version)
	prefs := fyneApp.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(prefs.IntWithFallback("window.width", 1200), 800)),
		float32(max(prefs.IntWithFallback("window.height", 800), 600)),
	))

	b, err := board.New(board.Options{Config: cfg, Scheduler: sched.NewLoop(fyne.Do), Tracker: opts.Tracker})
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	defer b.Close()
	defer crash.Recover(&crash.Session{State: b.Describe})

	if opts.Seed {
		if _, err := b.AddNode("", "agent:worker", "Start", geometry.Pt(160, 160)); err != nil {
			l.Warn("seed node", slog.Any("err", err))
		}
	}

	bc := NewBoardCanvas(b)
	status := widget.NewLabel("Ready")

	// Widget sidebar: selecting an entry arms it for a click-drop in edit mode.
	var tokens, labels []string
	for _, wd := range b.Registry.All() {
		for _, t := range wd.Templates {
			tokens = append(tokens, wd.Type+":"+t.Name)
			labels = append(labels, wd.Label+" / "+t.Label)
		}
	}
	sidebar := widget.NewList(
		func() int { return len(labels) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(labels[i]) },
	)
	sidebar.OnSelected = func(i widget.ListItemID) {
		bc.Arm(tokens[i])
		status.SetText("Click the canvas to drop " + labels[i])
	}

	editMode := widget.NewCheck("Edit mode", func(on bool) {
		b.SetEditMode(on)
		if !on {
			bc.Arm("")
			sidebar.UnselectAll()
		}
	})
	editMode.SetChecked(cfg.Canvas.EditMode)
	toolbar := container.NewHBox(editMode, widget.NewButton("Reset zoom", func() {
		b.Viewport.Zoom, b.Viewport.Pan = 1, geometry.Point{}
		bc.Refresh()
	}))

	ov := &overlays{b: b, bc: bc, w: w, tokens: tokens, labels: labels}
	b.OnChange = func() {
		bc.Refresh()
		ov.sync()
		status.SetText(b.Describe())
		if bc.Armed() == "" {
			sidebar.UnselectAll()
		}
	}

	split := container.NewHSplit(sidebar, bc)
	split.Offset = 0.18
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, split))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.Canvas().Focus(bc)
	w.ShowAndRun()
	l.Info("UI closed", slog.String("state", b.Describe()))
	return nil
}

// overlays shows the widget picker for a placed placeholder and the rename
// field of the radial menu as pop-ups over the canvas.
type overlays struct {
	b      *board.Board
	bc     *BoardCanvas
	w      fyne.Window
	tokens []string
	labels []string

	picker    *widget.PopUp
	pickerFor string
	rename    *widget.PopUp
}

func (o *overlays) at(p geometry.Point) fyne.Position {
	base := fyne.CurrentApp().Driver().AbsolutePositionForObject(o.bc)
	return base.Add(fyne.NewPos(p.X, p.Y))
}

func (o *overlays) sync() {
	o.syncPicker()
	o.syncRename()
}

func (o *overlays) syncPicker() {
	p, placed := o.b.Machine.Phase().(connector.Placed)
	if !placed {
		if o.picker != nil {
			o.picker.Hide()
			o.picker, o.pickerFor = nil, ""
		}
		return
	}
	if o.picker != nil && o.pickerFor == p.PlaceholderID {
		return
	}
	n, ok := o.b.Store.Get(p.PlaceholderID)
	if !ok {
		return
	}
	box := container.NewVBox()
	preset := n.PresetToken()
	for i, tok := range o.tokens {
		tok := tok
		btn := widget.NewButton(o.labels[i], func() { _ = o.b.Pick(tok) })
		if tok == preset {
			btn.Importance = widget.HighImportance
		}
		box.Add(btn)
	}
	box.Add(widget.NewButton("Cancel", func() { _ = o.b.PickerCancel() }))
	o.picker = widget.NewPopUp(container.NewVScroll(box), o.w.Canvas())
	o.picker.Resize(fyne.NewSize(200, 240))
	r := o.b.Viewport.RectToScreen(n.Rect())
	o.picker.ShowAtPosition(o.at(geometry.Pt(r.X+r.W+8, r.Y)))
	o.pickerFor = p.PlaceholderID
}

func (o *overlays) syncRename() {
	v := o.b.Menu.View()
	if v.Rename == nil {
		if o.rename != nil {
			o.rename.Hide()
			o.rename = nil
			o.w.Canvas().Focus(o.bc)
		}
		return
	}
	if o.rename != nil {
		return
	}
	e := widget.NewEntry()
	e.SetText(v.Rename.Text)
	e.OnChanged = o.b.Menu.SetRenameText
	e.OnSubmitted = func(string) { o.b.Key("Enter") }
	cancel := widget.NewButton("Cancel", func() { o.b.Key("Escape") })
	o.rename = widget.NewPopUp(container.NewBorder(nil, nil, nil, cancel, e), o.w.Canvas())
	o.rename.Resize(fyne.NewSize(220, e.MinSize().Height))
	o.rename.ShowAtPosition(o.at(v.Rename.Anchor.Sub(geometry.Pt(110, 0))))
	o.w.Canvas().Focus(e)
}
