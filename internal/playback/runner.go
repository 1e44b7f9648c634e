/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"wibeboard/internal/board"
	"wibeboard/internal/config"
	"wibeboard/internal/connector"
	"wibeboard/internal/events"
	"wibeboard/internal/geometry"
	wblog "wibeboard/internal/log"
	"wibeboard/internal/registry"
	"wibeboard/internal/sched"
	"wibeboard/internal/telemetry"
)

// ErrExpectation is wrapped by failed expect steps.
var ErrExpectation = errors.New("expectation failed")

// Record is the outcome of one step.
type Record struct {
	Index int
	Op    string
	Arg   string
	State string
	Err   error
}

// Options configure a Runner.
type Options struct {
	Config   config.AppConfig
	Registry *registry.Registry
	Tracker  telemetry.Tracker
}

// Runner executes one script against its own board.
type Runner struct {
	Script *Script
	Board  *board.Board
	Clock  *sched.Manual

	// OnStep, if set, receives every record as it is produced.
	OnStep func(Record)

	longPress time.Duration
	hold      time.Duration
	seq       int
	log       *slog.Logger
}

// NewRunner builds a fresh board for s and seeds its nodes.
func NewRunner(s *Script, opts Options) (*Runner, error) {
	cfg := opts.Config
	if cfg.ConfigVersion == 0 {
		cfg = config.Defaults()
	}
	s.Settings.apply(&cfg)
	r := &Runner{
		Script:    s,
		Clock:     sched.NewManual(time.Time{}),
		longPress: cfg.Interaction.LongPress(),
		hold:      cfg.Interaction.Hold() + cfg.Interaction.Poll(),
		log:       wblog.WithComponent("playback").With(slog.String("script", s.Name)),
	}
	b, err := board.New(board.Options{
		Config:    cfg,
		Registry:  opts.Registry,
		Scheduler: r.Clock,
		Tracker:   opts.Tracker,
		NewNodeID: r.nextID,
	})
	if err != nil {
		return nil, err
	}
	r.Board = b
	for _, n := range s.Nodes {
		if _, err := b.AddNode(n.ID, n.Token, n.Label, n.At.geo()); err != nil {
			b.Close()
			return nil, fmt.Errorf("seed %q: %w", n.ID, err)
		}
	}
	return r, nil
}

// nextID gives created nodes stable ids so transcripts are reproducible.
// Ids taken by seeded nodes are skipped.
func (r *Runner) nextID() string {
	for {
		r.seq++
		id := fmt.Sprintf("n%d", r.seq)
		if r.Board == nil || !r.Board.Graph.Has(id) {
			return id
		}
	}
}

// Run executes every step in order and stops at the first error. It returns
// the records produced so far.
func (r *Runner) Run(ctx context.Context) ([]Record, error) {
	var out []Record
	for i, st := range r.Script.Steps {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		err := ops[st.Op](r, &st.arg)
		if err != nil {
			err = fmt.Errorf("step %d (%s, line %d): %w", i+1, st.Op, st.Line, err)
		}
		rec := Record{Index: i + 1, Op: st.Op, Arg: st.Arg(), State: r.Board.Describe(), Err: err}
		out = append(out, rec)
		if r.OnStep != nil {
			r.OnStep(rec)
		}
		if err != nil {
			r.log.Warn("step failed", slog.Int("step", i+1), slog.Any("err", err))
			return out, err
		}
	}
	r.log.Debug("script finished", slog.Int("steps", len(out)))
	return out, nil
}

// Close releases the board.
func (r *Runner) Close() { r.Board.Close() }

// node returns the screen rectangle of a host node.
func (r *Runner) node(id string) (geometry.Rect, error) {
	n, ok := r.Board.Graph.Node(id)
	if !ok {
		return geometry.Rect{}, fmt.Errorf("no node %q", id)
	}
	return r.Board.Viewport.RectToScreen(n.Rect()), nil
}

// button returns the screen center of a visible menu button.
func (r *Runner) button(id string) (geometry.Point, error) {
	for _, b := range r.Board.Menu.View().Buttons {
		if b.ID == id {
			return b.Center, nil
		}
	}
	return geometry.Point{}, fmt.Errorf("menu button %q is not visible", id)
}

type opFunc func(r *Runner, arg *yaml.Node) error

var ops map[string]opFunc

func init() {
	ops = map[string]opFunc{
		"down":          pointAt(func(r *Runner, p geometry.Point) { r.Board.PointerDown(p, events.Mouse, events.ButtonPrimary) }),
		"up":            pointAt(func(r *Runner, p geometry.Point) { r.Board.PointerUp(p, events.Mouse) }),
		"move":          pointAt(func(r *Runner, p geometry.Point) { r.Board.PointerMove(p, events.Mouse) }),
		"click":         pointAt(func(r *Runner, p geometry.Point) { r.Board.Click(p) }),
		"context_menu":  pointAt(func(r *Runner, p geometry.Point) { r.Board.ContextMenu(p) }),
		"touch_down":    pointAt(func(r *Runner, p geometry.Point) { r.Board.PointerDown(p, events.Touch, events.ButtonPrimary) }),
		"touch_move":    pointAt(func(r *Runner, p geometry.Point) { r.Board.PointerMove(p, events.Touch) }),
		"touch_up":      pointAt(func(r *Runner, p geometry.Point) { r.Board.PointerUp(p, events.Touch) }),
		"pan":           pointAt(func(r *Runner, p geometry.Point) { r.Board.PanBy(p) }),
		"key":           opKey,
		"wait":          opWait,
		"handle_down":   opHandleDown,
		"select":        opSelect,
		"long_press":    opLongPress,
		"zoom":          opZoom,
		"drop":          opDrop,
		"pick":          opPick,
		"picker_hover":  opPickerHover,
		"picker_resize": opPickerResize,
		"picker_cancel": func(r *Runner, _ *yaml.Node) error { return r.Board.PickerCancel() },
		"menu_click":    opMenuClick,
		"menu_hover":    opMenuHover,
		"menu_hold":     opMenuHold,
		"menu_swipe":    opMenuSwipe,
		"rename":        opRename,
		"expect":        opExpect,
	}
}

func pointAt(fn func(r *Runner, p geometry.Point)) opFunc {
	return func(r *Runner, arg *yaml.Node) error {
		var p Point
		if err := arg.Decode(&p); err != nil {
			return err
		}
		fn(r, p.geo())
		return nil
	}
}

func opKey(r *Runner, arg *yaml.Node) error {
	if arg.Value == "" {
		return errors.New("key needs a key name")
	}
	r.Board.Key(arg.Value)
	return nil
}

func opWait(r *Runner, arg *yaml.Node) error {
	var ms int
	if err := arg.Decode(&ms); err != nil || ms < 0 {
		return fmt.Errorf("wait needs milliseconds, got %q", arg.Value)
	}
	r.Clock.Advance(time.Duration(ms) * time.Millisecond)
	return nil
}

// opHandleDown presses on a node's output handle.
func opHandleDown(r *Runner, arg *yaml.Node) error {
	n, ok := r.Board.Graph.Node(arg.Value)
	if !ok {
		return fmt.Errorf("no node %q", arg.Value)
	}
	r.Board.PointerDown(r.Board.Viewport.LogicalToScreen(n.OutputHandle()), events.Mouse, events.ButtonPrimary)
	return nil
}

// opSelect clicks the center of a node.
func opSelect(r *Runner, arg *yaml.Node) error {
	rect, err := r.node(arg.Value)
	if err != nil {
		return err
	}
	c := rect.Center()
	r.Board.PointerDown(c, events.Mouse, events.ButtonPrimary)
	r.Board.PointerUp(c, events.Mouse)
	r.Board.Click(c)
	return nil
}

// opLongPress holds a touch on a node past the long-press delay, then lifts.
func opLongPress(r *Runner, arg *yaml.Node) error {
	rect, err := r.node(arg.Value)
	if err != nil {
		return err
	}
	c := rect.Center()
	r.Board.PointerDown(c, events.Touch, events.ButtonPrimary)
	r.Clock.Advance(r.longPress)
	r.Board.PointerUp(c, events.Touch)
	r.Board.Click(c)
	return nil
}

func opZoom(r *Runner, arg *yaml.Node) error {
	var z struct {
		At     Point   `yaml:"at"`
		Factor float32 `yaml:"factor"`
	}
	if err := arg.Decode(&z); err != nil {
		return err
	}
	if z.Factor <= 0 {
		return errors.New("zoom factor must be positive")
	}
	r.Board.ZoomAt(z.At.geo(), z.Factor)
	return nil
}

// opDrop drags a widget from the picker sidebar onto the canvas.
func opDrop(r *Runner, arg *yaml.Node) error {
	var d struct {
		At    Point  `yaml:"at"`
		Token string `yaml:"token"`
		Raw   string `yaml:"raw"`
	}
	if err := arg.Decode(&d); err != nil {
		return err
	}
	data := d.Raw
	if data == "" {
		w, tmpl, ok := r.Board.Registry.Resolve(d.Token)
		if !ok {
			return fmt.Errorf("unknown widget %q", d.Token)
		}
		var err error
		if data, err = connector.EncodePayload(connector.Payload{Type: w.Type, Template: tmpl}); err != nil {
			return err
		}
	}
	transfer := map[string]string{connector.PayloadKey: data}
	p := d.At.geo()
	if r.Board.DragOver(p, transfer) {
		r.Board.Drop(p, transfer)
	}
	return nil
}

func opPick(r *Runner, arg *yaml.Node) error { return r.Board.Pick(arg.Value) }

func opPickerHover(r *Runner, arg *yaml.Node) error { return r.Board.PickerHover(arg.Value) }

func opPickerResize(r *Runner, arg *yaml.Node) error {
	var cr []int
	if err := arg.Decode(&cr); err != nil || len(cr) != 2 {
		return errors.New("picker_resize needs [cols, rows]")
	}
	return r.Board.PickerResize(cr[0], cr[1])
}

func opMenuClick(r *Runner, arg *yaml.Node) error {
	c, err := r.button(arg.Value)
	if err != nil {
		return err
	}
	r.Board.PointerDown(c, events.Mouse, events.ButtonPrimary)
	r.Board.PointerUp(c, events.Mouse)
	r.Board.Click(c)
	return nil
}

func opMenuHover(r *Runner, arg *yaml.Node) error {
	c, err := r.button(arg.Value)
	if err != nil {
		return err
	}
	r.Board.PointerMove(c, events.Mouse)
	return nil
}

// opMenuHold presses a button for ms milliseconds (default: the hold
// duration plus one poll) and releases it.
func opMenuHold(r *Runner, arg *yaml.Node) error {
	var h struct {
		Button string `yaml:"button"`
		Ms     int    `yaml:"ms"`
	}
	if arg.Kind == yaml.ScalarNode {
		h.Button = arg.Value
	} else if err := arg.Decode(&h); err != nil {
		return err
	}
	c, err := r.button(h.Button)
	if err != nil {
		return err
	}
	d := time.Duration(h.Ms) * time.Millisecond
	if h.Ms <= 0 {
		d = r.hold
	}
	r.Board.PointerMove(c, events.Mouse)
	r.Board.PointerDown(c, events.Mouse, events.ButtonPrimary)
	r.Clock.Advance(d)
	r.Board.PointerUp(c, events.Mouse)
	return nil
}

// opMenuSwipe drags a finger through the named buttons and lifts on the last.
// Each button is located after the previous move, since moves re-layout.
func opMenuSwipe(r *Runner, arg *yaml.Node) error {
	var path []string
	if err := arg.Decode(&path); err != nil || len(path) == 0 {
		return errors.New("menu_swipe needs a list of button ids")
	}
	var at geometry.Point
	for i, id := range path {
		c, err := r.button(id)
		if err != nil {
			if i > 0 {
				r.Board.PointerCancel(at)
			}
			return err
		}
		at = c
		if i == 0 {
			r.Board.PointerDown(c, events.Touch, events.ButtonPrimary)
			continue
		}
		r.Board.PointerMove(c, events.Touch)
	}
	r.Board.PointerUp(at, events.Touch)
	return nil
}

// opRename types into the open rename field and presses Enter.
func opRename(r *Runner, arg *yaml.Node) error {
	if !r.Board.Menu.Renaming() {
		return errors.New("rename field is not open")
	}
	r.Board.Menu.SetRenameText(arg.Value)
	r.Board.Key("Enter")
	return nil
}

// Expect asserts on the board state. Unset fields are not checked.
type Expect struct {
	Phase        string   `yaml:"phase"`
	Nodes        *int     `yaml:"nodes"`
	Edges        *int     `yaml:"edges"`
	Placeholders *int     `yaml:"placeholders"`
	Menu         *string  `yaml:"menu"`
	Expanded     *string  `yaml:"expanded"`
	Labels       []string `yaml:"labels"`
}

func opExpect(r *Runner, arg *yaml.Node) error {
	var e Expect
	if err := arg.Decode(&e); err != nil {
		return err
	}
	b := r.Board
	var errs []error
	check := func(what string, want, got any) {
		if want != got {
			errs = append(errs, fmt.Errorf("%w: %s = %v, want %v", ErrExpectation, what, got, want))
		}
	}
	if e.Phase != "" {
		check("phase", e.Phase, b.Machine.Phase().Type().String())
	}
	if e.Nodes != nil {
		check("nodes", *e.Nodes, len(b.Graph.Nodes()))
	}
	if e.Edges != nil {
		check("edges", *e.Edges, len(b.Graph.Edges()))
	}
	if e.Placeholders != nil {
		check("placeholders", *e.Placeholders, b.Store.Len())
	}
	if e.Menu != nil {
		got := "-"
		if b.Menu.Visible() {
			got = b.Menu.NodeID()
		}
		check("menu", *e.Menu, got)
	}
	if e.Expanded != nil {
		check("expanded", *e.Expanded, b.Menu.Expansion())
	}
	if e.Labels != nil {
		var got []string
		for _, n := range b.Graph.Nodes() {
			got = append(got, n.Label)
		}
		check("labels", fmt.Sprint(e.Labels), fmt.Sprint(got))
	}
	return errors.Join(errs...)
}
