/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"log/slog"

	"wibeboard/internal/connector"
	"wibeboard/internal/telemetry"
)

// connectorHost applies connector results to the graph.
type connectorHost struct{ b *Board }

func (h connectorHost) NodeCreated(ev connector.NodeCreated) {
	b := h.b
	if err := b.Graph.Created(ev.NodeID, ev.WidgetType, ev.Template, ev.Rect, ev.SourceNodeID); err != nil {
		b.log.Warn("created node rejected", slog.String("node", ev.NodeID), slog.Any("err", err))
		b.changed()
		return
	}
	telemetry.NodeCreated(b.tracker, ev.WidgetType, ev.Template.Name, ev.SourceNodeID != "")
	b.log.Info("node created", slog.String("node", ev.NodeID), slog.String("type", ev.WidgetType), slog.String("template", ev.Template.Name))
	b.changed()
}

func (h connectorHost) NodeCancelled(placeholderID string) {
	telemetry.NodeCancelled(h.b.tracker)
	h.b.log.Debug("placeholder cancelled", slog.String("placeholder", placeholderID))
	h.b.changed()
}

func (h connectorHost) MenuToggled(nodeID string, visible bool) {
	b := h.b
	if !visible {
		b.hover, b.pressed, b.menuTouch = "", "", false
		b.Menu.Hide()
		return
	}
	n, ok := b.Graph.Node(nodeID)
	if !ok {
		return
	}
	b.Menu.Show(nodeID, n.Label)
}

// menuHost applies radial menu actions to the graph. Every action except
// rename closes the menu.
type menuHost struct{ b *Board }

func (h menuHost) done(role, action string, err error) {
	b := h.b
	if err != nil {
		b.log.Warn("menu action failed", slog.String("role", role), slog.String("action", action), slog.Any("err", err))
	} else {
		telemetry.MenuAction(b.tracker, role, action)
	}
	b.changed()
}

func (h menuHost) AddAfter(nodeID, token string) {
	_, err := h.b.Graph.AddAfter(nodeID, token)
	h.b.Machine.HideMenu()
	h.done("after", token, err)
}

func (h menuHost) AddBefore(nodeID, token string) {
	_, err := h.b.Graph.AddBefore(nodeID, token)
	h.b.Machine.HideMenu()
	h.done("before", token, err)
}

func (h menuHost) Configure(nodeID, action string) {
	err := h.b.Graph.Configure(nodeID, action)
	h.b.Machine.HideMenu()
	h.done("configure", action, err)
}

func (h menuHost) Rename(nodeID, label string) {
	h.done("rename", "", h.b.Graph.Rename(nodeID, label))
}

func (h menuHost) Dismiss() {
	h.b.Machine.HideMenu()
	h.b.changed()
}
