package game

const (
	panelW = 320
	panelH = 400
	margin = 16
)

// drawOverlay draws the model picker in the top-left corner.
func (g *Game) drawOverlay() {
	g.ui.BeginWindow("models", margin, margin, panelW, panelH, "Models")
	defer g.ui.EndWindow()

	g.ui.Row(16)
	g.ui.LabelColored("Current: "+g.controller.Current(), g.ui.Theme.TextDim)
	g.ui.Separator()

	g.ui.BeginListBox("list", 0, 240)
	for _, e := range g.overlay.Entries() {
		label := e.Model.Name
		if e.Active {
			label += "  (active)"
		}
		if g.ui.Selectable(e.Model.Name, label, e.Selected) {
			g.overlay.Select(e.Model.Name)
		}
	}
	g.ui.EndListBox()

	g.ui.Row(26)
	if g.overlay.Applying() {
		g.ui.Label("Applying...")
	} else if g.ui.Button("apply", 0, "Apply") {
		g.apply()
	}

	if status := g.overlay.Status(); status != "" {
		g.ui.Row(16)
		g.ui.LabelColored(status, g.ui.Theme.TextDim)
	}
}
