package tui

// renderFooter renders the key binding help at full terminal width.
// When app.showHelp is true all bindings are listed, otherwise a brief hint.
func renderFooter(app *App) string {
	app.help.ShowAll = app.showHelp
	app.help.Width = app.viewWidth()
	return StyleDim.Width(app.viewWidth()).Render(app.help.View(keys))
}
