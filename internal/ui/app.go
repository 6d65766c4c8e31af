package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp builds the window chrome around the board and blocks until the
// window closes.
func RunApp(title, status string, build func(win fyne.Window) (*BoardWidget, fyne.CanvasObject)) {
	myApp := app.New()
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1200, 800))

	board, toolbar := build(myWindow)

	statusBar := widget.NewLabel(status)
	content := container.NewBorder(toolbar, statusBar, nil, nil, board)

	myWindow.SetContent(content)
	myWindow.ShowAndRun()
}
