package ui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pickfs/internal/capability"
	"pickfs/internal/constants"
	"pickfs/internal/picker"
)

// NewCompatibilityBanner summarizes what the host can do. Hosts below the
// full level get the warning color and their limitations.
func NewCompatibilityBanner(info picker.CompatibilityInfo) fyne.CanvasObject {
	title := widget.NewLabel(BannerText(info))
	title.TextStyle.Bold = true
	title.Wrapping = fyne.TextWrapWord

	rows := []fyne.CanvasObject{title}
	for _, l := range info.Limitations {
		rows = append(rows, widget.NewLabel("• "+l))
	}
	for _, r := range info.Recommendations {
		hint := widget.NewLabel(r)
		hint.Wrapping = fyne.TextWrapWord
		hint.TextStyle.Italic = true
		rows = append(rows, hint)
	}

	c := constants.BannerInfoColor
	if info.Level != capability.LevelFull {
		c = constants.BannerWarningColor
	}
	bg := canvas.NewRectangle(color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
	return container.NewStack(bg, container.NewPadded(container.NewVBox(rows...)))
}

// BannerText is the one-line headline of the banner.
func BannerText(info picker.CompatibilityInfo) string {
	var b strings.Builder
	b.WriteString(info.Name)
	if info.Version != "" {
		b.WriteString(" " + info.Version)
	}
	b.WriteString(": ")
	switch info.Level {
	case capability.LevelFull:
		b.WriteString("full file access")
	case capability.LevelBasic:
		b.WriteString("basic file access (files are copied into memory)")
	default:
		b.WriteString("limited file access (single files only)")
	}
	return b.String()
}
