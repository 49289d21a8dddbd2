package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	apperrors "pickfs/internal/errors"
)

// ShowMessageDialog shows an informational dialog and returns at once.
func ShowMessageDialog(parent fyne.Window, title, message string) {
	dialog.ShowInformation(title, message, parent)
}

// ShowErrorDialog shows err with its user-facing message. Capability gaps
// are informational rather than errors.
func ShowErrorDialog(parent fyne.Window, title string, err error) {
	if err == nil {
		return
	}
	if apperrors.IsCapabilityGap(err) {
		ShowMessageDialog(parent, title, apperrors.Message(err))
		return
	}
	dialog.ShowError(fmt.Errorf("%s: %s", title, apperrors.Message(err)), parent)
}
