package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"pickfs/internal/jobs"
)

// JobsDialog shows the pick queue and allows cancel.
type JobsDialog struct {
	manager     *jobs.Manager
	list        *widget.List
	bind        binding.StringList
	items       []jobs.JobSnapshot
	selectedIdx int
	selectedID  int64
	details     *widget.Label
	dialog      dialog.Dialog
}

func NewJobsDialog(m *jobs.Manager) *JobsDialog {
	jd := &JobsDialog{manager: m, selectedIdx: -1}
	jd.bind = binding.NewStringList()
	jd.list = widget.NewListWithData(jd.bind,
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(item binding.DataItem, obj fyne.CanvasObject) {
			s, _ := item.(binding.String).Get()
			if l, ok := obj.(*widget.Label); ok {
				l.SetText(s)
			}
		},
	)
	jd.details = widget.NewLabel("")
	jd.details.Wrapping = fyne.TextWrapWord
	jd.list.OnSelected = func(id widget.ListItemID) {
		jd.selectedIdx = int(id)
		if id >= 0 && int(id) < len(jd.items) {
			jd.selectedID = jd.items[id].ID
		}
		jd.updateDetails()
	}
	// subscribe once; refresh on UI thread
	m.Subscribe(func() { fyne.Do(jd.refresh) })
	return jd
}

func (jd *JobsDialog) ShowDialog(parent fyne.Window) {
	cancelBtn := widget.NewButton("Cancel Selected", func() {
		if jd.selectedID != 0 {
			_ = jd.manager.Cancel(jd.selectedID)
			jd.refresh()
		}
	})
	closeBtn := widget.NewButton("Close", func() {
		if jd.dialog != nil {
			jd.dialog.Hide()
		}
	})

	header := widget.NewLabel("Pick Queue")
	header.TextStyle.Bold = true
	split := container.NewVSplit(jd.list, container.NewVScroll(jd.details))
	split.Offset = 0.7
	bottom := container.NewHBox(layout.NewSpacer(), cancelBtn, closeBtn)
	content := container.NewBorder(header, bottom, nil, nil, split)

	jd.dialog = dialog.NewCustomWithoutButtons("Jobs", content, parent)
	jd.dialog.Resize(fyne.NewSize(620, 420))
	jd.dialog.Show()
	jd.refresh()
}

func (jd *JobsDialog) refresh() {
	snapshots := jd.manager.List()
	jd.items = snapshots
	lines := make([]string, len(snapshots))
	for i, it := range snapshots {
		lines[i] = JobLine(it)
	}
	jd.bind.Set(lines)
	jd.list.Refresh()
	// Keep selection stable
	if jd.selectedIdx >= 0 && jd.selectedIdx < len(lines) {
		jd.list.Select(widget.ListItemID(jd.selectedIdx))
	} else if len(lines) > 0 {
		jd.list.Select(0)
	}
	jd.updateDetails()
}

// JobLine formats one row of the job list.
func JobLine(it jobs.JobSnapshot) string {
	when := it.EnqueuedAt
	if it.Status == jobs.StatusRunning && !it.StartedAt.IsZero() {
		when = it.StartedAt
	}
	line := fmt.Sprintf("[%s] %s", when.Format("15:04:05"), string(it.Type))
	if it.Label != "" {
		line += " " + it.Label
	}
	line += "  (" + string(it.Status) + ")"
	if it.Status == jobs.StatusFailed && it.Error != "" {
		line += "  ERROR"
	}
	return line
}

func (jd *JobsDialog) updateDetails() {
	if jd.selectedIdx < 0 || jd.selectedIdx >= len(jd.items) {
		jd.details.SetText("")
		return
	}
	it := jd.items[jd.selectedIdx]
	b := &strings.Builder{}
	fmt.Fprintf(b, "Job #%d %s\nStatus: %s\n", it.ID, string(it.Type), string(it.Status))
	if it.Message != "" {
		fmt.Fprintf(b, "%s\n", it.Message)
	}
	if it.Status == jobs.StatusFailed && it.Error != "" {
		fmt.Fprintf(b, "Error: %s\n", it.Error)
	}
	jd.details.SetText(b.String())
}
