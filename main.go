package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"pickfs/internal/adapter"
	"pickfs/internal/capability"
	"pickfs/internal/config"
	"pickfs/internal/constants"
	apperrors "pickfs/internal/errors"
	"pickfs/internal/fileinfo"
	"pickfs/internal/fynehost"
	"pickfs/internal/handle"
	"pickfs/internal/jobs"
	"pickfs/internal/logging"
	"pickfs/internal/picker"
	"pickfs/internal/secret"
	"pickfs/internal/shell"
	"pickfs/internal/store"
	"pickfs/internal/ui"
)

var archiveExtensions = []string{".zip", ".tar", ".tar.gz", ".tgz", ".7z"}

// PickerApp is the demo window: one button per picker operation and a
// text area with the outcome.
type PickerApp struct {
	window        fyne.Window
	config        *config.Config
	configManager config.Persister
	picker        *picker.Lazy
	shellIO       picker.ShellIO
	jobs          *jobs.Manager
	jobsDialog    *ui.JobsDialog
	output        *widget.Label
	log           *zap.Logger

	// last successful pick, kept for Save and Remember; UI thread only
	last []handle.AppHandle
}

func (pa *PickerApp) integration() (*picker.Integration, error) {
	svc, err := pa.picker.Get()
	if err != nil {
		return nil, err
	}
	return picker.NewIntegration(svc, pa.shellIO), nil
}

// run queues a pick and reports failures that are not plain dismissals.
func (pa *PickerApp) run(t jobs.Type, label string, fn func(ctx context.Context, integ *picker.Integration) error) {
	integ, err := pa.integration()
	if err != nil {
		ui.ShowErrorDialog(pa.window, "Picker unavailable", err)
		return
	}
	go func() {
		err := pa.jobs.Run(context.Background(), t, label, func(ctx context.Context) error {
			return fn(ctx, integ)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			pa.log.Debug("pick job ended with error", zap.String("type", string(t)), zap.Error(err))
		}
	}()
}

func (pa *PickerApp) setLast(h []handle.AppHandle) {
	fyne.Do(func() { pa.last = h })
}

func (pa *PickerApp) show(text string) {
	fyne.Do(func() { pa.output.SetText(text) })
}

func (pa *PickerApp) pickFiles() {
	exts := pa.config.Picker.Extensions
	pa.run(jobs.TypePickFiles, strings.Join(exts, " "), func(ctx context.Context, integ *picker.Integration) error {
		res := integ.PickFiles(ctx, exts, pa.config.Picker.Description, pa.config.Picker.Multiple)
		switch {
		case res.UserCancelled:
			pa.show("Selection cancelled.")
			return nil
		case res.Error != "":
			pa.show("Error: " + res.Error)
			return errors.New(res.Error)
		}
		pa.setLast(res.Handles)
		if len(res.Handles) > 0 {
			if p, ok := nativePath(res.Handles[0]); ok {
				pa.rememberDirectory(fileinfo.ParentPath(p))
			}
		}
		pa.show(describeFiles(ctx, res))
		return nil
	})
}

func (pa *PickerApp) pickDirectory() {
	pa.run(jobs.TypePickDirectory, "", func(ctx context.Context, integ *picker.Integration) error {
		res := integ.PickDirectory(ctx)
		switch {
		case res.UserCancelled:
			pa.show("Selection cancelled.")
			return nil
		case res.Error != "":
			pa.show("Error: " + res.Error)
			return errors.New(res.Error)
		}
		if res.Handle != nil {
			pa.setLast([]handle.AppHandle{*res.Handle})
			if p, ok := nativePath(*res.Handle); ok {
				pa.rememberDirectory(p)
			}
		}
		pa.show(describeDirectory(ctx, res))
		return nil
	})
}

func (pa *PickerApp) importArchive() {
	pa.run(jobs.TypeImport, strings.Join(archiveExtensions, " "), func(ctx context.Context, integ *picker.Integration) error {
		res := integ.PickFiles(ctx, archiveExtensions, "Archives", false)
		if res.UserCancelled || res.Error != "" {
			if res.Error != "" && !res.UserCancelled {
				pa.show("Error: " + res.Error)
			}
			return nil
		}
		f, err := firstFile(ctx, res)
		if err != nil {
			pa.show("Error: " + apperrors.Message(err))
			return err
		}
		dir := integ.ImportArchive(ctx, f)
		if dir.Error != "" {
			pa.show("Error: " + dir.Error)
			return errors.New(dir.Error)
		}
		pa.show(describeDirectory(ctx, dir))
		return nil
	})
}

func (pa *PickerApp) saveSummary() {
	names := make([]string, 0, len(pa.last))
	for _, h := range pa.last {
		names = append(names, h.Name)
	}
	data := []byte(strings.Join(names, "\n") + "\n")
	pa.run(jobs.TypeSaveFile, "selection.txt", func(ctx context.Context, integ *picker.Integration) error {
		res := integ.Service().SaveFile(ctx, adapter.SaveFileOptions{
			SuggestedName: "selection.txt",
			Accept:        adapter.AcceptForExtensions([]string{".txt"}),
			Description:   "Text",
		}, data)
		switch {
		case res.UserCancelled:
			pa.show("Save cancelled.")
		case !res.Success:
			pa.show("Error: " + res.Error)
			return errors.New(res.Error)
		default:
			pa.show(fmt.Sprintf("Saved %d names.", len(names)))
		}
		return nil
	})
}

func (pa *PickerApp) rememberLast() {
	svc, err := pa.picker.Get()
	if err != nil {
		ui.ShowErrorDialog(pa.window, "Picker unavailable", err)
		return
	}
	var saved int
	for _, h := range pa.last {
		if _, err := svc.Remember(h); err != nil {
			ui.ShowErrorDialog(pa.window, "Cannot remember "+h.Name, err)
			return
		}
		saved++
	}
	pa.output.SetText(fmt.Sprintf("Remembered %d handle(s).", saved))
}

func (pa *PickerApp) restoreRecent() {
	svc, err := pa.picker.Get()
	if err != nil {
		ui.ShowErrorDialog(pa.window, "Picker unavailable", err)
		return
	}
	recent := svc.Recent()
	if len(recent) == 0 {
		ui.ShowMessageDialog(pa.window, "Restore", "Nothing remembered yet.")
		return
	}
	rec := recent[0]
	pa.run(jobs.TypeRestore, rec.Name, func(ctx context.Context, integ *picker.Integration) error {
		h, err := integ.Service().Restore(ctx, rec.ID, handle.ModeRead)
		if err != nil {
			pa.show("Error: " + apperrors.Message(err))
			return err
		}
		pa.setLast([]handle.AppHandle{h})
		pa.show(fmt.Sprintf("Restored %s %q (saved %s).", h.Kind, h.Name, rec.SavedAt.Format("2006-01-02 15:04")))
		return nil
	})
}

// nativePath returns the shell path behind a native handle.
func nativePath(h handle.AppHandle) (string, bool) {
	p, ok := h.Native.(interface{ Path() string })
	if !ok {
		return "", false
	}
	return p.Path(), true
}

func (pa *PickerApp) rememberDirectory(dir string) {
	fyne.Do(func() {
		pa.config.AddRecentDirectory(dir)
		if err := pa.configManager.Save(pa.config); err != nil {
			pa.log.Warn("saving config", zap.Error(err))
		}
	})
}

func (pa *PickerApp) setupUI() {
	var banner fyne.CanvasObject
	if integ, err := pa.integration(); err != nil {
		banner = widget.NewLabel("Picker unavailable: " + err.Error())
	} else {
		banner = ui.NewCompatibilityBanner(integ.CompatibilityInfo())
	}

	pa.output = widget.NewLabel("Pick something.")
	pa.output.Wrapping = fyne.TextWrapWord

	buttons := container.NewGridWithColumns(4,
		widget.NewButton("Pick Files", pa.pickFiles),
		widget.NewButton("Pick Folder", pa.pickDirectory),
		widget.NewButton("Import Archive", pa.importArchive),
		widget.NewButton("Save Selection", pa.saveSummary),
		widget.NewButton("Remember", pa.rememberLast),
		widget.NewButton("Restore Recent", pa.restoreRecent),
		widget.NewButton("Jobs", func() { pa.jobsDialog.ShowDialog(pa.window) }),
	)
	pa.window.SetContent(container.NewBorder(
		container.NewVBox(banner, buttons), nil, nil, nil,
		container.NewVScroll(pa.output),
	))
}

func describeFiles(ctx context.Context, res picker.FilesResult) string {
	var b strings.Builder
	mode := "native"
	if res.IsFallbackMode {
		mode = "fallback"
	}
	fmt.Fprintf(&b, "%d file(s), %s mode\n", max(len(res.Handles), len(res.FallbackFiles)), mode)
	for i, h := range res.Handles {
		if i == constants.PreviewLimit {
			b.WriteString("...\n")
			break
		}
		size := ""
		if f, err := fileOf(ctx, h); err == nil {
			size = fileinfo.FormatFileSize(f.Size)
		}
		fmt.Fprintf(&b, "  %s  %s\n", h.Name, size)
	}
	return b.String()
}

func describeDirectory(ctx context.Context, res picker.DirectoryResult) string {
	var b strings.Builder
	if res.Handle == nil {
		return "No directory."
	}
	fmt.Fprintf(&b, "Directory %q\n", res.Handle.Name)
	dir, err := handle.ConvertDirectory(*res.Handle)
	if err != nil {
		return b.String() + err.Error()
	}
	entries, err := dir.Entries().Collect(ctx)
	for i, e := range entries {
		if i == constants.PreviewLimit {
			b.WriteString("...\n")
			break
		}
		suffix := ""
		if e.Handle.Kind() == handle.KindDirectory {
			suffix = "/"
		}
		fmt.Fprintf(&b, "  %s%s\n", e.Name, suffix)
	}
	if err != nil {
		fmt.Fprintf(&b, "listing stopped: %v\n", err)
	}
	if n := len(res.FallbackFiles); n > 0 {
		fmt.Fprintf(&b, "%d file(s) in total\n", n)
	}
	return b.String()
}

// fileOf returns the content of a file pick.
func fileOf(ctx context.Context, h handle.AppHandle) (*handle.File, error) {
	if h.File != nil {
		return h.File, nil
	}
	fh, err := handle.ConvertFile(h)
	if err != nil {
		return nil, err
	}
	return fh.GetFile(ctx)
}

func firstFile(ctx context.Context, res picker.FilesResult) (*handle.File, error) {
	if len(res.FallbackFiles) > 0 {
		return res.FallbackFiles[0], nil
	}
	if len(res.Handles) > 0 {
		return fileOf(ctx, res.Handles[0])
	}
	return nil, errors.New("no file selected")
}

// hostEnv applies configuration on top of the probed environment.
func hostEnv(probed capability.HostEnv, cfg *config.Config) (capability.HostKind, capability.HostEnv) {
	kind := probed.Kind
	if cfg.Host.Kind != "auto" {
		// validated on load
		kind, _ = capability.ParseHostKind(cfg.Host.Kind)
	}
	env := probed
	env.SupportsDirectoryInput = cfg.Host.DirectoryInput
	if cfg.Host.ForceRestricted {
		env.HasOpenFilePicker = false
		env.HasDirectoryPicker = false
		env.HasSaveFilePicker = false
	}
	return kind, env
}

func main() {
	var (
		debug      bool
		hostKind   string
		restricted bool
		configPath string
	)
	pflag.BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	pflag.StringVar(&hostKind, "host", "", "Host kind: auto, browser or shell")
	pflag.BoolVar(&restricted, "restricted", false, "Use one-shot input dialogs even when native pickers exist")
	pflag.StringVar(&configPath, "config", "", "Configuration file")
	pflag.Parse()

	bootLog := logging.NewDefault(debug)

	configManager := config.NewManager(bootLog)
	if configPath != "" {
		configManager = config.NewManagerWithPath(configPath, bootLog)
	}
	cfg, err := configManager.Load()
	if err != nil {
		bootLog.Fatal("loading configuration", zap.Error(err))
	}
	if pflag.CommandLine.Changed("host") {
		cfg.Host.Kind = strings.ToLower(hostKind)
	}
	if restricted {
		cfg.Host.ForceRestricted = true
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal("invalid configuration", zap.Error(err))
	}

	log := logging.NewDefault(debug || cfg.Host.Debug)
	defer func() { _ = log.Sync() }()

	a := app.NewWithID(constants.ApplicationID)
	w := a.NewWindow(constants.ApplicationTitle)

	// SMB credentials for shell reads of network paths
	if s, ok := secret.Open(); ok {
		fileinfo.SetSecretStore(s)
	} else {
		log.Debug("no OS keyring; SMB credentials stay in memory")
	}
	fileinfo.SetCredentialsProvider(fileinfo.NewCachedCredentialsProvider(ui.NewSMBCredentialsProvider(w)))

	handles, err := store.New(configManager.StorePath(cfg), cfg.Store.MaxHandles, log)
	if err != nil {
		log.Warn("handle store unavailable, remembering in memory only", zap.Error(err))
		handles = store.NewMemory(cfg.Store.MaxHandles)
	}

	kind, env := hostEnv(fynehost.Env(a), cfg)
	channel := shell.NewChannel(fynehost.NewDialogs(w, log), log)
	var shellIO picker.ShellIO
	if kind == capability.HostDesktopShell {
		shellIO = channel
	}
	log.Info("starting",
		zap.Stringer("host", kind),
		zap.Bool("nativePickers", env.HasNativePickers()),
		zap.String("config", configManager.Path()))

	queue := jobs.NewManager(log)
	defer queue.Close()

	pa := &PickerApp{
		window:        w,
		config:        cfg,
		configManager: configManager,
		picker: picker.NewLazy(func() (picker.Options, error) {
			return picker.Options{
				Kind:   kind,
				Env:    env,
				Native: shell.NewHost(channel),
				Input:  fynehost.NewInputHost(w, log),
				Store:  handles,
				Logger: log,
			}, nil
		}),
		shellIO:    shellIO,
		jobs:       queue,
		jobsDialog: ui.NewJobsDialog(queue),
		log:        log,
	}
	pa.setupUI()

	w.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))
	w.ShowAndRun()

	if err := configManager.Save(cfg); err != nil {
		log.Warn("saving configuration", zap.Error(err))
	}
}
