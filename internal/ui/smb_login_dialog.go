package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"pickfs/internal/constants"
	"pickfs/internal/fileinfo"
)

// ErrLoginCancelled is returned when the user dismisses the SMB login form.
var ErrLoginCancelled = errors.New("smb login cancelled")

// SMBCredentialsProvider asks the user for share credentials. It is the
// last link of the credential chain, after the session cache and keyring.
type SMBCredentialsProvider struct {
	parent fyne.Window
}

func NewSMBCredentialsProvider(parent fyne.Window) *SMBCredentialsProvider {
	return &SMBCredentialsProvider{parent: parent}
}

type loginResult struct {
	creds fileinfo.Credentials
	err   error
}

// Get blocks until the form is answered. It must not be called on the UI
// goroutine.
func (p *SMBCredentialsProvider) Get(host, share, _ string) (fileinfo.Credentials, error) {
	result := make(chan loginResult, 1)
	fyne.Do(func() {
		p.showForm(host, share, result)
	})
	r := <-result
	return r.creds, r.err
}

func (p *SMBCredentialsProvider) showForm(host, share string, result chan<- loginResult) {
	domain := widget.NewEntry()
	domain.SetPlaceHolder("WORKGROUP")
	user := widget.NewEntry()
	user.SetPlaceHolder("username")
	user.Validator = func(s string) error {
		if s == "" {
			return errors.New("username is required")
		}
		return nil
	}
	pass := widget.NewPasswordEntry()
	remember := widget.NewCheck("Remember in the system keyring", nil)

	items := []*widget.FormItem{
		widget.NewFormItem("Domain", domain),
		widget.NewFormItem("Username", user),
		widget.NewFormItem("Password", pass),
		widget.NewFormItem("", remember),
	}
	title := fmt.Sprintf("Connect to smb://%s/%s", host, share)
	form := dialog.NewForm(title, "Connect", "Cancel", items, func(ok bool) {
		if !ok {
			result <- loginResult{err: fmt.Errorf("%s/%s: %w", host, share, ErrLoginCancelled)}
			return
		}
		result <- loginResult{creds: fileinfo.Credentials{
			Domain:   domain.Text,
			Username: user.Text,
			Password: pass.Text,
			Persist:  remember.Checked,
		}}
	}, p.parent)
	form.Resize(fyne.NewSize(constants.LoginDialogWidth, constants.LoginDialogHeight))
	form.Show()
	p.parent.Canvas().Focus(user)
}
