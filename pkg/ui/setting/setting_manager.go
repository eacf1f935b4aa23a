// Package setting describes the widgets of the studio preferences window.
package setting

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// SelectConfig describes a drop-down preference. InitialValue is the
// selected index.
type SelectConfig struct {
	Name         string
	Options      []string
	InitialValue int
	Label        fyne.CanvasObject
	HelpContent  fyne.CanvasObject
	ApplyFunc    func(index int)
	NeedsRefresh bool
}

// BoolConfig describes a check box preference.
type BoolConfig struct {
	Name         string
	InitialValue bool
	Label        fyne.CanvasObject
	HelpContent  fyne.CanvasObject
	ApplyFunc    func(bool)
	NeedsRefresh bool
}

// TextEntrySettingConfig describes a free text preference. PostValidateCheck
// runs after Validator passes and can reject the value with its own message.
type TextEntrySettingConfig struct {
	Name              string
	InitialValue      string
	PlaceHolder       string
	Label             fyne.CanvasObject
	HelpContent       fyne.CanvasObject
	Validator         fyne.StringValidator
	PostValidateCheck func(string) error
	ApplyFunc         func(string)
	NeedsRefresh      bool
}

// ButtonWithConfirmationConfig describes an action button. With a title and
// message the user confirms before OnPressed runs.
type ButtonWithConfirmationConfig struct {
	Label          fyne.CanvasObject
	HelpContent    fyne.CanvasObject
	ButtonText     string
	ConfirmTitle   string
	ConfirmMessage string
	OnPressed      func()
}

// StringOptions converts a slice of fmt.Stringer to a slice of strings.
func StringOptions[T fmt.Stringer](options []T) []string {
	stringOptions := []string{}
	for _, option := range options {
		stringOptions = append(stringOptions, option.String())
	}
	return stringOptions
}

// SettingsManager builds preference widgets and batches their changes until
// the user presses Apply.
type SettingsManager interface {
	CreateSectionTitleLabel(desc string) *widget.Label
	CreateSettingTitleLabel(desc string) *widget.Label
	CreateSettingDescriptionLabel(desc string) *widget.Label

	CreateSelectSetting(cfg *SelectConfig, header *fyne.Container)
	CreateBoolSetting(cfg *BoolConfig, header *fyne.Container) *widget.Check
	CreateTextEntrySetting(cfg *TextEntrySettingConfig, header *fyne.Container)
	CreateButtonWithConfirmationSetting(cfg *ButtonWithConfirmationConfig, header *fyne.Container)

	GetApplySettingsButton() *widget.Button
	SetSettingChangedCallback(settingName string, callback func())
	RemoveSettingChangedCallback(settingName string)
	SetRefreshFlag(settingName string)
	UnsetRefreshFlag(settingName string)

	// RegisterRefreshFunc adds work to run after an applied change that
	// needs a refresh, such as reconnecting to a new server.
	RegisterRefreshFunc(refreshFunc func())
	GetSettingsWindow() fyne.Window
}
