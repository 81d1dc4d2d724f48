// Package tray provides the system tray menu for mudra.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/control"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle      func(enabled bool)
	onMode        func(m control.Mode)
	onRecalibrate func()
	onSettings    func()
	onQuit        func()
	enabled       bool
	mode          control.Mode
	mu            sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuScreen      *systray.MenuItem
	menuTable       *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a Tray showing enabled and mode.
func New(enabled bool, mode control.Mode) *Tray {
	return &Tray{
		enabled: enabled,
		mode:    mode,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnMode sets the callback invoked when a mode is picked.
func (t *Tray) OnMode(fn func(m control.Mode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMode = fn
}

// OnRecalibrate sets the callback invoked by the recalibrate item.
func (t *Tray) OnRecalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecalibrate = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, unblocking Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture pointer")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture control")
	systray.AddSeparator()

	t.menuScreen = systray.AddMenuItemCheckbox("Screen mode", "Map the camera onto the screen", t.mode == control.Screen)
	t.menuTable = systray.AddMenuItemCheckbox("Table mode", "Map a calibrated surface onto the screen", t.mode == control.Table)
	menuRecalibrate := systray.AddMenuItem("Recalibrate table", "Capture the four table corners again")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last detected gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Control Panel...", "Open the control panel in a browser")
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuScreen.ClickedCh:
				t.handleMode(control.Screen)
			case <-t.menuTable.ClickedCh:
				t.handleMode(control.Table)
			case <-menuRecalibrate.ClickedCh:
				t.handleRecalibrate()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.render()
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleMode(m control.Mode) {
	t.mu.Lock()
	t.mode = m
	t.render()
	callback := t.onMode
	t.mu.Unlock()

	if callback != nil {
		callback(m)
	}
}

func (t *Tray) handleRecalibrate() {
	t.mu.Lock()
	t.mode = control.Table
	t.render()
	callback := t.onRecalibrate
	t.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// render updates the menu from the current state. Callers hold t.mu.
func (t *Tray) render() {
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(t.enabled))
	}
	if t.menuScreen != nil && t.menuTable != nil {
		if t.mode == control.Table {
			t.menuScreen.Uncheck()
			t.menuTable.Check()
		} else {
			t.menuTable.Uncheck()
			t.menuScreen.Check()
		}
	}
}

// SetEnabled reflects an enabled state changed elsewhere.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	t.render()
}

// SetMode reflects a mode changed elsewhere.
func (t *Tray) SetMode(m control.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = m
	t.render()
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture != nil {
		if name == "" {
			t.menuLastGesture.SetTitle("Last: none")
		} else {
			t.menuLastGesture.SetTitle("Last: " + name)
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Mode returns the mode shown in the menu.
func (t *Tray) Mode() control.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}
