// Package ui is a minimal Fyne status window for the sidcore player: no
// pixel output (there is none to show — this core never renders video),
// just the voice gate/filter/play-state readout a player frontend wants
// while a tune runs headless through its audio device.
package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/halfcycle/sidcore/internal/player"
)

// StatusUI polls a Player on a timer and reflects its SID status (voice
// gates, filter cutoff) and play/pause state in a small window.
type StatusUI struct {
	app    fyne.App
	window fyne.Window
	p      *player.Player

	titleLabel  *widget.Label
	voiceLabels [3]*widget.Label
	cutoffLabel *widget.Label
	playButton  *widget.Button

	ticker *time.Ticker
	done   chan struct{}
}

// NewStatusUI creates (but does not show) a status window bound to p.
func NewStatusUI(p *player.Player) *StatusUI {
	fyneApp := app.NewWithID("com.halfcycle.sidcore")
	window := fyneApp.NewWindow("sidcore")

	u := &StatusUI{app: fyneApp, window: window, p: p, done: make(chan struct{})}

	u.titleLabel = widget.NewLabel("no tune loaded")
	for i := range u.voiceLabels {
		u.voiceLabels[i] = widget.NewLabel(fmt.Sprintf("voice %d: off", i+1))
	}
	u.cutoffLabel = widget.NewLabel("cutoff: 0")
	u.playButton = widget.NewButton("Pause", u.togglePlay)

	window.SetContent(container.NewVBox(
		u.titleLabel,
		u.voiceLabels[0], u.voiceLabels[1], u.voiceLabels[2],
		u.cutoffLabel,
		u.playButton,
	))
	window.Resize(fyne.NewSize(320, 220))
	return u
}

func (u *StatusUI) togglePlay() {
	if u.playButton.Text == "Pause" {
		u.p.Stop()
		u.playButton.SetText("Resume")
	} else {
		u.p.Resume()
		u.playButton.SetText("Pause")
	}
}

// refresh re-reads the player's SID status and updates every widget.
func (u *StatusUI) refresh() {
	u.titleLabel.SetText(u.p.String())

	var status [32]uint8
	u.p.GetSidStatus(0, &status)
	for i := 0; i < 3; i++ {
		gate := status[i*7+4]&0x01 != 0
		state := "off"
		if gate {
			state = "on"
		}
		u.voiceLabels[i].SetText(fmt.Sprintf("voice %d: %s", i+1, state))
	}
	cutoff := uint16(status[0x16])<<3 | uint16(status[0x15]&0x07)
	u.cutoffLabel.SetText(fmt.Sprintf("cutoff: %d", cutoff))
}

// Run shows the window and polls the player every interval until the
// window is closed, blocking the calling goroutine (Fyne's event loop
// must own the OS thread it's called from).
func (u *StatusUI) Run(interval time.Duration) {
	u.ticker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-u.ticker.C:
				u.refresh()
			case <-u.done:
				return
			}
		}
	}()
	u.window.SetOnClosed(func() { close(u.done); u.ticker.Stop() })
	u.window.ShowAndRun()
}
