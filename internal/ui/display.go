package ui

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"fyseq/internal/service"
)

// formatNumberWithCommas takes an integer and returns a string representation
// with commas as thousands separators.
func formatNumberWithCommas(n int64) string {
	s := fmt.Sprintf("%d", n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// updateStatusBar updates the text of the status bar.
func (a *App) updateStatusBar() {
	if a.UI.statusPathLabel == nil {
		return
	}
	statusText := "Ready"

	if ctrl := a.fileEntry.Controller(); ctrl != nil && ctrl.Value() != "" {
		statusText = fmt.Sprintf("%s  |  Timestep %d / %d", ctrl.Value(), ctrl.TimeStep(), len(ctrl.Files())-1)
	}
	if a.player.IsPaused() {
		statusText += " | Paused"
	} else {
		statusText += " | Playing"
	}
	a.UI.statusPathLabel.SetText(statusText)
}

// addLogMessage adds a message to the UI log display.
func (a *App) addLogMessage(message string) {
	if a.logUIManager == nil {
		log.Printf("LogUIManager not ready, console log: %s", message)
		return
	}
	a.logUIManager.AddLogMessage(message)
}

// updateInfoText renders the sequence and current frame in the info panel.
func (a *App) updateInfoText() {
	if a.UI.infoText == nil {
		return
	}
	ctrl := a.fileEntry.Controller()
	if ctrl == nil || ctrl.Value() == "" {
		a.UI.infoText.ParseMarkdown("# Info\n---\nNo file chosen.")
		return
	}

	files := ctrl.Files()
	base := filepath.Base(ctrl.Value())
	frame := "(not listed)"
	if item, ok := ctrl.Available().Find(base); ok {
		frame = fmt.Sprintf("**Size:** %s (%s bytes)\n\n**Last modified:** %s",
			service.FormatSize(item.Size),
			formatNumberWithCommas(item.Size),
			item.ModTime.Format("2006-01-02 15:04:05"))
	}

	first, last := base, base
	if len(files) > 0 {
		first, last = files[0], files[len(files)-1]
	}

	var recent strings.Builder
	for _, p := range a.history.Recent(5) {
		recent.WriteString(fmt.Sprintf("- %s\n", p))
	}
	if recent.Len() == 0 {
		recent.WriteString("(none)\n")
	}

	md := fmt.Sprintf(`## Sequence
**Directory:** %s

**Timesteps:** %s

**First:** %s

**Last:** %s

---
## Frame %d
**File:** %s

%s

---
## Recent
%s`,
		ctrl.Dir(),
		formatNumberWithCommas(int64(len(files))),
		first, last,
		ctrl.TimeStep(),
		base,
		frame,
		recent.String(),
	)
	a.UI.infoText.ParseMarkdown(md)
}
