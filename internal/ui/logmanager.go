package ui

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// DefaultMaxLogMessages bounds the log panel history.
const DefaultMaxLogMessages = 200

// LogUIManager shows one log line at a time in the status bar, with buttons
// to page through older messages.
type LogUIManager struct {
	logMessages     []string
	currentLogIndex int
	maxLogMessages  int

	statusLogLabel   *widget.Label
	statusLogUpBtn   *widget.Button
	statusLogDownBtn *widget.Button
}

// NewLogUIManager wires the manager to the status bar widgets it controls.
func NewLogUIManager(logLabel *widget.Label, upBtn, downBtn *widget.Button, maxMessages int) *LogUIManager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	return &LogUIManager{
		logMessages:      make([]string, 0, maxMessages),
		currentLogIndex:  -1,
		maxLogMessages:   maxMessages,
		statusLogLabel:   logLabel,
		statusLogUpBtn:   upBtn,
		statusLogDownBtn: downBtn,
	}
}

// AddLogMessage appends message and shows it. Must run on the fyne goroutine.
func (lm *LogUIManager) AddLogMessage(message string) {
	lm.logMessages = append(lm.logMessages, message)
	if len(lm.logMessages) > lm.maxLogMessages {
		lm.logMessages = lm.logMessages[len(lm.logMessages)-lm.maxLogMessages:]
	}
	lm.currentLogIndex = len(lm.logMessages) - 1
	lm.UpdateLogDisplay()
}

// Messages returns a copy of the stored messages, oldest first.
func (lm *LogUIManager) Messages() []string {
	return append([]string(nil), lm.logMessages...)
}

// UpdateLogDisplay refreshes the label and button states.
func (lm *LogUIManager) UpdateLogDisplay() {
	if lm.statusLogLabel == nil || lm.statusLogUpBtn == nil || lm.statusLogDownBtn == nil {
		return
	}
	if len(lm.logMessages) == 0 {
		lm.statusLogLabel.SetText("")
		lm.statusLogUpBtn.Disable()
		lm.statusLogDownBtn.Disable()
		return
	}

	lm.currentLogIndex = max(0, min(lm.currentLogIndex, len(lm.logMessages)-1))

	lm.statusLogLabel.SetText(fmt.Sprintf("[%d/%d] %s", lm.currentLogIndex+1, len(lm.logMessages), lm.logMessages[lm.currentLogIndex]))
	if lm.currentLogIndex <= 0 {
		lm.statusLogUpBtn.Disable()
	} else {
		lm.statusLogUpBtn.Enable()
	}
	if lm.currentLogIndex >= len(lm.logMessages)-1 {
		lm.statusLogDownBtn.Disable()
	} else {
		lm.statusLogDownBtn.Enable()
	}
}

// ShowPreviousLogMessage pages back one message.
func (lm *LogUIManager) ShowPreviousLogMessage() {
	if len(lm.logMessages) == 0 || lm.currentLogIndex <= 0 {
		return
	}
	lm.currentLogIndex--
	lm.UpdateLogDisplay()
}

// ShowNextLogMessage pages forward one message.
func (lm *LogUIManager) ShowNextLogMessage() {
	if len(lm.logMessages) == 0 || lm.currentLogIndex >= len(lm.logMessages)-1 {
		return
	}
	lm.currentLogIndex++
	lm.UpdateLogDisplay()
}

// logPanelWriter is an io.Writer that forwards complete lines to the log
// panel on the fyne goroutine. The structured logger tees into it.
type logPanelWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	lm  *LogUIManager
}

func (w *logPanelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf.Write(p)
	var lines []string
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line, keep it for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	w.mu.Unlock()

	if len(lines) > 0 {
		fyne.Do(func() {
			for _, line := range lines {
				w.lm.AddLogMessage(line)
			}
		})
	}
	return len(p), nil
}
