package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"atomicgo.dev/cursor"
)

// startSpinner starts a lightweight inline spinner on a single line and hides
// the terminal cursor while it runs. The returned function stops the spinner,
// clears the line, and restores the cursor.
func startSpinner(text string) func() {
	cursor.Hide()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		frames := []string{"-", "\\", "|", "/"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				// Clear the line to remove any spinner remnants
				fmt.Print("\r")
				fmt.Print(strings.Repeat(" ", len(text)+4))
				fmt.Print("\r")
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stdout, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()

	var once bool
	return func() {
		if once {
			return
		}
		once = true
		close(done)
		<-stopped
		cursor.Show()
	}
}
