package oauth

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/AlessioPiovesan/geni-wrapper/pkg/logging"
)

// browserLauncher starts the launch command. Replaced in tests to avoid
// opening a real browser.
var browserLauncher = func(cmd *exec.Cmd) error {
	return cmd.Start()
}

// OpenBrowser opens the specified URL in the default web browser.
// It supports Linux, macOS, and Windows.
// Returns an error if the browser could not be opened.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	logging.Debug("Browser", "launching %s", cmd.Path)

	// Start the command but don't wait for it to complete
	// The browser will open in the background
	if err := browserLauncher(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
