package oauth

import (
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

func TestOpenBrowser_SupportedPlatforms(t *testing.T) {
	var launched *exec.Cmd
	originalLauncher := browserLauncher
	browserLauncher = func(cmd *exec.Cmd) error {
		launched = cmd
		return nil
	}
	defer func() { browserLauncher = originalLauncher }()

	err := OpenBrowser("https://www.geni.com/oauth/authorize")

	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		if err != nil {
			t.Errorf("expected no error on %s, got: %v", runtime.GOOS, err)
		}
		if launched == nil {
			t.Fatal("expected launcher to be invoked")
		}
		joined := strings.Join(launched.Args, " ")
		if !strings.Contains(joined, "https://www.geni.com/oauth/authorize") {
			t.Errorf("expected URL in launch command, got: %s", joined)
		}
	default:
		if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected 'unsupported platform' error, got: %v", err)
		}
	}
}
