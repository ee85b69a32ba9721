//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

// darwinSender implements notifications for macOS using osascript.
type darwinSender struct{}

func newPlatformSender() sender {
	return darwinSender{}
}

func (darwinSender) supported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (darwinSender) send(title, message string, sound bool) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(message), escapeAppleScript(title))
	if sound {
		script += ` sound name "default"`
	}

	cmd := exec.Command("osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}
	return nil
}

// escapeAppleScript escapes special characters for AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
