//go:build linux

package notify

import (
	"fmt"
	"os/exec"
)

// linuxSender implements notifications for Linux using notify-send.
type linuxSender struct{}

func newPlatformSender() sender {
	return linuxSender{}
}

func (linuxSender) supported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (linuxSender) send(title, message string, sound bool) error {
	args := []string{"--app-name=nippo", title, message}

	// Sound depends on the notification daemon honouring urgency
	if sound {
		args = append([]string{"--urgency=critical"}, args...)
	}

	cmd := exec.Command("notify-send", args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}
