//go:build !darwin && !linux

package notify

// stubSender is used on platforms without a supported notification command.
type stubSender struct{}

func newPlatformSender() sender {
	return stubSender{}
}

func (stubSender) supported() bool { return false }

func (stubSender) send(string, string, bool) error { return nil }
