package editor

import (
	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"
)

const appName = "Shohayok"

// Notifier shows one-off messages to the user.
type Notifier interface {
	Info(title, message string)
	Error(title, message string)
}

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) logger() *log.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return log.Default()
}

func (n LogNotifier) Info(title, message string) {
	n.logger().Info(message, "title", title)
}

func (n LogNotifier) Error(title, message string) {
	n.logger().Error(message, "title", title)
}

// DesktopNotifier raises desktop notifications and falls back to the
// wrapped notifier when the platform refuses.
type DesktopNotifier struct {
	Fallback Notifier
}

func (n DesktopNotifier) Info(title, message string) {
	if err := beeep.Notify(appName+": "+title, message, ""); err != nil {
		log.Debugf("desktop notification failed: %v", err)
		n.fallback().Info(title, message)
	}
}

func (n DesktopNotifier) Error(title, message string) {
	if err := beeep.Alert(appName+": "+title, message, ""); err != nil {
		log.Debugf("desktop alert failed: %v", err)
		n.fallback().Error(title, message)
	}
}

func (n DesktopNotifier) fallback() Notifier {
	if n.Fallback != nil {
		return n.Fallback
	}
	return LogNotifier{}
}
