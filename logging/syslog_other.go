//go:build windows || plan9

package logging

import (
	"errors"

	"github.com/sirupsen/logrus"
)

func addSyslogHook(*logrus.Logger) error {
	return errors.New("syslog is not supported on this platform")
}
