//go:build !windows && !plan9

package logging

import (
	"log/syslog"

	"github.com/sirupsen/logrus"
	logrus_syslog "github.com/sirupsen/logrus/hooks/syslog"
)

func addSyslogHook(logger *logrus.Logger) error {
	hook, err := logrus_syslog.NewSyslogHook("", "", syslog.LOG_INFO|syslog.LOG_DAEMON, "memguard")
	if err != nil {
		return err
	}
	logger.AddHook(hook)
	return nil
}
