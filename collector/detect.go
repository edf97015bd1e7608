package collector

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const dockerSocket = "/var/run/docker.sock"

type Capabilities struct {
	IsRoot          bool
	HasHostPID      bool
	HasDockerSocket bool
}

var (
	caps     Capabilities
	capsOnce sync.Once
)

// geteuid is swapped in tests.
var geteuid = os.Geteuid

// DetectCapabilities probes once what this agent can see and signal, and logs
// the result as a small table.
func DetectCapabilities(logger logrus.FieldLogger) Capabilities {
	capsOnce.Do(func() {
		caps = Capabilities{
			IsRoot:          geteuid() == 0,
			HasHostPID:      detectHostPID(),
			HasDockerSocket: fileExists(dockerSocket),
		}

		logger.Info("╭─ Agent Capabilities ──────────────────────────────────────╮")
		logCap(logger, "Root", caps.IsRoot, "(signal any process)")
		logCap(logger, "Host PID", caps.HasHostPID, "(process listing)")
		logCap(logger, "Docker", caps.HasDockerSocket, "(container names)")
		logger.Info("╰───────────────────────────────────────────────────────────╯")
	})
	return caps
}

func logCap(logger logrus.FieldLogger, name string, available bool, desc string) {
	icon := "✗"
	status := "unavailable"
	if available {
		icon = "✓"
		status = "enabled"
	}
	logger.Infof("│ %s %-10s │ %-11s │ %-28s │", icon, name, status, desc)
}

// detectHostPID is false when pid 1 is this agent or a container entrypoint,
// i.e. we only see our own PID namespace.
func detectHostPID() bool {
	data, err := procReadFile(hostProc("1", "cmdline"))
	if err != nil {
		return false
	}
	cmdline := strings.ReplaceAll(string(data), "\x00", " ")
	cmdline = strings.TrimSpace(strings.ToLower(cmdline))

	if strings.Contains(cmdline, "/memguard") || strings.Contains(cmdline, "memguard ") || cmdline == "memguard" {
		return false
	}
	return true
}
