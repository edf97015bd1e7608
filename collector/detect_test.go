package collector

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestDetectHostPID(t *testing.T) {
	t.Cleanup(func() { procReadFile = os.ReadFile })
	cases := []struct {
		cmdline string
		err     error
		want    bool
	}{
		{"/sbin/init\x00splash\x00", nil, true},
		{"/usr/lib/systemd/systemd\x00--system\x00", nil, true},
		{"/usr/local/bin/memguard\x00-c\x00/etc/memguard.toml\x00", nil, false},
		{"", errors.New("missing"), false},
	}
	for _, tc := range cases {
		procReadFile = func(path string) ([]byte, error) {
			require.True(t, strings.HasSuffix(path, "/1/cmdline"), path)
			return []byte(tc.cmdline), tc.err
		}
		require.Equal(t, tc.want, detectHostPID(), "cmdline %q", tc.cmdline)
	}
}

func TestDetectCapabilitiesLogsTable(t *testing.T) {
	t.Cleanup(func() {
		geteuid = os.Geteuid
		procReadFile = os.ReadFile
		capsOnce = sync.Once{}
	})
	capsOnce = sync.Once{}
	geteuid = func() int { return 1000 }
	procReadFile = func(string) ([]byte, error) { return []byte("/sbin/init"), nil }

	logger, hook := test.NewNullLogger()
	got := DetectCapabilities(logger)
	require.False(t, got.IsRoot)
	require.True(t, got.HasHostPID)
	require.Len(t, hook.AllEntries(), 5)

	// second call is served from the cached probe
	geteuid = func() int { return 0 }
	require.False(t, DetectCapabilities(logger).IsRoot)
	require.Len(t, hook.AllEntries(), 5)
}

func TestHostProcHonoursEnv(t *testing.T) {
	t.Setenv("HOST_PROC", "/host/proc")
	require.Equal(t, "/host/proc/12/cgroup", hostProc("12", "cgroup"))
	t.Setenv("HOST_PROC", "")
	require.Equal(t, "/proc/1/cmdline", hostProc("1", "cmdline"))
}
