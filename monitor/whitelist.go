package monitor

import (
	"context"
	"errors"
	"strings"

	"memguard/collector"
)

// Whitelisted reports whether h is exempt from termination. The first
// matching rule wins: own pid, configured pids, name substrings. A process
// that cannot be identified because it vanished or is not readable counts as
// protected. Any other failure is returned to the caller.
func (e *Engine) Whitelisted(ctx context.Context, h collector.Handle) (bool, error) {
	pid := h.PID()
	if pid == e.selfPID {
		return true, nil
	}
	if _, ok := e.cfg.WhitelistPIDs[pid]; ok {
		return true, nil
	}

	name, err := h.Name(ctx)
	if err != nil {
		return protectOnError(err)
	}
	name = strings.ToLower(name)
	for _, protected := range e.cfg.WhitelistNames {
		if strings.Contains(name, protected) {
			return true, nil
		}
	}

	if len(e.cfg.WhitelistUsers) > 0 {
		username, err := h.Username(ctx)
		if err != nil {
			return protectOnError(err)
		}
		if _, ok := e.cfg.WhitelistUsers[username]; ok {
			// User membership is recorded but does not grant protection.
			return false, nil
		}
	}
	return false, nil
}

func protectOnError(err error) (bool, error) {
	if errors.Is(err, collector.ErrProcessVanished) || errors.Is(err, collector.ErrAccessDenied) {
		return true, nil
	}
	return false, err
}
