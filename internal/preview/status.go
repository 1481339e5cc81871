package preview

import (
	"sync"

	"git.home.luguber.info/inful/justhtml/internal/report"
)

// buildStatus tracks the latest build for the HTTP handler.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastReport   *report.BuildReport
	hasGoodBuild bool
}

func (bs *buildStatus) set(rep *report.BuildReport, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastReport = rep
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) get() (rep *report.BuildReport, hasGoodBuild bool, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastReport, bs.hasGoodBuild, bs.lastError
}
