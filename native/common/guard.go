package common

import "fmt"

// Module names recognised by the pause guard.
const (
	ModuleToken      = "token"
	ModuleTreasure   = "treasure"
	ModuleSettlement = "settlement"
)

var ErrModulePaused = fmt.Errorf("%w: module paused", ErrStateConflict)

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return fmt.Errorf("%w: %s", ErrModulePaused, module)
	}
	return nil
}
