// Package command defines the free-form string vocabulary understood by the
// external controller. The device link relays these without validation; this
// package only formats and recognizes them.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CoinInserted is reported by the controller when a coin is accepted.
	CoinInserted = "COIN_INSERTED"
	// Reset asks the controller to restart itself.
	Reset = "RESET"

	startServicePrefix = "START_SERVICE:"
)

// StartService formats the command that begins a paid session.
func StartService(id int) string {
	return startServicePrefix + strconv.Itoa(id)
}

// ServiceOn formats the test-mode command that force-enables a relay.
func ServiceOn(id int) string {
	return fmt.Sprintf("SERVICE%d_ON", id)
}

// ServiceOff formats the test-mode command that force-disables a relay.
func ServiceOff(id int) string {
	return fmt.Sprintf("SERVICE%d_OFF", id)
}

// ParseStartService extracts the service id from a START_SERVICE command.
func ParseStartService(cmd string) (int, bool) {
	rest, ok := strings.CutPrefix(cmd, startServicePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
