package storage

import (
	"fmt"
	"strings"

	"github.com/raykavin/coinalert/pkg/core"
)

// Key layout:
//
//	user:<id>                     -> userRecord
//	alert:<id>:<SYMBOL>:<seq>     -> core.Alert (seq zero padded, so keys sort by creation)
//	watch:<id>:<SYMBOL>           -> watchRecord
const (
	userPrefix  = "user:"
	alertPrefix = "alert:"
	watchPrefix = "watch:"

	alertIndex = "alerts_by_seq"
)

func userKey(user core.UserID) string {
	return userPrefix + user.String()
}

func alertKey(user core.UserID, symbol core.Symbol, seq uint64) string {
	return fmt.Sprintf("%s%s:%s:%020d", alertPrefix, user, symbol, seq)
}

func userAlertsPattern(user core.UserID) string {
	return alertPrefix + user.String() + ":*"
}

func symbolAlertsPrefix(user core.UserID, symbol core.Symbol) string {
	return alertPrefix + user.String() + ":" + string(symbol) + ":"
}

func watchKey(user core.UserID, symbol core.Symbol) string {
	return watchPrefix + user.String() + ":" + string(symbol)
}

func userWatchPattern(user core.UserID) string {
	return watchPrefix + user.String() + ":*"
}

// validSymbol rejects symbols that would break the key layout or glob patterns.
func validSymbol(symbol core.Symbol) error {
	if symbol == "" || strings.ContainsAny(string(symbol), ":*?[]\\ ") {
		return fmt.Errorf("%w: symbol %q", core.ErrInvalidArgument, symbol)
	}
	return nil
}
