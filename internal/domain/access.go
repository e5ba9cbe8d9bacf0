package domain

import "github.com/Vovarama1992/qrpage/internal/ports"

type allowList struct {
	ids map[int64]struct{}
}

// NewAllowList admits exactly the given Telegram user ids. An empty list
// admits nobody.
func NewAllowList(ids []int64) ports.AccessPolicy {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return &allowList{ids: m}
}

func (a *allowList) Allowed(userID int64) bool {
	_, ok := a.ids[userID]
	return ok
}
