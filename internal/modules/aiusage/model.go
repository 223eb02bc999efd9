// README: Monthly AI generation quota definitions.
package aiusage

import "errors"

// ErrInsufficientTokens is returned when a user has no generations left for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of model-backed itinerary generations granted per month.
const DefaultTokens = 100

// monthLayout keys the lazy monthly reset.
const monthLayout = "2006-01"

// Usage is a user's quota snapshot.
type Usage struct {
	UID       string `json:"uid"`
	Remaining int    `json:"remaining"`
	Month     string `json:"month"`
}
