package constants

import "time"

const (
	ExternalAPITimeout  = 10 * time.Second
	ProfileProbeTimeout = 15 * time.Second
	RequestTimeout      = 30 * time.Second
)

const (
	// NativePageSize is the batch size of the Relic match-history API.
	NativePageSize = 100

	RefreshPageBudget  = 10
	BackfillPageBudget = 5
	MaxFetchPages      = 2000
)

const (
	// GameSpeedFactor converts in-game duration to elapsed real time.
	GameSpeedFactor = 1.7

	SessionIdleMinutes = 20
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SearchSuggestionLimit = 10
)
