package domain

import "time"

type Quote struct {
	Symbol           string
	Price            string
	LatestTradingDay string
	FetchedAt        time.Time
}
