package models

type RevenueRow struct {
	PackageID   int64   `json:"package_id"`
	PackageName string  `json:"package_name"`
	Range       *string `json:"range"`
	Buyers      int64   `json:"buyers"`
	Revenue     int64   `json:"revenue"`
}

type RevenueSummary struct {
	Packages []RevenueRow `json:"packages"`
	Total    int64        `json:"total"`
}

type RangeTotals struct {
	TotalRange float64 `json:"total_range"`
	TotalTime  int64   `json:"total_time"`
	Runners    int64   `json:"runners"`
}
