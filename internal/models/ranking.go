package models

type Ranking struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	TotalRange float64 `json:"total_range"`
	TotalTime  int64   `json:"total_time"`
}

type LeaderboardEntry struct {
	Rank         int64   `json:"rank"`
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	TotalRange   float64 `json:"total_range"`
	TotalTime    int64   `json:"total_time"`
	PackageRange *string `json:"package_range"`
}

type LeaderboardFilter struct {
	Range string
	Page  Pagination
}
