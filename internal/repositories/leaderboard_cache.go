package repositories

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"varirunBack/internal/models"
)

const leaderboardKey = "leaderboard:total_range"

// LeaderboardCache keeps total distance per user in a sorted set.
type LeaderboardCache struct {
	Client *redis.Client
}

// The increment leaves a missing set alone so a partial board is never served.
// Readers fall back to the database until the next rebuild.
const incrementScriptSource = `
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
return redis.call('ZINCRBY', KEYS[1], ARGV[1], ARGV[2])
`

var incrementIfPresent = redis.NewScript(incrementScriptSource)

func (c *LeaderboardCache) Add(ctx context.Context, userID int64, rangeDelta float64) error {
	return addScore(ctx, c.Client, userID, rangeDelta)
}

func addScore(ctx context.Context, s redis.Scripter, userID int64, rangeDelta float64) error {
	err := incrementIfPresent.Run(ctx, s, []string{leaderboardKey},
		strconv.FormatFloat(rangeDelta, 'f', -1, 64), strconv.FormatInt(userID, 10)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Replace swaps the whole set for the given rankings in one MULTI block.
func (c *LeaderboardCache) Replace(ctx context.Context, rankings []models.Ranking) error {
	if len(rankings) == 0 {
		return c.Client.Del(ctx, leaderboardKey).Err()
	}

	members := make([]redis.Z, 0, len(rankings))
	for _, rk := range rankings {
		members = append(members, redis.Z{Score: rk.TotalRange, Member: strconv.FormatInt(rk.UserID, 10)})
	}

	tmp := leaderboardKey + ":rebuild"
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tmp)
		pipe.ZAdd(ctx, tmp, members...)
		pipe.Rename(ctx, tmp, leaderboardKey)
		return nil
	})
	return err
}

// Top returns the n best users by distance. Names and times are not cached.
func (c *LeaderboardCache) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	zs, err := c.Client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(zs))
	var rank int64
	prev := -1.0
	for i, z := range zs {
		member, _ := z.Member.(string)
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		if z.Score != prev {
			rank = int64(i + 1)
			prev = z.Score
		}
		entries = append(entries, models.LeaderboardEntry{Rank: rank, UserID: userID, TotalRange: z.Score})
	}
	return entries, nil
}
