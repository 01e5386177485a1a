package repositories

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// memScripter evaluates the leaderboard increment script against in-memory sets.
type memScripter struct {
	sets  map[string]map[string]float64
	calls int
	err   error
}

func (m *memScripter) EvalSha(_ context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	m.calls++
	if m.err != nil {
		return redis.NewCmdResult(nil, m.err)
	}
	if sha != incrementIfPresent.Hash() {
		return redis.NewCmdResult(nil, errors.New("unexpected script"))
	}
	set, ok := m.sets[keys[0]]
	if !ok {
		return redis.NewCmdResult(nil, redis.Nil)
	}
	delta, err := strconv.ParseFloat(args[0].(string), 64)
	if err != nil {
		return redis.NewCmdResult(nil, err)
	}
	member := args[1].(string)
	set[member] += delta
	return redis.NewCmdResult(strconv.FormatFloat(set[member], 'f', -1, 64), nil)
}

func (m *memScripter) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.EvalSha(ctx, incrementIfPresent.Hash(), keys, args...)
}

func (m *memScripter) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.Eval(ctx, script, keys, args...)
}

func (m *memScripter) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return m.EvalSha(ctx, sha, keys, args...)
}

func (m *memScripter) ScriptExists(_ context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (m *memScripter) ScriptLoad(_ context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult(incrementIfPresent.Hash(), nil)
}

func TestAddScoreSkipsMissingBoard(t *testing.T) {
	m := &memScripter{sets: map[string]map[string]float64{}}

	require.NoError(t, addScore(context.Background(), m, 7, 10))
	require.Equal(t, 1, m.calls)
	require.Empty(t, m.sets, "increment must not create the board")
}

func TestAddScoreIncrementsExistingBoard(t *testing.T) {
	m := &memScripter{sets: map[string]map[string]float64{leaderboardKey: {"8": 3}}}
	ctx := context.Background()

	require.NoError(t, addScore(ctx, m, 7, 10.5))
	require.NoError(t, addScore(ctx, m, 7, -0.5))
	require.Equal(t, map[string]float64{"7": 10, "8": 3}, m.sets[leaderboardKey])
}

func TestAddScoreReportsRedisErrors(t *testing.T) {
	m := &memScripter{err: errors.New("connection refused")}
	require.EqualError(t, addScore(context.Background(), m, 7, 1), "connection refused")
}

func TestIncrementScriptGuardsOnExists(t *testing.T) {
	src := strings.Join(strings.Fields(incrementScriptSource), " ")
	require.Contains(t, src, "redis.call('EXISTS', KEYS[1]) == 0 then return false end")
	require.Contains(t, src, "redis.call('ZINCRBY', KEYS[1], ARGV[1], ARGV[2])")
}
