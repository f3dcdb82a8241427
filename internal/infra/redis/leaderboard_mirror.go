package redis

import (
	"context"
	"math"
	"strconv"
	"time"

	"quizhunt-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// levelSpan packs (score, level) into one ZSET score: score*levelSpan + level. Float64
// holds it exactly while |score| stays below ~9e9 and levels below levelSpan.
const levelSpan = 1_000_000

// recordScript writes (member, packed score, version) triples, skipping any member whose
// stored version is newer. Both keys share one TTL.
// KEYS: leaderboard zset, versions hash. ARGV: ttl ms, then the triples.
var recordScript = redis.NewScript(`
local ttl = tonumber(ARGV[1])
for i = 2, #ARGV, 3 do
  local current = redis.call('HGET', KEYS[2], ARGV[i])
  if (not current) or tonumber(current) <= tonumber(ARGV[i + 2]) then
    redis.call('ZADD', KEYS[1], ARGV[i + 1], ARGV[i])
    redis.call('HSET', KEYS[2], ARGV[i], ARGV[i + 2])
  end
end
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[1], ttl)
  redis.call('PEXPIRE', KEYS[2], ttl)
end
return 1
`)

// LeaderboardMirror keeps a ZSET per event ordered like the ledger:
// ZADD event:{eventID}:leaderboard {score*levelSpan+level} {playerID}
// and, per player, the UpdatedAt (unix micros) of the row last written:
// HSET event:{eventID}:leaderboard:versions {playerID} {micros}
type LeaderboardMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardMirror creates a mirror. A zero ttl keeps keys until the event is deleted.
func NewLeaderboardMirror(client *redis.Client, ttl time.Duration) *LeaderboardMirror {
	return &LeaderboardMirror{client: client, ttl: ttl}
}

// Record writes one row unless the mirror already holds a newer version of it.
func (m *LeaderboardMirror) Record(ctx context.Context, score domain.Score) error {
	return m.write(ctx, score.EventID, []domain.Score{score})
}

// Rebuild merges every ledger row of the event into the mirror. Rows newer than the
// snapshot that were recorded meanwhile are kept.
func (m *LeaderboardMirror) Rebuild(ctx context.Context, eventID string, rows []domain.Score) error {
	if len(rows) == 0 {
		return nil
	}
	return m.write(ctx, eventID, rows)
}

func (m *LeaderboardMirror) write(ctx context.Context, eventID string, rows []domain.Score) error {
	args := make([]interface{}, 0, 1+3*len(rows))
	args = append(args, m.ttl.Milliseconds())
	for _, row := range rows {
		args = append(args,
			row.PlayerID,
			strconv.FormatFloat(pack(row.Score, row.Level), 'f', -1, 64),
			strconv.FormatInt(row.UpdatedAt.UnixMicro(), 10),
		)
	}
	keys := []string{leaderboardKey(eventID), versionsKey(eventID)}
	return recordScript.Run(ctx, m.client, keys, args...).Err()
}

// Entries returns the mirrored standings. A mirror whose two keys disagree (one expired
// before the other) reads as empty.
func (m *LeaderboardMirror) Entries(ctx context.Context, eventID string) ([]domain.LeaderboardEntry, error) {
	pipe := m.client.TxPipeline()
	// ZREVRANGE returns highest to lowest
	ranked := pipe.ZRevRangeWithScores(ctx, leaderboardKey(eventID), 0, -1)
	versions := pipe.HLen(ctx, versionsKey(eventID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	results := ranked.Val()
	if int64(len(results)) != versions.Val() {
		return nil, nil
	}
	entries := make([]domain.LeaderboardEntry, len(results))
	for i, z := range results {
		score, level := unpack(z.Score)
		member, _ := z.Member.(string)
		entries[i] = domain.LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: member,
			Score:    score,
			Level:    level,
		}
	}
	return entries, nil
}

func (m *LeaderboardMirror) Forget(ctx context.Context, eventID string) error {
	return m.client.Del(ctx, leaderboardKey(eventID), versionsKey(eventID)).Err()
}

func leaderboardKey(eventID string) string {
	return "event:" + eventID + ":leaderboard"
}

func versionsKey(eventID string) string {
	return leaderboardKey(eventID) + ":versions"
}

func pack(score, level int) float64 {
	return float64(score)*levelSpan + float64(level)
}

func unpack(v float64) (score, level int) {
	s := math.Floor(v / levelSpan)
	return int(s), int(math.Round(v - s*levelSpan))
}
