package schedulerRepo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/juju/clock"

	"salonbook/models"
)

const reservedIndexKey = "ledger:reserved"

// reserveScript claims the slot hash only if it does not exist yet, then
// indexes it in the per-day set and the reservation-age sorted set.
// KEYS: slot, day, reserved index. ARGV: occupant, reservedAt (unix ms), time, index member.
var reserveScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "occupant", ARGV[1], "reservedAt", ARGV[2])
redis.call("SADD", KEYS[2], ARGV[3])
redis.call("ZADD", KEYS[3], ARGV[2], ARGV[4])
return 1
`)

// releaseScript is a no-op on a free slot.
var releaseScript = redis.NewScript(`
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
redis.call("ZREM", KEYS[3], ARGV[2])
return 1
`)

// releaseHeldScript releases only while the hash still names the expected
// occupant and, if ARGV[4] is not empty, the expected reservation time.
// KEYS: slot, day, reserved index. ARGV: time, index member, occupant, reservedAt.
var releaseHeldScript = redis.NewScript(`
local held = redis.call("HMGET", KEYS[1], "occupant", "reservedAt")
if held[1] == false or held[1] ~= ARGV[3] then
  return 0
end
if ARGV[4] ~= "" and held[2] ~= ARGV[4] then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
redis.call("ZREM", KEYS[3], ARGV[2])
return 1
`)

// RedisSchedulerRepo implements SchedulerRepository on Redis. Every mutation
// runs as a single Lua script so the three keys never disagree.
type RedisSchedulerRepo struct {
	client redis.UniversalClient
	clock  clock.Clock
}

func NewRedisSchedulerRepo(client redis.UniversalClient, clk clock.Clock) *RedisSchedulerRepo {
	if clk == nil {
		clk = clock.WallClock
	}
	return &RedisSchedulerRepo{client: client, clock: clk}
}

func slotKey(masterID, date, at string) string {
	return fmt.Sprintf("ledger:slot:%s:%s:%s", masterID, date, at)
}

func dayKey(masterID, date string) string {
	return fmt.Sprintf("ledger:day:%s:%s", masterID, date)
}

// indexMember puts the master id last so it may contain any character.
func indexMember(masterID, date, at string) string {
	return date + "|" + at + "|" + masterID
}

func parseIndexMember(member string) (masterID, date, at string, ok bool) {
	parts := strings.SplitN(member, "|", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[2], parts[0], parts[1], true
}

func (r *RedisSchedulerRepo) IsFree(ctx context.Context, masterID, date, at string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.client.Exists(ctx, slotKey(masterID, date, at)).Result()
	if err != nil {
		return false, fmt.Errorf("error checking slot %s %s %s: %w", masterID, date, at, err)
	}
	return n == 0, nil
}

func (r *RedisSchedulerRepo) Reserve(ctx context.Context, masterID, date, at, clientID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := r.clock.Now().UTC().UnixMilli()
	keys := []string{slotKey(masterID, date, at), dayKey(masterID, date), reservedIndexKey}
	ok, err := reserveScript.Run(ctx, r.client, keys, clientID, now, at, indexMember(masterID, date, at)).Int()
	if err != nil {
		return fmt.Errorf("error reserving slot %s %s %s: %w", masterID, date, at, err)
	}
	if ok == 0 {
		return models.ErrSlotTaken
	}
	return nil
}

func (r *RedisSchedulerRepo) Release(ctx context.Context, masterID, date, at string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	keys := []string{slotKey(masterID, date, at), dayKey(masterID, date), reservedIndexKey}
	if err := releaseScript.Run(ctx, r.client, keys, at, indexMember(masterID, date, at)).Err(); err != nil {
		return fmt.Errorf("error releasing slot %s %s %s: %w", masterID, date, at, err)
	}
	return nil
}

func (r *RedisSchedulerRepo) ReleaseHeld(ctx context.Context, held models.ScheduleEntry) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	reservedAt := ""
	if !held.ReservedAt.IsZero() {
		reservedAt = strconv.FormatInt(held.ReservedAt.UTC().UnixMilli(), 10)
	}
	keys := []string{slotKey(held.MasterID, held.Date, held.Time), dayKey(held.MasterID, held.Date), reservedIndexKey}
	n, err := releaseHeldScript.Run(ctx, r.client, keys,
		held.Time, indexMember(held.MasterID, held.Date, held.Time), held.Occupant, reservedAt).Int()
	if err != nil {
		return false, fmt.Errorf("error releasing slot %s %s %s: %w", held.MasterID, held.Date, held.Time, err)
	}
	return n == 1, nil
}

func (r *RedisSchedulerRepo) ListOccupied(ctx context.Context, masterID, date string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	times, err := r.client.SMembers(ctx, dayKey(masterID, date)).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing occupied slots for %s on %s: %w", masterID, date, err)
	}
	sort.Strings(times)
	return times, nil
}

func (r *RedisSchedulerRepo) ListReservedBefore(ctx context.Context, cutoff time.Time) ([]models.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Exclusive upper bound: strictly before cutoff.
	members, err := r.client.ZRangeByScoreWithScores(ctx, reservedIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UTC().UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("error scanning reservation index: %w", err)
	}

	entries := make([]models.ScheduleEntry, 0, len(members))
	for _, z := range members {
		member, _ := z.Member.(string)
		masterID, date, at, ok := parseIndexMember(member)
		if !ok {
			continue
		}
		occupant, err := r.client.HGet(ctx, slotKey(masterID, date, at), "occupant").Result()
		if err == redis.Nil {
			// Released between the scan and the lookup.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading slot %s: %w", member, err)
		}
		entries = append(entries, models.ScheduleEntry{
			MasterID:   masterID,
			Date:       date,
			Time:       at,
			Occupant:   occupant,
			ReservedAt: time.UnixMilli(int64(z.Score)).UTC(),
		})
	}
	return entries, nil
}
