// Package reminderredis stores reminder tasks in redis: one hash per
// appointment plus a sorted set of pending tasks scored by fire time.
package reminderredis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
)

const defaultPrefix = "barbershop"

var upsertScript = redis.NewScript(`
redis.call('HSET', KEYS[1], 'fire_at', ARGV[1], 'status', 'pending', 'detail', '')
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

var ensureScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'fire_at', ARGV[1], 'status', 'pending', 'detail', '', 'attempts', 0)
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

var cancelScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'status') ~= 'pending' then
  return 0
end
redis.call('HSET', KEYS[1], 'status', 'cancelled')
redis.call('ZREM', KEYS[2], ARGV[1])
return 1
`)

var claimScript = redis.NewScript(`
local cur = redis.call('HMGET', KEYS[1], 'status', 'fire_at')
if cur[1] ~= 'pending' or cur[2] ~= ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1], 'status', 'sending')
redis.call('HINCRBY', KEYS[1], 'attempts', 1)
redis.call('ZREM', KEYS[2], ARGV[2])
return 1
`)

var finishScript = redis.NewScript(`
local cur = redis.call('HMGET', KEYS[1], 'status', 'fire_at')
if cur[1] ~= 'sending' or cur[2] ~= ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[2], 'detail', ARGV[3])
return 1
`)

type Store struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Open parses a redis:// URL and checks the connection.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func (s *Store) taskKey(id uint) string {
	return fmt.Sprintf("%s:reminder:%d", s.prefix, id)
}

func (s *Store) pendingKey() string {
	return s.prefix + ":reminders:pending"
}

func member(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func score(t time.Time) string {
	return strconv.FormatInt(t.UTC().Unix(), 10)
}

func (s *Store) Upsert(ctx context.Context, appointmentID uint, fireAt time.Time) error {
	err := upsertScript.Run(ctx, s.client,
		[]string{s.taskKey(appointmentID), s.pendingKey()},
		score(fireAt), member(appointmentID),
	).Err()
	if err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}
	return nil
}

func (s *Store) EnsurePending(ctx context.Context, appointmentID uint, fireAt time.Time) (bool, error) {
	n, err := ensureScript.Run(ctx, s.client,
		[]string{s.taskKey(appointmentID), s.pendingKey()},
		score(fireAt), member(appointmentID),
	).Int()
	if err != nil {
		return false, fmt.Errorf("ensure reminder: %w", err)
	}
	return n == 1, nil
}

func (s *Store) Cancel(ctx context.Context, appointmentID uint) (bool, error) {
	n, err := cancelScript.Run(ctx, s.client,
		[]string{s.taskKey(appointmentID), s.pendingKey()},
		member(appointmentID),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cancel reminder: %w", err)
	}
	return n == 1, nil
}

func (s *Store) Claim(ctx context.Context, appointmentID uint, fireAt time.Time) (bool, error) {
	n, err := claimScript.Run(ctx, s.client,
		[]string{s.taskKey(appointmentID), s.pendingKey()},
		score(fireAt), member(appointmentID),
	).Int()
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	return n == 1, nil
}

func (s *Store) Finish(ctx context.Context, appointmentID uint, fireAt time.Time, status reminder.Status, detail string) error {
	err := finishScript.Run(ctx, s.client,
		[]string{s.taskKey(appointmentID), s.pendingKey()},
		score(fireAt), string(status), detail,
	).Err()
	if err != nil {
		return fmt.Errorf("finish reminder: %w", err)
	}
	return nil
}

func (s *Store) ListPending(ctx context.Context, before time.Time) ([]reminder.Task, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.pendingKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + score(before),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}

	out := make([]reminder.Task, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		t, ok, err := s.Get(ctx, uint(id))
		if err != nil {
			return nil, err
		}
		if ok && t.Status == reminder.StatusPending {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, appointmentID uint) (*reminder.Task, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.taskKey(appointmentID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("get reminder: %w", err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	secs, err := strconv.ParseInt(fields["fire_at"], 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("get reminder: bad fire_at %q: %w", fields["fire_at"], err)
	}
	return &reminder.Task{
		AppointmentID: appointmentID,
		FireAt:        time.Unix(secs, 0).UTC(),
		Status:        reminder.Status(fields["status"]),
		Detail:        fields["detail"],
	}, true, nil
}

var _ reminder.Store = (*Store)(nil)
