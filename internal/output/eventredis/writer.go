// Package eventredis exports engine events to Redis: every event is appended to a
// capped list and incidents update per-sensor counters.
package eventredis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"hydrovigil/pkg/models"
)

// Config configures Redis access for event export.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// MaxLen caps the event list; 0 keeps everything.
	MaxLen int64
}

// SensorStats are the accumulated incident counters of one sensor.
type SensorStats struct {
	SensorID  string           `json:"sensor_id"`
	Incidents int64            `json:"incidents"`
	Severity  map[string]int64 `json:"severity"`
	LastSeen  time.Time        `json:"last_seen,omitempty"`
}

// Writer pushes events and counters through a Redis pipeline.
type Writer struct {
	client *redis.Client
	prefix string
	maxLen int64
}

// NewWriter connects to Redis and verifies the connection.
func NewWriter(cfg Config) (*Writer, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = "hydrovigil"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis event export: %w", err)
	}

	return &Writer{client: client, prefix: strings.TrimSpace(cfg.KeyPrefix), maxLen: cfg.MaxLen}, nil
}

// countIncident bumps a sensor's counters once per incident. The hash keeps a
// (last_ts, last_id) watermark, so replaying a batch leaves the counters unchanged.
// KEYS: sensor hash, sensor index. ARGV: ts millis, incident id, severity field, sensor id.
var countIncident = redis.NewScript(`
local ts = tonumber(ARGV[1])
local id = tonumber(ARGV[2])
local lastTs = tonumber(redis.call('HGET', KEYS[1], 'last_ts') or '0')
local lastID = tonumber(redis.call('HGET', KEYS[1], 'last_id') or '0')
if ts < lastTs or (ts == lastTs and id <= lastID) then
  return 0
end
redis.call('HSET', KEYS[1], 'last_ts', ARGV[1], 'last_id', ARGV[2])
redis.call('HINCRBY', KEYS[1], 'incidents', 1)
redis.call('HINCRBY', KEYS[1], ARGV[3], 1)
redis.call('ZADD', KEYS[2], 'GT', math.floor(ts / 1000), ARGV[4])
return 1
`)

// WriteEvents appends events to the list and updates sensor counters in one
// MULTI/EXEC transaction.
func (w *Writer) WriteEvents(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(events))
	for _, ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		values = append(values, b)
	}

	_, err := w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, w.eventsKey(), values...)
		if w.maxLen > 0 {
			pipe.LTrim(ctx, w.eventsKey(), -w.maxLen, -1)
		}
		for _, ev := range events {
			inc := ev.Incident
			if ev.Type != models.EventIncident || inc == nil || inc.SensorID == "" {
				continue
			}
			countIncident.Eval(ctx, pipe,
				[]string{w.sensorKey(inc.SensorID), w.sensorsKey()},
				inc.Timestamp.UnixMilli(), inc.ID, "severity:"+string(inc.Severity), inc.SensorID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("push events to redis: %w", err)
	}
	return nil
}

// Sensors returns counters for every sensor that has reported an incident,
// most recently seen first.
func (w *Writer) Sensors(ctx context.Context) ([]SensorStats, error) {
	members, err := w.client.ZRevRangeWithScores(ctx, w.sensorsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read redis sensor set: %w", err)
	}

	out := make([]SensorStats, 0, len(members))
	for _, z := range members {
		id, ok := z.Member.(string)
		if !ok || id == "" {
			continue
		}
		hash, err := w.client.HGetAll(ctx, w.sensorKey(id)).Result()
		if err != nil || len(hash) == 0 {
			continue
		}
		st := SensorStats{SensorID: id, Severity: map[string]int64{}}
		st.Incidents, _ = strconv.ParseInt(hash["incidents"], 10, 64)
		for field, v := range hash {
			if sev, ok := strings.CutPrefix(field, "severity:"); ok {
				n, _ := strconv.ParseInt(v, 10, 64)
				st.Severity[sev] = n
			}
		}
		if z.Score > 0 {
			st.LastSeen = time.Unix(int64(z.Score), 0).UTC()
		}
		out = append(out, st)
	}
	return out, nil
}

// Close closes Redis resources.
func (w *Writer) Close() error {
	if w == nil || w.client == nil {
		return nil
	}
	return w.client.Close()
}

func (w *Writer) eventsKey() string {
	return w.prefix + ":events"
}

func (w *Writer) sensorsKey() string {
	return w.prefix + ":sensors"
}

func (w *Writer) sensorKey(id string) string {
	return w.prefix + ":sensor:" + id
}
