// control/limits.go
// Author: momentics <momentics@gmail.com>
//
// Live group limit tuning driven by ConfigStore keys.

package control

import (
	"fmt"
	"log/slog"

	"github.com/momentics/hioload-buf/pool"
)

// LimitKeys returns the config keys that carry a group's count and size
// limits, e.g. "bufpool.decoder.limit_count".
func LimitKeys(tag string) (count, size string) {
	prefix := "bufpool." + tag + "."
	return prefix + "limit_count", prefix + "limit_size"
}

// BindGroupLimits applies the group's limit keys on every reload. A key
// that is absent keeps the current limit. Rejected values are logged and
// leave the group unchanged.
func BindGroupLimits(cs *ConfigStore, g *pool.Group, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	countKey, sizeKey := LimitKeys(g.Tag())
	cs.OnReload(func(cfg map[string]any) {
		rawCount, hasCount := cfg[countKey]
		rawSize, hasSize := cfg[sizeKey]
		if !hasCount && !hasSize {
			return
		}
		st := g.Stats()
		count, size := st.LimitCount, st.LimitSize
		var err error
		if hasCount {
			var n int64
			if n, err = toInt64(rawCount); err == nil {
				count = int(n)
			}
		}
		if err == nil && hasSize {
			size, err = toInt64(rawSize)
		}
		if err == nil {
			err = g.SetLimits(count, size)
		}
		if err != nil {
			log.Warn("group limit reload rejected", "group", g.ID(), "tag", g.Tag(), "error", err)
		}
	})
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("limit value %v has type %T", v, v)
	}
}
