// Package featureflags evaluates rollout flags parsed from configuration.
// Flags gate experimental behavior per user without a redeploy.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

type flagKind int

const (
	flagOff flagKind = iota
	flagOn
	flagPercent
)

type flag struct {
	kind    flagKind
	percent int
	raw     string
}

// Manager holds flags parsed from a comma-separated key=value list, for
// example "quiet_mode=on,ranked_timeline=25%,sms_posting=off". A percentage
// rolls the flag out to a stable per-user bucket.
type Manager struct {
	flags map[string]flag
}

// NewManager parses the config string. Malformed entries are dropped.
func NewManager(raw string) *Manager {
	flags := make(map[string]flag)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := normalize(parts[0])
		value := normalize(parts[1])
		if name == "" || value == "" {
			continue
		}
		flags[name] = parseValue(value)
	}
	return &Manager{flags: flags}
}

func parseValue(value string) flag {
	switch value {
	case "on", "true", "1":
		return flag{kind: flagOn, raw: value}
	case "off", "false", "0":
		return flag{kind: flagOff, raw: value}
	}
	if pct, ok := strings.CutSuffix(value, "%"); ok {
		n, err := strconv.Atoi(pct)
		if err == nil && n > 0 {
			return flag{kind: flagPercent, percent: n, raw: value}
		}
	}
	return flag{kind: flagOff, raw: value}
}

// Enabled reports whether a flag is on for the given user. Unknown flags are
// off. Percentage flags are off for anonymous viewers (userID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	f, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	switch f.kind {
	case flagOn:
		return true
	case flagPercent:
		if f.percent >= 100 {
			return true
		}
		if userID == 0 {
			return false
		}
		return bucket(name, userID) < f.percent
	default:
		return false
	}
}

// Raw returns the configured flag values as written.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for name, f := range m.flags {
		out[name] = f.raw
	}
	return out
}

// Snapshot evaluates every flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket maps a (flag, user) pair onto 0..99. The hash keeps a user in or
// out of a rollout consistently across requests.
func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
