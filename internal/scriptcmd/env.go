// SPDX-License-Identifier: MPL-2.0

package scriptcmd

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// EnvName converts a field name to an environment variable suffix:
// "dry-run" becomes "DRY_RUN".
func EnvName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// EnvValue renders a validated value for the environment. Structured values
// are JSON-encoded.
func EnvValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case int, int64, int32, uint, uint64, uint32:
		return fmt.Sprint(x), true
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x), true
		}
		return string(data), true
	}
}

func paramEnv(prefix string, values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if s, ok := EnvValue(values[k]); ok {
			out = append(out, prefix+EnvName(k)+"="+s)
		}
	}
	return out
}
