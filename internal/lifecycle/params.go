// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/invowk/cmdkit/pkg/command"
)

// DecodeParams decodes validated values into target, a pointer returned by
// Definition.Params. Args are applied first and flags second, so a flag
// wins over an arg of the same name. Fields match by their mapstructure tag
// or, without one, case-insensitively by name.
func DecodeParams(target any, v command.Values) (any, error) {
	if target == nil {
		return nil, nil
	}
	if rv := reflect.ValueOf(target); rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("params constructor must return a non-nil pointer, got %T", target)
	}

	merged := make(map[string]any, len(v.Args)+len(v.Flags))
	for k, val := range v.Args {
		merged[k] = val
	}
	for k, val := range v.Flags {
		merged[k] = val
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build params decoder: %w", err)
	}
	if err := decoder.Decode(merged); err != nil {
		return nil, fmt.Errorf("failed to decode params: %w", err)
	}
	return target, nil
}
