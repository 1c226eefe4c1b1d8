package params

import (
	"strconv"

	"treasurechain/config"
	"treasurechain/core/events"
	"treasurechain/core/types"
)

const (
	EventTypeSettingAdded    = "params.setting.added"
	EventTypeSettingModified = "params.setting.modified"
	EventTypeSettingErased   = "params.setting.erased"
	EventTypePausesChanged   = "params.pauses.changed"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func SettingChangedEvent(kind string, s *Setting) *types.Event {
	attrs := map[string]string{"key": s.Key}
	if s.StringValue != "" {
		attrs["string"] = s.StringValue
	}
	if s.AssetValue != nil {
		attrs["asset"] = s.AssetValue.String()
	}
	if s.UintValue != 0 {
		attrs["uint"] = strconv.FormatUint(uint64(s.UintValue), 10)
	}
	return &types.Event{Type: kind, Attributes: attrs}
}

func PausesChangedEvent(p config.Pauses) *types.Event {
	return &types.Event{
		Type: EventTypePausesChanged,
		Attributes: map[string]string{
			"token":      strconv.FormatBool(p.Token),
			"treasure":   strconv.FormatBool(p.Treasure),
			"settlement": strconv.FormatBool(p.Settlement),
		},
	}
}
