package natsadapter

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/geoext/internal/core/domain"
)

// SubjectPrefix roots every feature event subject.
const SubjectPrefix = "geoext.feature."

// Subject returns the subject an event of type t is published on.
func Subject(t domain.FeatureEventType) string {
	return SubjectPrefix + string(t)
}

// EncodeEvent serialises ev as a protobuf Struct.
func EncodeEvent(ev *domain.FeatureEvent) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"type":       string(ev.Type),
		"feature_id": ev.FeatureID,
		"name":       ev.Name,
		"kind":       ev.Kind,
		"wkt":        ev.WKT,
		"at":         ev.At.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeEvent is the inverse of EncodeEvent.
func DecodeEvent(data []byte) (*domain.FeatureEvent, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	fields := s.GetFields()
	str := func(k string) string { return fields[k].GetStringValue() }

	ev := &domain.FeatureEvent{
		Type:      domain.FeatureEventType(str("type")),
		FeatureID: str("feature_id"),
		Name:      str("name"),
		Kind:      str("kind"),
		WKT:       str("wkt"),
	}
	if ev.FeatureID == "" {
		return nil, fmt.Errorf("decode event: missing feature_id")
	}
	if at := str("at"); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("decode event time: %w", err)
		}
		ev.At = t
	}
	return ev, nil
}

// EventJSON renders an encoded event as JSON for websocket clients.
func EventJSON(data []byte) ([]byte, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return protojson.Marshal(&s)
}
