package natsadapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samirrijal/geoext/internal/core/domain"
)

func TestEventRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 123456789, time.UTC)
	in := &domain.FeatureEvent{
		Type:      domain.FeatureCreated,
		FeatureID: "f-1",
		Name:      "Plaza",
		Kind:      "geo_point",
		WKT:       "SRID=4326;POINT(-2.93 43.26)",
		At:        at,
	}

	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.At.Equal(in.At) {
		t.Errorf("expected time %v, got %v", in.At, out.At)
	}
	out.At = in.At
	if *out != *in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0xff}); err == nil {
		t.Error("expected error for garbage payload")
	}

	data, _ := EncodeEvent(&domain.FeatureEvent{Type: domain.FeatureDeleted})
	if _, err := DecodeEvent(data); err == nil {
		t.Error("expected error for missing feature id")
	}
}

func TestEventJSON(t *testing.T) {
	data, _ := EncodeEvent(&domain.FeatureEvent{Type: domain.FeatureDeleted, FeatureID: "f-2", At: time.Unix(0, 0)})

	js, err := EventJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(js, &m); err != nil {
		t.Fatalf("invalid json %s: %v", js, err)
	}
	if m["type"] != "deleted" || m["feature_id"] != "f-2" {
		t.Errorf("unexpected payload %v", m)
	}
}

func TestSubject(t *testing.T) {
	if got := Subject(domain.FeatureCreated); got != "geoext.feature.created" {
		t.Errorf("unexpected subject %q", got)
	}
}
