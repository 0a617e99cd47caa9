// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package models defines the Fix record and the wire types shared by the
// ingest API, the store file, and the viewer.
package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Fix is a single reported GPS sample.
//
// Latitude, longitude, and the client timestamp are mandatory at ingest;
// accuracy is optional. ServerTimestamp is assigned by the ingest service on
// receipt. Any other fields a client submits (heading, speed, battery level,
// whatever the capture page sends) are carried in Extra and survive the
// store round-trip verbatim.
type Fix struct {
	Latitude        float64
	Longitude       float64
	Timestamp       string
	Accuracy        *float64
	ServerTimestamp string

	// Extra holds client-supplied fields outside the known set.
	Extra map[string]interface{}
}

// knownFixFields are the JSON keys handled explicitly by Fix; everything
// else lands in Extra.
var knownFixFields = map[string]struct{}{
	"latitude":         {},
	"longitude":        {},
	"timestamp":        {},
	"accuracy":         {},
	"server_timestamp": {},
}

// MarshalJSON flattens the fix into a single JSON object, merging Extra
// back in alongside the known fields.
func (f Fix) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(f.Extra)+5)
	for k, v := range f.Extra {
		if _, known := knownFixFields[k]; known {
			continue
		}
		obj[k] = v
	}

	obj["latitude"] = f.Latitude
	obj["longitude"] = f.Longitude
	obj["timestamp"] = f.Timestamp
	if f.Accuracy != nil {
		obj["accuracy"] = *f.Accuracy
	}
	if f.ServerTimestamp != "" {
		obj["server_timestamp"] = f.ServerTimestamp
	}

	return json.Marshal(obj)
}

// UnmarshalJSON splits a fix object into the known fields and Extra.
func (f *Fix) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst interface{}) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		return json.Unmarshal(v, dst)
	}

	if err := take("latitude", &f.Latitude); err != nil {
		return err
	}
	if err := take("longitude", &f.Longitude); err != nil {
		return err
	}
	if err := take("timestamp", &f.Timestamp); err != nil {
		return err
	}
	if err := take("accuracy", &f.Accuracy); err != nil {
		return err
	}
	if err := take("server_timestamp", &f.ServerTimestamp); err != nil {
		return err
	}

	if len(raw) > 0 {
		f.Extra = make(map[string]interface{}, len(raw))
		for k, v := range raw {
			var val interface{}
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			f.Extra[k] = val
		}
	}

	return nil
}

// FixSubmission is the POST /location request body. Pointer fields
// distinguish "absent" from zero values so the required validation matches
// the ingest invariant exactly (latitude 0 is a valid coordinate).
type FixSubmission struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Timestamp *string  `json:"timestamp" validate:"required"`
	Accuracy  *float64 `json:"accuracy" validate:"omitempty,gte=0"`

	// Extra captures unknown fields for verbatim passthrough.
	Extra map[string]interface{} `json:"-"`
}

// UnmarshalJSON mirrors Fix.UnmarshalJSON: known keys into fields,
// everything else into Extra.
func (s *FixSubmission) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst interface{}) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		return json.Unmarshal(v, dst)
	}

	if err := take("latitude", &s.Latitude); err != nil {
		return err
	}
	if err := take("longitude", &s.Longitude); err != nil {
		return err
	}
	if err := take("timestamp", &s.Timestamp); err != nil {
		return err
	}
	if err := take("accuracy", &s.Accuracy); err != nil {
		return err
	}
	// server_timestamp is server-assigned; a client-supplied one is dropped.
	delete(raw, "server_timestamp")

	if len(raw) > 0 {
		s.Extra = make(map[string]interface{}, len(raw))
		for k, v := range raw {
			var val interface{}
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			s.Extra[k] = val
		}
	}

	return nil
}

// ToFix converts a validated submission into a stored Fix, stamping the
// server receipt time. Callers must validate the submission first.
func (s *FixSubmission) ToFix(receivedAt time.Time) Fix {
	return Fix{
		Latitude:        *s.Latitude,
		Longitude:       *s.Longitude,
		Timestamp:       *s.Timestamp,
		Accuracy:        s.Accuracy,
		ServerTimestamp: receivedAt.Format(time.RFC3339),
		Extra:           s.Extra,
	}
}
