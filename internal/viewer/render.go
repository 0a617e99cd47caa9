// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package viewer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locus/internal/models"
)

// Default map center when no fixes exist yet (Chennai).
const (
	defaultLat = 13.0827
	defaultLng = 80.2707

	zoomEmpty    = 10
	zoomWithData = 13
)

// mapPoint is one marker on the rendered map.
type mapPoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Popup string  `json:"popup"`
}

// mapData is the template context for the map document.
type mapData struct {
	GeneratedAt string
	CenterLat   float64
	CenterLng   float64
	Zoom        int
	Total       int
	LatestCoord string
	LatestTime  string
	// PointsJSON is a pre-marshaled array of mapPoint, safe to embed
	// because it is produced by the JSON encoder, never from raw input.
	PointsJSON template.JS
}

var mapTemplate = template.Must(template.New("map").Parse(mapHTML))

// Render produces a self-contained HTML map document for the given fixes,
// in insertion order. An empty input renders the default view with a
// "no data" marker.
func Render(fixes []models.Fix) (string, error) {
	data := mapData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		CenterLat:   defaultLat,
		CenterLng:   defaultLng,
		Zoom:        zoomEmpty,
		Total:       len(fixes),
		LatestCoord: "n/a",
		LatestTime:  "n/a",
	}

	points := make([]mapPoint, 0, len(fixes))
	for i, fix := range fixes {
		points = append(points, mapPoint{
			Lat:   fix.Latitude,
			Lng:   fix.Longitude,
			Popup: popupText(i, len(fixes), fix),
		})
	}

	if len(fixes) > 0 {
		var sumLat, sumLng float64
		for _, p := range points {
			sumLat += p.Lat
			sumLng += p.Lng
		}
		data.CenterLat = sumLat / float64(len(points))
		data.CenterLng = sumLng / float64(len(points))
		data.Zoom = zoomWithData

		last := fixes[len(fixes)-1]
		data.LatestCoord = fmt.Sprintf("%.6f, %.6f", last.Latitude, last.Longitude)
		data.LatestTime = last.Timestamp
	}

	pointsJSON, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("marshal points: %w", err)
	}
	data.PointsJSON = template.JS(pointsJSON) //nolint:gosec // encoder output, not raw input

	var buf strings.Builder
	if err := mapTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render map: %w", err)
	}
	return buf.String(), nil
}

// popupText builds the marker popup label for the i-th of total fixes.
func popupText(i, total int, fix models.Fix) string {
	var label string
	switch {
	case i == total-1:
		label = "Current"
	case i == 0:
		label = "Start"
	default:
		label = fmt.Sprintf("Point %d", i+1)
	}

	text := fmt.Sprintf("%s: %.6f, %.6f", label, fix.Latitude, fix.Longitude)
	if fix.Timestamp != "" {
		text += "<br>" + template.HTMLEscapeString(fix.Timestamp)
	}
	if fix.Accuracy != nil {
		text += fmt.Sprintf("<br>accuracy: %.0f m", *fix.Accuracy)
	}
	return text
}

const mapHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Locus Location Map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; margin: 0; }
.summary {
  background: rgba(255, 255, 255, 0.9);
  padding: 10px 14px;
  border-radius: 6px;
  box-shadow: 0 1px 4px rgba(0, 0, 0, 0.3);
  font: 13px/1.5 sans-serif;
}
.summary h4 { margin: 0 0 4px; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var points = {{.PointsJSON}};

var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLng}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

if (points.length > 1) {
  L.polyline(points.map(function (p) { return [p.lat, p.lng]; }), {
    color: 'blue', weight: 3, opacity: 0.7
  }).addTo(map);
}

points.forEach(function (p, i) {
  var color = 'blue';
  if (i === points.length - 1) { color = 'red'; }
  else if (i === 0) { color = 'green'; }
  L.circleMarker([p.lat, p.lng], {
    radius: i === points.length - 1 ? 9 : 6,
    color: color,
    fillColor: color,
    fillOpacity: 0.8
  }).bindPopup(p.popup).addTo(map);
});

if (points.length === 0) {
  L.marker([{{.CenterLat}}, {{.CenterLng}}])
    .bindPopup('No location data yet')
    .addTo(map);
}

var summary = L.control({position: 'topright'});
summary.onAdd = function () {
  var div = L.DomUtil.create('div', 'summary');
  div.innerHTML = '<h4>Location Summary</h4>'
    + 'Total points: {{.Total}}<br>'
    + 'Latest: {{.LatestCoord}}<br>'
    + 'Latest time: {{.LatestTime}}<br>'
    + 'Generated: {{.GeneratedAt}}';
  return div;
};
summary.addTo(map);
</script>
</body>
</html>
`
