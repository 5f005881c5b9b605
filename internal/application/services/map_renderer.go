package services

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

const (
	// LatestMapKey always holds the most recently rendered map.
	LatestMapKey = "map.html"
	mapKeyPrefix = "maps/"
	mapURLPrefix = "/static/"
	mapZoom      = 14
)

// MapView is what a rendered map shows.
type MapView struct {
	Center      entities.Location
	CenterLabel string
	Hospitals   []*entities.Hospital
}

type mapMarker struct {
	Latitude  float64
	Longitude float64
	Popup     string
}

type mapPage struct {
	Center      entities.Location
	CenterLabel string
	Zoom        int
	Markers     []mapMarker
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Hospitals near {{.CenterLabel}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; width: 100%; margin: 0; padding: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.Center.Latitude}}, {{.Center.Longitude}}], {{.Zoom}});
L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
  maxZoom: 19,
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
var blueIcon = new L.Icon.Default();
var hospitalIcon = L.icon({
  iconUrl: "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-red.png",
  shadowUrl: "https://unpkg.com/leaflet@1.9.4/dist/images/marker-shadow.png",
  iconSize: [25, 41], iconAnchor: [12, 41], popupAnchor: [1, -34], shadowSize: [41, 41]
});
L.marker([{{.Center.Latitude}}, {{.Center.Longitude}}], {icon: blueIcon}).addTo(map).bindPopup({{.CenterLabel}});
{{range .Markers}}L.marker([{{.Latitude}}, {{.Longitude}}], {icon: hospitalIcon}).addTo(map).bindPopup({{.Popup}});
{{end}}</script>
</body>
</html>
`))

// MapRenderer writes Leaflet pages for hospital search results.
type MapRenderer struct {
	store providers.MapStore
}

// NewMapRenderer creates a renderer that writes to store.
func NewMapRenderer(store providers.MapStore) *MapRenderer {
	return &MapRenderer{store: store}
}

// Render builds the page for view, stores it under maps/<searchID>.html and
// as the latest map, and returns the URL it is served from.
func (r *MapRenderer) Render(ctx context.Context, searchID string, view MapView) (string, error) {
	page, err := RenderMapHTML(view)
	if err != nil {
		return "", err
	}

	key := mapKeyPrefix + searchID + ".html"
	if err := r.store.Put(ctx, key, page, "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("failed to store map %s: %w", key, err)
	}
	if err := r.store.Put(ctx, LatestMapKey, page, "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("failed to store latest map: %w", err)
	}
	return mapURLPrefix + key, nil
}

// RenderMapHTML returns the Leaflet page for view. Hospitals without
// coordinates are left off the map.
func RenderMapHTML(view MapView) ([]byte, error) {
	label := view.CenterLabel
	if label == "" {
		label = "You are here!"
	}

	data := mapPage{Center: view.Center, CenterLabel: label, Zoom: mapZoom}
	for _, h := range view.Hospitals {
		loc, ok := h.Location()
		if !ok {
			continue
		}
		data.Markers = append(data.Markers, mapMarker{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Popup:     hospitalPopup(h),
		})
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render map: %w", err)
	}
	return buf.Bytes(), nil
}

func hospitalPopup(h *entities.Hospital) string {
	return fmt.Sprintf("<b>%s</b><br>Specialization: %s<br>Rating: %s",
		html.EscapeString(h.Name),
		html.EscapeString(h.Specialization),
		html.EscapeString(h.Rating.String()),
	)
}
