package handlers

import "net/http"

// Home handles GET /
func Home(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Welcome to the Doctor Finder API",
		"endpoints": map[string]string{
			"/map":                  "POST - Find nearby hospitals based on location and symptoms",
			"/city_hospitals":       "POST - Find hospitals in a specified city based on symptoms",
			"/classify":             "POST - Map symptoms to medical specialties",
			"/extract":              "POST - Extract and highlight diseases in an uploaded PDF",
			"/api/generate-summary": "POST - Summarise a dermatology intake form",
			"/api/searches":         "GET - Recent hospital searches",
			"/api/hospitals/indexed": "GET - Search previously found hospitals",
		},
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
