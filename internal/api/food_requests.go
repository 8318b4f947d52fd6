package api

import (
	"net/http"

	"foodshare/internal/db"
	"foodshare/internal/models"
)

// listFoodRequests narrows to the caller's requests when email is given.
// OwnerOnly has already checked it against the token.
func (s *Server) listFoodRequests(w http.ResponseWriter, r *http.Request) {
	filter := db.Filter{}
	if email := r.URL.Query().Get("email"); email != "" {
		filter[models.FoodRequestOwnerField] = email
	}
	s.listDocuments(w, r, models.FoodRequestsCollection, s.requests, filter)
}

func (s *Server) getFoodRequest(w http.ResponseWriter, r *http.Request) {
	s.getDocument(w, r, models.FoodRequestsCollection, s.requests)
}

func (s *Server) createFoodRequest(w http.ResponseWriter, r *http.Request) {
	s.insertDocument(w, r, models.FoodRequestsCollection, s.requests)
}

func (s *Server) updateFoodRequest(w http.ResponseWriter, r *http.Request) {
	s.upsertDocument(w, r, models.FoodRequestsCollection, s.requests, models.FoodRequestUpdateFields)
}

func (s *Server) deleteFoodRequest(w http.ResponseWriter, r *http.Request) {
	s.deleteDocument(w, r, models.FoodRequestsCollection, s.requests)
}
