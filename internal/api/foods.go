package api

import (
	"net/http"

	"foodshare/internal/db"
	"foodshare/internal/models"
	"foodshare/internal/utils"
)

func (s *Server) listFoods(w http.ResponseWriter, r *http.Request) {
	s.listDocuments(w, r, models.FoodsCollection, s.foods, db.Filter{})
}

func (s *Server) countFoods(w http.ResponseWriter, r *http.Request) {
	n, err := s.foods.EstimatedCount(r.Context())
	if err != nil {
		s.storeFailure(w, r, models.FoodsCollection, "count", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.CountResponse{Count: n})
}

func (s *Server) getFood(w http.ResponseWriter, r *http.Request) {
	s.getDocument(w, r, models.FoodsCollection, s.foods)
}

func (s *Server) createFood(w http.ResponseWriter, r *http.Request) {
	s.insertDocument(w, r, models.FoodsCollection, s.foods)
}

func (s *Server) updateFood(w http.ResponseWriter, r *http.Request) {
	s.upsertDocument(w, r, models.FoodsCollection, s.foods, models.FoodUpdateFields)
}

func (s *Server) deleteFood(w http.ResponseWriter, r *http.Request) {
	s.deleteDocument(w, r, models.FoodsCollection, s.foods)
}
