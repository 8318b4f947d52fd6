package api

import (
	"net/http"

	"foodshare/internal/db"
	"foodshare/internal/models"
	"foodshare/internal/utils"
)

// The handlers below are shared by both collections; each route only picks
// the collection, the filter and the update allow-list.

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request, name string, coll db.Collection, filter db.Filter) {
	docs, err := coll.Find(r.Context(), filter)
	if err != nil {
		s.storeFailure(w, r, name, "find", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, docs)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request, name string, coll db.Collection) {
	doc, err := coll.FindByID(r.Context(), utils.GetIDFromPath(r))
	if err != nil {
		s.storeFailure(w, r, name, "find_by_id", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) insertDocument(w http.ResponseWriter, r *http.Request, name string, coll db.Collection) {
	doc, err := decodeDocument(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	res, err := coll.Insert(r.Context(), doc)
	if err != nil {
		s.storeFailure(w, r, name, "insert", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// upsertDocument sets exactly the allow-listed fields; fields missing from
// the body are written as null.
func (s *Server) upsertDocument(w http.ResponseWriter, r *http.Request, name string, coll db.Collection, fields []string) {
	body, err := decodeDocument(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	res, err := coll.UpsertByID(r.Context(), utils.GetIDFromPath(r), models.Pick(body, fields))
	if err != nil {
		s.storeFailure(w, r, name, "upsert", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request, name string, coll db.Collection) {
	res, err := coll.DeleteByID(r.Context(), utils.GetIDFromPath(r))
	if err != nil {
		s.storeFailure(w, r, name, "delete", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}
