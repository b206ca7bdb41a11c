package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmorey/pagechat/internal/document"
	"github.com/dmorey/pagechat/internal/render"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePagerState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"current": s.pages.Current(),
		"total":   s.pages.Total(),
	})
}

type pageNavRequest struct {
	Action string `json:"action"`
	Page   int    `json:"page"`
}

// handlePageNav moves the pager. Out-of-range "goto" targets leave the
// current page unchanged; "next" and "prev" clamp at the bounds.
func (s *Server) handlePageNav(w http.ResponseWriter, r *http.Request) {
	var req pageNavRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "next":
		s.pages.Next()
	case "prev":
		s.pages.Prev()
	case "goto":
		s.pages.GoTo(req.Page)
	default:
		jsonError(w, "action must be next, prev or goto", http.StatusBadRequest)
		return
	}

	s.handlePagerState(w, r)
}

func (s *Server) handlePageText(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		jsonError(w, "invalid page number", http.StatusBadRequest)
		return
	}

	doc := s.session.Document()
	if doc == nil {
		jsonError(w, "no document loaded", http.StatusNotFound)
		return
	}

	text, err := doc.Lookup(n)
	if err != nil {
		if errors.Is(err, document.ErrPageNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"page": n,
		"text": text,
	})
}

func (s *Server) handlePageImage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		jsonError(w, "invalid page number", http.StatusBadRequest)
		return
	}

	scale := 1.0
	if v := r.URL.Query().Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			jsonError(w, "invalid scale", http.StatusBadRequest)
			return
		}
		scale = render.ClampScale(f)
	}

	img, err := s.renderer.RenderPage(r.Context(), n, scale)
	if err != nil {
		s.log.Error("render page failed", "page", n, "error", err)
		jsonError(w, "page image unavailable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}
