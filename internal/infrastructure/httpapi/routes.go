package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/infrastructure/visualizer"
)

const graphKey = "graph"

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	People int    `json:"people"`
	Source string `json:"source,omitempty"`
}

// SearchResponse is the body of GET /api/people.
type SearchResponse struct {
	Query  string                `json:"query"`
	People []handlers.PersonView `json:"people"`
}

// requireGraph aborts with 503 until a graph is published.
func (s *Server) requireGraph(c *gin.Context) {
	g := s.graph.Load()
	if g == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrNoGraph.Error(),
			Code:  "NOT_READY",
		})
		return
	}
	c.Set(graphKey, g)
	c.Next()
}

func graphOf(c *gin.Context) *handlers.Graph {
	return c.MustGet(graphKey).(*handlers.Graph)
}

func (s *Server) handleHealth(c *gin.Context) {
	g := s.graph.Load()
	if g == nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "loading"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		People: len(g.People()),
		Source: g.Source,
	})
}

func (s *Server) handlePage(c *gin.Context) {
	g := s.graph.Load()
	if g == nil {
		c.String(http.StatusServiceUnavailable, ErrNoGraph.Error())
		return
	}

	view := g.View()
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := visualizer.Render(c.Writer, visualizer.Page{
		Title:     s.opts.Title,
		Graph:     view,
		APIBase:   "/api",
		NodeCount: len(view.Nodes),
		EdgeCount: len(view.Links),
	})
	if err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) handleGraph(c *gin.Context) {
	c.JSON(http.StatusOK, graphOf(c).View())
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, graphOf(c).Stats())
}

func (s *Server) handleDerived(c *gin.Context) {
	c.JSON(http.StatusOK, graphOf(c).DerivedEdges())
}

func (s *Server) handleSearch(c *gin.Context) {
	q := c.Query("q")
	c.JSON(http.StatusOK, SearchResponse{Query: q, People: graphOf(c).Search(q)})
}

func (s *Server) handleDetail(c *gin.Context) {
	detail, err := graphOf(c).Detail(c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		code := "INTERNAL"
		switch {
		case errors.Is(err, entities.ErrPersonNotFound):
			status, code = http.StatusNotFound, "NOT_FOUND"
		case errors.Is(err, entities.ErrAmbiguousName):
			status, code = http.StatusConflict, "AMBIGUOUS"
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	c.JSON(http.StatusOK, detail)
}
