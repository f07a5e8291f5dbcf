package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/graphstore/memory"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
)

// GraphHandler loads a dataset and derives its implicit relationships.
type GraphHandler struct {
	source  ports.Source
	lineage *services.LineageService
	logger  *zap.Logger
}

// NewGraphHandler creates a new GraphHandler.
func NewGraphHandler(source ports.Source, logger *zap.Logger) *GraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphHandler{
		source:  source,
		lineage: services.NewLineageService(logger),
		logger:  logger,
	}
}

// Source returns the dataset source description.
func (h *GraphHandler) Source() string {
	return h.source.Describe()
}

// Load reads the dataset, builds a fresh store and derives it.
// A failed load returns no graph at all.
func (h *GraphHandler) Load(ctx context.Context) (*Graph, error) {
	ds, err := h.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	store, err := memory.NewStore(ds.People, ds.Relationships)
	if err != nil {
		return nil, fmt.Errorf("building graph from %s: %w", h.source.Describe(), err)
	}

	derived, err := h.lineage.Derive(store)
	if err != nil {
		return nil, fmt.Errorf("deriving relationships: %w", err)
	}

	h.logger.Info("graph loaded",
		zap.String("source", h.source.Describe()),
		zap.Int("people", len(ds.People)),
		zap.Int("edges", len(ds.Relationships)),
		zap.Int("derived", derived.Total()),
	)

	return &Graph{
		Source:    h.source.Describe(),
		LoadedAt:  time.Now(),
		Derived:   derived,
		store:     store,
		relations: services.NewRelationshipService(store, h.logger),
	}, nil
}

// Graph is a derived family graph. It is never modified after Load.
type Graph struct {
	Source   string
	LoadedAt time.Time
	Derived  *services.DerivationResult

	store     *memory.Store
	relations *services.RelationshipService
}

// PersonRef is a short reference to a person for listings.
type PersonRef struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Lifespan string `json:"lifespan,omitempty"`
}

// PersonView is a person with derived display fields and parent ids.
type PersonView struct {
	entities.Person
	Label    string   `json:"label"`
	Lifespan string   `json:"lifespan,omitempty"`
	Parents  []string `json:"parents"`
}

// DetailView lists a person's relatives by relation.
type DetailView struct {
	Person   PersonView  `json:"person"`
	Parents  []PersonRef `json:"parents"`
	Spouses  []PersonRef `json:"spouses"`
	Siblings []PersonRef `json:"siblings"`
	Children []PersonRef `json:"children"`
	Cousins  []PersonRef `json:"cousins"`
}

// GraphView is the whole graph in the node/link shape D3 consumes.
type GraphView struct {
	Nodes []PersonView            `json:"nodes"`
	Links []entities.Relationship `json:"links"`
}

// GraphStats summarizes a loaded graph.
type GraphStats struct {
	Source   string         `json:"source"`
	LoadedAt time.Time      `json:"loadedAt"`
	People   int            `json:"people"`
	Edges    map[string]int `json:"edges"`
	Derived  int            `json:"derived"`
}

func ref(p *entities.Person) PersonRef {
	return PersonRef{ID: p.ID, Label: p.FullName(), Lifespan: p.Lifespan()}
}

func refs(people []entities.Person) []PersonRef {
	out := make([]PersonRef, len(people))
	for i := range people {
		out[i] = ref(&people[i])
	}
	return out
}

func (g *Graph) view(p *entities.Person) PersonView {
	return PersonView{
		Person:   *p,
		Label:    p.FullName(),
		Lifespan: p.Lifespan(),
		Parents:  g.Derived.Parents.Of(p.ID),
	}
}

// People returns every person in dataset order.
func (g *Graph) People() []entities.Person {
	return g.store.Nodes()
}

// Edges returns every edge, input first then derived.
func (g *Graph) Edges() []entities.Relationship {
	return g.store.Edges()
}

// DerivedEdges returns the sibling then cousin edges added by derivation.
func (g *Graph) DerivedEdges() []entities.Relationship {
	out := make([]entities.Relationship, 0, g.Derived.Total())
	out = append(out, g.Derived.Siblings...)
	return append(out, g.Derived.Cousins...)
}

// Resolve finds a person by id, or failing that by name.
func (g *Graph) Resolve(idOrName string) (*entities.Person, error) {
	if p, err := g.store.GetNode(idOrName); err == nil {
		return p, nil
	}

	matches := g.store.FindByName(idOrName)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", entities.ErrPersonNotFound, idOrName)
	case 1:
		return &matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i := range matches {
			ids[i] = matches[i].ID
		}
		return nil, fmt.Errorf("%w: %q matches ids %s", entities.ErrAmbiguousName, idOrName, strings.Join(ids, ", "))
	}
}

// Detail returns the relatives of the person named by id or name.
func (g *Graph) Detail(idOrName string) (*DetailView, error) {
	p, err := g.Resolve(idOrName)
	if err != nil {
		return nil, err
	}

	detail, err := g.relations.Detail(p.ID)
	if err != nil {
		return nil, err
	}

	return &DetailView{
		Person:   g.view(&detail.Person),
		Parents:  refs(detail.Parents),
		Spouses:  refs(detail.Spouses),
		Siblings: refs(detail.Siblings),
		Children: refs(detail.Children),
		Cousins:  refs(detail.Cousins),
	}, nil
}

// View returns the whole graph for rendering.
func (g *Graph) View() *GraphView {
	people := g.store.Nodes()
	nodes := make([]PersonView, len(people))
	for i := range people {
		nodes[i] = g.view(&people[i])
	}
	return &GraphView{Nodes: nodes, Links: g.store.Edges()}
}

// Search returns people whose full name contains query, case-insensitively.
// An empty query matches everyone.
func (g *Graph) Search(query string) []PersonView {
	q := entities.NormalizeName(query)
	people := g.store.Nodes()
	out := make([]PersonView, 0, len(people))
	for i := range people {
		if q == "" || strings.Contains(entities.NormalizeName(people[i].FullName()), q) {
			out = append(out, g.view(&people[i]))
		}
	}
	return out
}

// Stats returns node and edge counts.
func (g *Graph) Stats() GraphStats {
	people, byType := g.store.Stats()
	edges := make(map[string]int, len(byType))
	for t, n := range byType {
		edges[string(t)] = n
	}
	return GraphStats{
		Source:   g.Source,
		LoadedAt: g.LoadedAt,
		People:   people,
		Edges:    edges,
		Derived:  g.Derived.Total(),
	}
}

// RecordMetrics publishes the graph size to the metrics gauges.
func (g *Graph) RecordMetrics() {
	people, byType := g.store.Stats()
	metrics.GraphNodes.Set(float64(people))
	for _, t := range entities.RelationTypes {
		metrics.GraphEdges.WithLabelValues(string(t)).Set(float64(byType[t]))
	}
}

