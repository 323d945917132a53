package graph

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/persistorai/docgraph/internal/models"
)

// arena hands out one wrapper per element id. Reading an id that is already interned
// refreshes the existing wrapper with the new document and returns it, so callers
// holding the wrapper see the latest read. Entries are evicted least recently used.
type arena struct {
	cache *lru.Cache[string, models.GraphElement]
}

func newArena(size int) *arena {
	if size <= 0 {
		return &arena{}
	}
	cache, err := lru.New[string, models.GraphElement](size)
	if err != nil {
		return &arena{}
	}
	return &arena{cache: cache}
}

func (a *arena) vertex(doc *models.Document) *models.Vertex {
	if a.cache != nil {
		if el, ok := a.cache.Get(doc.ID()); ok {
			if v, ok := el.(*models.Vertex); ok {
				v.Reset(doc)
				return v
			}
		}
	}
	v := models.NewVertex(doc)
	if a.cache != nil {
		a.cache.Add(doc.ID(), v)
	}
	return v
}

func (a *arena) edge(doc *models.Document) *models.Edge {
	if a.cache != nil {
		if el, ok := a.cache.Get(doc.ID()); ok {
			if e, ok := el.(*models.Edge); ok {
				e.Reset(doc)
				return e
			}
		}
	}
	e := models.NewEdge(doc)
	if a.cache != nil {
		a.cache.Add(doc.ID(), e)
	}
	return e
}

func (a *arena) forget(id string) {
	if a.cache != nil {
		a.cache.Remove(id)
	}
}

func (a *arena) len() int {
	if a.cache == nil {
		return 0
	}
	return a.cache.Len()
}
