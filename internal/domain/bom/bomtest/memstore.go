// Package bomtest provides in-memory material and edge stores for tests.
package bomtest

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/products"
	"github.com/Aurora209/inventory-system/internal/domain/units"
)

type Store struct {
	mu        sync.Mutex
	products  map[int64]products.Product
	edges     []bom.Edge
	nextEdge  int64
	FailEdges error // returned by ListByProduct when set
	lists     map[int64]int
}

func New() *Store {
	return &Store{products: make(map[int64]products.Product)}
}

// AddProduct registers a product; price and quantity are decimal strings.
func (s *Store) AddProduct(id int64, name, unit, price, quantity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = products.Product{
		ID:       id,
		SKU:      "SKU-" + name,
		Name:     name,
		Unit:     unit,
		Price:    decimal.RequireFromString(price),
		Quantity: decimal.RequireFromString(quantity),
	}
}

// AddEdge inserts an edge without validation so tests can build cycles.
func (s *Store) AddEdge(productID, materialID int64, qty, unit string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEdge++
	s.edges = append(s.edges, bom.Edge{
		ID:         s.nextEdge,
		ProductID:  productID,
		MaterialID: materialID,
		Quantity:   decimal.RequireFromString(qty),
		Unit:       unit,
	})
}

func (s *Store) GetByID(_ context.Context, id int64) (*products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) ListByProduct(_ context.Context, productID int64) ([]bom.Edge, error) {
	if s.FailEdges != nil {
		return nil, s.FailEdges
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lists == nil {
		s.lists = make(map[int64]int)
	}
	s.lists[productID]++
	var out []bom.Edge
	for _, e := range s.edges {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := s.products[out[i].MaterialID].Name, s.products[out[j].MaterialID].Name
		if ni != nj {
			return ni < nj
		}
		return out[i].MaterialID < out[j].MaterialID
	})
	return out, nil
}

// EdgeLists reports how many times ListByProduct was called for productID.
func (s *Store) EdgeLists(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[productID]
}

func (s *Store) GetBySKU(_ context.Context, sku string) (*products.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

// Create applies the same checks as bom.Repo.Create.
func (s *Store) Create(_ context.Context, productID, materialID int64, qty decimal.Decimal, unit string) (*bom.Edge, error) {
	if productID == materialID {
		return nil, bom.ErrSelfReference
	}
	qty = units.RoundQuantity(qty)
	if !qty.IsPositive() {
		return nil, bom.ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if e.ProductID == productID && e.MaterialID == materialID {
			return nil, bom.ErrDuplicateEdge
		}
	}
	s.nextEdge++
	e := bom.Edge{ID: s.nextEdge, ProductID: productID, MaterialID: materialID, Quantity: qty, Unit: unit}
	s.edges = append(s.edges, e)
	if p, ok := s.products[productID]; ok {
		p.IsComposite = true
		s.products[productID] = p
	}
	return &e, nil
}

func (s *Store) UpdateQuantity(_ context.Context, id int64, qty decimal.Decimal) (*bom.Edge, error) {
	qty = units.RoundQuantity(qty)
	if !qty.IsPositive() {
		return nil, bom.ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.edges {
		if s.edges[i].ID == id {
			s.edges[i].Quantity = qty
			e := s.edges[i]
			return &e, nil
		}
	}
	return nil, bom.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.edges {
		if e.ID == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return nil
		}
	}
	return bom.ErrNotFound
}

func (s *Store) DeleteByProduct(_ context.Context, productID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.edges[:0]
	var n int64
	for _, e := range s.edges {
		if e.ProductID == productID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	s.edges = kept
	return n, nil
}
