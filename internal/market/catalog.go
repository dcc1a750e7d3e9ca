package market

import "context"

// CatalogService is plain read glue over the product store.
type CatalogService struct {
	store ProductRepo
}

func NewCatalogService(store ProductRepo) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) List(ctx context.Context, f ProductFilter) ([]Product, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size < 1 || f.Size > 100 {
		f.Size = 10
	}
	return s.store.ListProducts(ctx, f)
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.store.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NotFound(CodeProductNotFound, "product not found")
	}
	return p, nil
}

// Create exists for seeding and admin tooling; stock mutation at runtime
// stays with the order engine.
func (s *CatalogService) Create(ctx context.Context, p *Product) error {
	if p.Name == "" || p.Price.Sign() < 0 || p.Stock < 0 {
		return Validation(CodeInvalidInput, "product needs a name, non-negative price and stock")
	}
	return s.store.CreateProduct(ctx, p)
}
