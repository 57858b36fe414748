package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/12344-munna/order-handler/internal/domain"
	"github.com/12344-munna/order-handler/internal/repository"
)

var ErrProductExists = errors.New("product already exists")

// CatalogService maintains the product catalog the webhook flow reads.
type CatalogService struct {
	productRepo *repository.ProductRepository
	logger      *zap.Logger
}

func NewCatalogService(productRepo *repository.ProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	sizes := make(map[string]int, len(req.Sizes))
	for label, qty := range req.Sizes {
		sizes[strings.ToUpper(strings.TrimSpace(label))] = qty
	}

	now := time.Now()
	product := &domain.Product{
		ProductCode:  req.ProductCode,
		Name:         req.Name,
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		Sizes:        sizes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	product.AvailableAmount = product.TotalStock()

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductExists) {
			return nil, ErrProductExists
		}
		s.logger.Error("Failed to save product",
			zap.String("product_code", product.ProductCode),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_code", product.ProductCode),
		zap.Int("initial_stock", product.AvailableAmount))

	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productCode string) (*domain.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, productCode)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// StockReport formats one line per requested code, e.g.
// "Summer Tee (Code: AB12): L: 2, M: 3" or "ZZ99: Not Found".
func (s *CatalogService) StockReport(ctx context.Context, codes []string) (string, error) {
	lines := make([]string, 0, len(codes))

	for _, code := range codes {
		product, err := s.productRepo.GetProduct(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				lines = append(lines, fmt.Sprintf("%s: Not Found", code))
				continue
			}
			return "", err
		}

		labels := make([]string, 0, len(product.Sizes))
		for label := range product.Sizes {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		parts := make([]string, 0, len(labels))
		for _, label := range labels {
			parts = append(parts, fmt.Sprintf("%s: %d", label, product.Sizes[label]))
		}

		lines = append(lines, fmt.Sprintf("%s (Code: %s): %s",
			product.Name, product.ProductCode, strings.Join(parts, ", ")))
	}

	return strings.Join(lines, "\n"), nil
}
