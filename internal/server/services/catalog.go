package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storefront/internal/server/storage"
	"github.com/shopspring/decimal"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  int64
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return common.Validationf("name is required")
	case strings.TrimSpace(in.Description) == "":
		return common.Validationf("description is required")
	case in.Stock < 0:
		return common.Validationf("stock must not be negative")
	case in.CategoryID <= 0:
		return common.Validationf("categoryId is required")
	}
	return checkMoney("price", in.Price)
}

// ImageUpload is an image file received with a product form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CatalogService manages categories and products.
type CatalogService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	images      storage.ImageStore
	listings    *listingCache
}

func NewCatalogService(runner dbx.Runner, m repomanager.RepositoryManager, images storage.ImageStore) *CatalogService {
	return &CatalogService{runner: runner, repomanager: m, images: images}
}

// ListCategories returns every category with its products attached.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	cats, err := cachedList(ctx, s.listings, categoriesKey, s.loadCategories)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.Products == nil {
			c.Products = []*models.Product{}
		}
	}
	return cats, nil
}

func (s *CatalogService) loadCategories(ctx context.Context) ([]*models.Category, error) {
	conn := s.runner.Conn()

	cats, err := s.repomanager.Categories(conn).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	prods, err := s.repomanager.Products(conn).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}

	byCategory := make(map[int64][]*models.Product, len(cats))
	for _, p := range prods {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}
	for _, c := range cats {
		c.Products = byCategory[c.ID]
		if c.Products == nil {
			c.Products = []*models.Product{}
		}
	}
	return cats, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Validationf("name is required")
	}
	c, err := s.repomanager.Categories(s.runner.Conn()).Create(ctx, &models.Category{Name: name, Description: description})
	if err != nil {
		return nil, fmt.Errorf("error creating category: %w", err)
	}
	s.listings.invalidate(ctx)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Validationf("name is required")
	}
	c, err := s.repomanager.Categories(s.runner.Conn()).Update(ctx, &models.Category{ID: id, Name: name, Description: description})
	if err != nil {
		return nil, fmt.Errorf("error updating category: %w", err)
	}
	s.listings.invalidate(ctx)
	return c, nil
}

// DeleteCategory fails with common.ErrorValidation while products still
// belong to the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repomanager.Categories(s.runner.Conn()).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	s.listings.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return cachedList(ctx, s.listings, productsKey, s.loadProducts)
}

func (s *CatalogService) loadProducts(ctx context.Context) ([]*models.Product, error) {
	p, err := s.repomanager.Products(s.runner.Conn()).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repomanager.Products(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error searching product: %w", err)
	}
	return p, nil
}

// CreateProduct validates in, uploads image and stores the product. The
// image is required and the category must exist.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, image *ImageUpload) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, common.Validationf("image is required")
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	p, err := s.repomanager.Products(s.runner.Conn()).Create(ctx, &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Image:       url,
		CategoryID:  in.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}
	s.listings.invalidate(ctx)
	return p, nil
}

// UpdateProduct overwrites the product fields. The stored image is kept
// unless a new one is supplied.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput, image *ImageUpload) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Products(s.runner.Conn())
	current, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error searching product: %w", err)
	}
	if current.CategoryID != in.CategoryID {
		if err := s.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}

	imageURL := current.Image
	if image != nil {
		if imageURL, err = s.upload(ctx, image); err != nil {
			return nil, err
		}
	}

	p, err := repo.Update(ctx, &models.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Image:       imageURL,
		CategoryID:  in.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("error updating product: %w", err)
	}
	s.listings.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repomanager.Products(s.runner.Conn()).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}
	s.listings.invalidate(ctx)
	return nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id int64) error {
	_, err := s.repomanager.Categories(s.runner.Conn()).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return common.Validationf("category %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("error searching category: %w", err)
	}
	return nil
}

func (s *CatalogService) upload(ctx context.Context, image *ImageUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(image.Filename))
	if !slices.Contains(imageExtensions, ext) {
		return "", common.Validationf("image must be one of %s", strings.Join(imageExtensions, ", "))
	}
	url, err := s.images.Put(ctx, image.Filename, image.ContentType, image.Body, image.Size)
	if err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}
	return url, nil
}
