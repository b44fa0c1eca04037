package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kekec/storefront/internal/domain"
	"github.com/kekec/storefront/internal/media"
	"github.com/kekec/storefront/internal/repository/ports"
)

const defaultMaxImageBytes = int64(5 * 1024 * 1024)

type ProductImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type ProductCreateInput struct {
	Name        string
	SKU         string
	Category    string
	Quantity    int
	Price       float64
	Description *string
	Image       *ProductImageUpload
}

type ProductServiceConfig struct {
	Bucket        string
	MaxImageBytes int64
	Validator     *media.Validator
}

type ProductService struct {
	products      ports.ProductRepository
	storage       ports.ObjectStorage
	validator     *media.Validator
	bucket        string
	maxImageBytes int64
}

func NewProductService(products ports.ProductRepository, storage ports.ObjectStorage, cfg ProductServiceConfig) *ProductService {
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	validator := cfg.Validator
	if validator == nil {
		validator = media.NewValidator(0)
	}
	return &ProductService{
		products:      products,
		storage:       storage,
		validator:     validator,
		bucket:        strings.TrimSpace(cfg.Bucket),
		maxImageBytes: maxBytes,
	}
}

func (s *ProductService) Create(ctx context.Context, userID uuid.UUID, input ProductCreateInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)
	category := strings.TrimSpace(input.Category)
	if name == "" || sku == "" || category == "" {
		return nil, fmt.Errorf("%w: name, sku and category are required", ErrValidation)
	}
	if input.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	var imageURL *string
	if input.Image != nil {
		url, err := s.uploadImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	product := &domain.Product{
		UserID:      userID,
		Name:        name,
		SKU:         sku,
		Category:    category,
		Quantity:    input.Quantity,
		Price:       input.Price,
		Description: normalizeField(input.Description),
		ImageURL:    imageURL,
	}
	return s.products.Create(ctx, product)
}

func (s *ProductService) uploadImage(ctx context.Context, upload ProductImageUpload) (string, error) {
	if upload.Size > s.maxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, s.maxImageBytes)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, s.maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > s.maxImageBytes {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, s.maxImageBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image file is empty", ErrValidation)
	}

	contentType, err := s.validator.Validate(bytes.NewReader(data), upload.FileName, upload.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	objectName := uuid.NewString() + strings.ToLower(filepath.Ext(upload.FileName))
	return s.storage.Upload(ctx, s.bucket, objectName, contentType, bytes.NewReader(data), int64(len(data)))
}
