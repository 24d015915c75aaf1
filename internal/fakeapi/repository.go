package fakeapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the storage behind the handlers. Store keeps everything in
// memory; PostgresStore persists it.
//
// Errors: common.ErrorAlreadyExists for a taken email,
// common.ErrorInvalidCredentials for a failed login and common.ErrorNotFound
// for unknown products or images.
type Repository interface {
	CreateUser(ctx context.Context, id models.Identity, password string) (models.Identity, error)
	Authenticate(ctx context.Context, email, password string) (models.Identity, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, p models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	SaveImage(ctx context.Context, ext, contentType string, data []byte) (string, error)
	Image(ctx context.Context, name string) (contentType string, data []byte, err error)
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*PostgresStore)(nil)
)

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeCost(cost int) int {
	if cost == 0 {
		return bcrypt.DefaultCost
	}
	return cost
}

func hashPassword(password string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func passwordMatches(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
