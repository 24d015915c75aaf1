package fakeapi

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/common"
	"github.com/google/uuid"
)

type user struct {
	models.Identity
	passwordHash []byte
}

type image struct {
	contentType string
	data        []byte
}

// Store keeps users, products and uploaded images in memory. It is the
// default Repository.
type Store struct {
	mu         sync.RWMutex
	bcryptCost int
	users      map[string]*user // by lower-cased email
	products   []models.Product
	images     map[string]image
}

func NewStore(bcryptCost int) *Store {
	return &Store{
		bcryptCost: normalizeCost(bcryptCost),
		users:      make(map[string]*user),
		images:     make(map[string]image),
	}
}


// CreateUser registers a new account. A taken email yields
// common.ErrorAlreadyExists.
func (s *Store) CreateUser(_ context.Context, id models.Identity, password string) (models.Identity, error) {
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return models.Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(id.Email)
	if _, ok := s.users[key]; ok {
		return models.Identity{}, common.ErrorAlreadyExists
	}
	id.ID = uuid.NewString()
	s.users[key] = &user{Identity: id, passwordHash: hash}
	return id, nil
}

// Authenticate checks email and password.
func (s *Store) Authenticate(_ context.Context, email, password string) (models.Identity, error) {
	s.mu.RLock()
	u, ok := s.users[emailKey(email)]
	s.mu.RUnlock()

	if !ok {
		return models.Identity{}, common.ErrorInvalidCredentials
	}
	if !passwordMatches(u.passwordHash, password) {
		return models.Identity{}, common.ErrorInvalidCredentials
	}
	return u.Identity, nil
}

func (s *Store) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product{}, s.products...), nil
}

func (s *Store) CreateProduct(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	s.products = append(s.products, p)
	return p, nil
}

// UpdateProduct replaces the fields of product id.
func (s *Store) UpdateProduct(_ context.Context, id string, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			p.ID = id
			s.products[i] = p
			return p, nil
		}
	}
	return models.Product{}, common.ErrorNotFound
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

// SaveImage stores data under a fresh name keeping ext, and returns the name.
func (s *Store) SaveImage(_ context.Context, ext, contentType string, data []byte) (string, error) {
	name := uuid.NewString() + ext

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[name] = image{contentType: contentType, data: data}
	return name, nil
}

func (s *Store) Image(_ context.Context, name string) (contentType string, data []byte, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[name]
	if !ok {
		return "", nil, common.ErrorNotFound
	}
	return img.contentType, img.data, nil
}
