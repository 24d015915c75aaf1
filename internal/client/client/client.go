package client

import (
	"context"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
)

// Client is the backend API contract used by the services layer.
type Client interface {
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, p ProductPayload) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, p ProductPayload) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// TokenSource yields the current bearer token, "" when signed out.
type TokenSource interface {
	AccessToken() string
}

type AuthResponse struct {
	User  models.Identity `json:"user"`
	Token string          `json:"token"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProductPayload is the multipart body of create and update. When Image is
// nil the "image" field is sent as text carrying ImageURL.
type ProductPayload struct {
	Name        string
	Description string
	Price       float64
	Image       *models.ImageFile
	ImageURL    string
}

// PayloadFromDraft maps the editor draft onto a request body.
func PayloadFromDraft(d models.Draft) ProductPayload {
	return ProductPayload{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Image:       d.Image,
		ImageURL:    d.ImageURL,
	}
}
