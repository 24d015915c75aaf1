package fakeapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	store     Repository
	secret    []byte
	tokenTTL  time.Duration
	publicURL string
	now       func() time.Time
	log       logging.Logger
}

func NewHandler(store Repository, cfg *Config, log logging.Logger) *Handler {
	return &Handler{
		store:     store,
		secret:    []byte(cfg.SecretKey),
		tokenTTL:  cfg.TokenTTL,
		publicURL: cfg.PublicURL,
		now:       time.Now,
		log:       log.With("component", "fakeapi"),
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/register", h.register)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})

	r.Get("/images/{name}", h.getImage)
	return r
}
