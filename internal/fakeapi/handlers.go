package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/client/validation"
	"github.com/dmitrijs2005/storeadmin/internal/common"
	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 10 << 20

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type authResponse struct {
	User  models.Identity `json:"user"`
	Token string          `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := h.store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid Credentials")
		return
	}
	h.issueToken(w, r, http.StatusOK, id)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validation.Register(validation.RegisterInput(req)); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.store.CreateUser(r.Context(), models.Identity{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeMessage(w, http.StatusConflict, "User already exists")
			return
		}
		h.log.Error(r.Context(), "create user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.issueToken(w, r, http.StatusCreated, id)
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, status int, id models.Identity) {
	token, err := GenerateToken(id.ID, h.secret, h.tokenTTL, h.now())
	if err != nil {
		h.log.Error(r.Context(), "sign token", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, status, authResponse{User: id, Token: token})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.readProductForm(w, r, true)
	if !ok {
		return
	}
	created, err := h.store.CreateProduct(r.Context(), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.readProductForm(w, r, false)
	if !ok {
		return
	}
	updated, err := h.store.UpdateProduct(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

func (h *Handler) getImage(w http.ResponseWriter, r *http.Request) {
	ct, data, err := h.store.Image(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// readProductForm parses the multipart product body. With requireFile the
// "image" part must be an uploaded file; otherwise a plain "image" field
// holding the current URL is accepted too.
func (h *Handler) readProductForm(w http.ResponseWriter, r *http.Request, requireFile bool) (models.Product, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart payload")
		return models.Product{}, false
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "price must be a number")
		return models.Product{}, false
	}
	p := models.Product{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
	}
	if p.Name == "" || p.Description == "" || p.Price < validation.MinPrice {
		writeMessage(w, http.StatusBadRequest, "name, description and a price of at least 1 are required")
		return models.Product{}, false
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		url, msg, err := h.saveUpload(r, file, header)
		if err != nil {
			h.log.Error(r.Context(), "save image", "error", err)
			writeStoreError(w, err)
			return models.Product{}, false
		}
		if msg != "" {
			writeMessage(w, http.StatusBadRequest, msg)
			return models.Product{}, false
		}
		p.ImageURL = url
	case requireFile:
		writeMessage(w, http.StatusBadRequest, "Image is required")
		return models.Product{}, false
	default:
		p.ImageURL = r.FormValue("image")
	}
	return p, true
}

func (h *Handler) saveUpload(r *http.Request, file multipart.File, header *multipart.FileHeader) (url string, problem string, err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", "unreadable image", nil
	}
	ct := header.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}

	img := &models.ImageFile{Name: header.Filename, ContentType: ct, Data: data}
	if !validation.ImageAccepted(img) {
		return "", validation.MsgInvalidImage, nil
	}

	name, err := h.store.SaveImage(r.Context(), extensionFor(ct), ct, data)
	if err != nil {
		return "", "", err
	}
	return h.baseURL(r) + "/images/" + name, "", nil
}

func (h *Handler) baseURL(r *http.Request) string {
	if h.publicURL != "" {
		return strings.TrimRight(h.publicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
