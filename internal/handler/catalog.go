package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/currymessina/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CatalogStore defines the database methods needed by catalog handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListActiveMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListActiveIngredients(ctx context.Context) ([]database.Ingredient, error)
	ListActiveSauces(ctx context.Context) ([]database.Sauce, error)
	ListActiveSizes(ctx context.Context) ([]database.Size, error)
}

// CatalogHandler serves the public menu.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers catalog endpoints. Mounted at /catalog.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)
	r.Get("/kebab-options", h.KebabOptions)
}

// --- Response types ---

type menuItemResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Price       string  `json:"price"`
}

type optionResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type kebabOptionsResponse struct {
	Sizes       []optionResponse `json:"sizes"`
	Ingredients []optionResponse `json:"ingredients"`
	Sauces      []optionResponse `json:"sauces"`
}

// --- Handlers ---

// Menu handles GET /catalog/menu.
func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListActiveMenuItems(r.Context())
	if err != nil {
		slog.Error("list menu items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, item := range items {
		resp[i] = menuItemResponse{
			ID:          item.ID,
			Name:        item.Name,
			Category:    item.Category,
			Description: textPtr(item.Description),
			ImageURL:    textPtr(item.ImageUrl),
			Price:       numericToString(item.BasePrice),
		}
	}
	writeSuccess(w, http.StatusOK, "ok", resp)
}

// KebabOptions handles GET /catalog/kebab-options.
func (h *CatalogHandler) KebabOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sizes, err := h.store.ListActiveSizes(ctx)
	if err != nil {
		slog.Error("list sizes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load kebab options")
		return
	}
	ingredients, err := h.store.ListActiveIngredients(ctx)
	if err != nil {
		slog.Error("list ingredients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load kebab options")
		return
	}
	sauces, err := h.store.ListActiveSauces(ctx)
	if err != nil {
		slog.Error("list sauces", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load kebab options")
		return
	}

	resp := kebabOptionsResponse{
		Sizes:       make([]optionResponse, len(sizes)),
		Ingredients: make([]optionResponse, len(ingredients)),
		Sauces:      make([]optionResponse, len(sauces)),
	}
	for i, s := range sizes {
		resp.Sizes[i] = optionResponse{ID: s.ID, Name: s.Name, Price: numericToString(s.Price)}
	}
	for i, ing := range ingredients {
		resp.Ingredients[i] = optionResponse{ID: ing.ID, Name: ing.Name, Price: numericToString(ing.Price)}
	}
	for i, s := range sauces {
		resp.Sauces[i] = optionResponse{ID: s.ID, Name: s.Name, Price: numericToString(s.Price)}
	}
	writeSuccess(w, http.StatusOK, "ok", resp)
}

// --- Helpers ---

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
