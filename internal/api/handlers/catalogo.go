package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rmaganha/cotacaopro/internal/api/middleware"
	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/infra/sheets"
)

// CatalogRepository is the catalog surface the handlers consume.
type CatalogRepository interface {
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	CreateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error)
	DeactivateSupplier(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	RenameProduct(ctx context.Context, id, newName string) error
	ListQuotations(ctx context.Context, status string) ([]domain.Quotation, error)
	CreateQuotation(ctx context.Context, q domain.Quotation) (domain.Quotation, error)
	CloseQuotation(ctx context.Context, id string) error
}

// CatalogoHandler exposes supplier, product and quotation endpoints.
type CatalogoHandler struct {
	repo CatalogRepository
	log  zerolog.Logger
}

func NewCatalogoHandler(repo CatalogRepository, log zerolog.Logger) *CatalogoHandler {
	return &CatalogoHandler{repo: repo, log: log}
}

// ListFornecedores handles GET /catalogo/fornecedores
func (h *CatalogoHandler) ListFornecedores(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.repo.ListSuppliers(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("listing suppliers")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao listar fornecedores")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fornecedores": suppliers,
		"count":        len(suppliers),
	})
}

// CreateFornecedor handles POST /catalogo/fornecedores
func (h *CatalogoHandler) CreateFornecedor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nome     string `json:"nome"`
		CNPJ     string `json:"cnpj"`
		Email    string `json:"email"`
		Telefone string `json:"telefone"`
		Cidade   string `json:"cidade"`
		UF       string `json:"uf"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if req.Nome == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Nome é obrigatório")
		return
	}

	s, err := h.repo.CreateSupplier(r.Context(), domain.Supplier{
		Name:  req.Nome,
		CNPJ:  req.CNPJ,
		Email: req.Email,
		Phone: req.Telefone,
		City:  req.Cidade,
		UF:    req.UF,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("creating supplier")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao criar fornecedor")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, s)
}

// DeactivateFornecedor handles DELETE /catalogo/fornecedores/{id}
func (h *CatalogoHandler) DeactivateFornecedor(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.DeactivateSupplier(r.Context(), id); err != nil {
		if errors.Is(err, sheets.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Fornecedor não encontrado")
			return
		}
		h.log.Error().Err(err).Str("supplier_id", id).Msg("deactivating supplier")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao desativar fornecedor")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListProdutos handles GET /catalogo/produtos
func (h *CatalogoHandler) ListProdutos(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("listing products")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao listar produtos")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"produtos": products,
		"count":    len(products),
	})
}

// CreateProduto handles POST /catalogo/produtos
func (h *CatalogoHandler) CreateProduto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nome        string `json:"nome"`
		Unidade     string `json:"unidade"`
		Categoria   string `json:"categoria"`
		SubProdutos []struct {
			Nome    string `json:"nome"`
			Unidade string `json:"unidade"`
		} `json:"subProdutos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if req.Nome == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Nome é obrigatório")
		return
	}

	p := domain.Product{Name: req.Nome, Unit: req.Unidade, Category: req.Categoria}
	for _, sub := range req.SubProdutos {
		p.SubProducts = append(p.SubProducts, domain.SubProduct{Name: sub.Nome, Unit: sub.Unidade})
	}

	created, err := h.repo.CreateProduct(r.Context(), p)
	if err != nil {
		h.log.Error().Err(err).Msg("creating product")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao criar produto")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// RenameProduto handles PUT /catalogo/produtos/{id}. Renaming cascades to
// quotation items that reference the product by name.
func (h *CatalogoHandler) RenameProduto(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Nome string `json:"nome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Nome == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Nome é obrigatório")
		return
	}

	if err := h.repo.RenameProduct(r.Context(), id, req.Nome); err != nil {
		if errors.Is(err, sheets.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Produto não encontrado")
			return
		}
		h.log.Error().Err(err).Str("product_id", id).Msg("renaming product")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao renomear produto")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListCotacoes handles GET /cotacoes with an optional ?status= filter.
func (h *CatalogoHandler) ListCotacoes(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.repo.ListQuotations(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.log.Error().Err(err).Msg("listing quotations")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao listar cotações")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cotacoes": quotations,
		"count":    len(quotations),
	})
}

// CreateCotacao handles POST /cotacoes
func (h *CatalogoHandler) CreateCotacao(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDFornecedor string `json:"idFornecedor"`
		Fornecedor   string `json:"fornecedor"`
		Data         string `json:"data"`
		Itens        []struct {
			Produto       string  `json:"produto"`
			SubProduto    string  `json:"subProduto"`
			Unidade       string  `json:"unidade"`
			Quantidade    float64 `json:"quantidade"`
			PrecoUnitario float64 `json:"precoUnitario"`
		} `json:"itens"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if len(req.Itens) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Cotação sem itens")
		return
	}

	q := domain.Quotation{
		SupplierID: req.IDFornecedor,
		Supplier:   req.Fornecedor,
		CreatedAt:  req.Data,
	}
	for _, it := range req.Itens {
		q.Items = append(q.Items, domain.QuotationItem{
			Product:    it.Produto,
			SubProduct: it.SubProduto,
			Unit:       it.Unidade,
			Quantity:   it.Quantidade,
			UnitPrice:  it.PrecoUnitario,
			TotalPrice: it.Quantidade * it.PrecoUnitario,
		})
	}

	created, err := h.repo.CreateQuotation(r.Context(), q)
	if err != nil {
		h.log.Error().Err(err).Msg("creating quotation")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao criar cotação")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// FecharCotacao handles POST /cotacoes/{id}/fechar
func (h *CatalogoHandler) FecharCotacao(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.CloseQuotation(r.Context(), id); err != nil {
		if errors.Is(err, sheets.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Cotação não encontrada")
			return
		}
		h.log.Error().Err(err).Str("quotation_id", id).Msg("closing quotation")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao fechar cotação")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
