package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rmaganha/cotacaopro/internal/api/middleware"
	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/pedidopdf"
)

// QuotationLister is the read surface the PDF endpoint needs.
type QuotationLister interface {
	ListQuotations(ctx context.Context, status string) ([]domain.Quotation, error)
}

// PedidosHandler renders purchase-order PDFs.
type PedidosHandler struct {
	repo QuotationLister
	log  zerolog.Logger
}

func NewPedidosHandler(repo QuotationLister, log zerolog.Logger) *PedidosHandler {
	return &PedidosHandler{repo: repo, log: log}
}

// PedidoPDF handles GET /pedidos/{id}/pdf, generating the purchase order of
// one quotation.
func (h *PedidosHandler) PedidoPDF(w http.ResponseWriter, r *http.Request, quotationID string) {
	quotations, err := h.repo.ListQuotations(r.Context(), "")
	if err != nil {
		h.log.Error().Err(err).Msg("loading quotations for pdf")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao carregar a cotação")
		return
	}

	for _, q := range quotations {
		if q.ID != quotationID {
			continue
		}
		data, err := pedidopdf.Render(q)
		if err != nil {
			h.log.Error().Err(err).Str("quotation_id", quotationID).Msg("rendering pdf")
			middleware.WriteError(w, http.StatusInternalServerError, "Falha ao gerar o PDF")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pedido-%s.pdf", quotationID))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	middleware.WriteError(w, http.StatusNotFound, "Cotação não encontrada")
}
