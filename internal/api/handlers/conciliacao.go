package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/rmaganha/cotacaopro/internal/api/middleware"
	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/ingest"
)

// ConciliacaoHandler exposes the NF-e reconciliation endpoints.
type ConciliacaoHandler struct {
	controller *ingest.Controller
	log        zerolog.Logger
}

func NewConciliacaoHandler(controller *ingest.Controller, log zerolog.Logger) *ConciliacaoHandler {
	return &ConciliacaoHandler{controller: controller, log: log}
}

// Processar handles POST /conciliacaonf/processar. It scans the Drive inbox
// synchronously and reports per-file outcomes.
func (h *ConciliacaoHandler) Processar(w http.ResponseWriter, r *http.Request) {
	res, err := h.controller.ProcessFolder(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("folder processing failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao processar a pasta de XMLs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Processamento concluído",
		"processadas": res.Processed,
		"duplicadas":  res.Duplicates,
		"erros":       res.Errors,
		"logs":        res.Logs,
	})
}

// UploadXMLs handles POST /conciliacaonf/upload-xmls. The body carries
// base64-encoded XML payloads.
func (h *ConciliacaoHandler) UploadXMLs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Files []struct {
			FileName string `json:"fileName"`
			Content  string `json:"content"`
		} `json:"files"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if len(req.Files) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}

	uploads := make([]ingest.UploadFile, 0, len(req.Files))
	for _, f := range req.Files {
		data, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Conteúdo base64 inválido: "+f.FileName)
			return
		}
		uploads = append(uploads, ingest.UploadFile{Name: f.FileName, Content: data})
	}

	res, err := h.controller.ProcessUploads(r.Context(), uploads)
	if err != nil {
		h.log.Error().Err(err).Msg("upload processing failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao processar os arquivos")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     res.Errors == 0,
		"message":     "Upload processado",
		"processadas": res.Processed,
		"duplicadas":  res.Duplicates,
		"erros":       res.Errors,
		"logs":        res.Logs,
	})
}

// Reset handles POST /conciliacaonf/reset/{chave}. Payables are deleted and
// the invoice goes back to "Pendente".
func (h *ConciliacaoHandler) Reset(w http.ResponseWriter, r *http.Request, accessKey string) {
	if err := h.controller.ResetInvoice(r.Context(), accessKey); err != nil {
		if errors.Is(err, ingest.ErrUnknownInvoice) {
			middleware.WriteError(w, http.StatusNotFound, "Nota fiscal não encontrada")
			return
		}
		h.log.Error().Err(err).Str("access_key", accessKey).Msg("resetting invoice")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao resetar a nota fiscal")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateFaturas handles PUT /conciliacaonf/faturas/{chave}, replacing the
// invoice's installment set.
func (h *ConciliacaoHandler) UpdateFaturas(w http.ResponseWriter, r *http.Request, accessKey string) {
	var req struct {
		Faturas []struct {
			NumeroNF   string  `json:"numeroNF"`
			Parcela    string  `json:"parcela"`
			Vencimento string  `json:"vencimento"`
			Valor      float64 `json:"valor"`
		} `json:"faturas"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	installments := make([]domain.Installment, 0, len(req.Faturas))
	for _, f := range req.Faturas {
		due, err := civil.ParseDate(f.Vencimento)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Vencimento inválido: "+f.Vencimento)
			return
		}
		installments = append(installments, domain.Installment{
			InvoiceNumber: f.NumeroNF,
			Number:        f.Parcela,
			DueDate:       due,
			Amount:        f.Valor,
		})
	}

	if err := h.controller.ReplaceInstallments(r.Context(), accessKey, installments); err != nil {
		if errors.Is(err, ingest.ErrUnknownInvoice) {
			middleware.WriteError(w, http.StatusNotFound, "Nota fiscal não encontrada")
			return
		}
		h.log.Error().Err(err).Str("access_key", accessKey).Msg("replacing installments")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao atualizar as faturas")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DadosPagina handles GET /conciliacaonf/dados-pagina, the single aggregate
// read the reconciliation screen issues on load.
func (h *ConciliacaoHandler) DadosPagina(w http.ResponseWriter, r *http.Request) {
	data, err := h.controller.LoadPageData(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("page data aggregation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao carregar os dados da página")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"dados":   data,
	})
}
