package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"ouvidoria-analytics/src/domain"
)

// Parâmetros de query reservados; todo o resto precisa ser campo do
// vocabulário.
const (
	paramDateFrom = "dataInicio"
	paramDateTo   = "dataFim"
)

func (s *Server) GetOverview(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := s.analyticsService.Overview(r.Context(), filters)
	if err != nil {
		s.writeServiceError(w, "overview", err)
		return
	}

	s.writeJSON(w, payload)
}

func (s *Server) GetStatusSummary(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := s.analyticsService.StatusSummary(r.Context(), filters)
	if err != nil {
		s.writeServiceError(w, "status", err)
		return
	}

	s.writeJSON(w, payload)
}

func (s *Server) GetDistinctValues(w http.ResponseWriter, r *http.Request) {
	field := r.PathValue("field")
	if field == "" {
		http.Error(w, "field is required", http.StatusBadRequest)
		return
	}

	payload, err := s.analyticsService.DistinctValues(r.Context(), field)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFilter) {
			http.Error(w, fmt.Sprintf("unknown field %q", field), http.StatusBadRequest)
			return
		}

		s.writeServiceError(w, "distinct", err)
		return
	}

	s.writeJSON(w, payload)
}

func (s *Server) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsReader.Stats(r.Context())
	if err != nil {
		s.logger.Error("Failed to read cache stats", "error", err)
		http.Error(w, domain.ErrUnavailableServer.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

// parseFilters traduz a query string para o FilterSet fechado das operações:
// parâmetro repetido vira pertinência, simples vira igualdade, dataInicio e
// dataFim viram o intervalo de datas. Parâmetro fora do vocabulário é
// rejeitado em vez de silenciosamente ignorado.
func parseFilters(query url.Values) (*domain.FilterSet, error) {
	filters := domain.NewFilterSet()

	for param, values := range query {
		if param == paramDateFrom || param == paramDateTo {
			continue
		}

		if !domain.IsRelevantField(param) {
			return nil, fmt.Errorf("unknown filter parameter %q", param)
		}

		var err error
		if len(values) > 1 {
			err = filters.SetIn(domain.Field(param), values)
		} else {
			err = filters.SetEquals(domain.Field(param), values[0])
		}
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %v", param, err)
		}
	}

	from := query.Get(paramDateFrom)
	to := query.Get(paramDateTo)
	if from != "" || to != "" {
		if err := filters.SetDateRange(from, to); err != nil {
			return nil, fmt.Errorf("invalid date range: use '%s'", "YYYY-MM-DD")
		}
	}

	return filters, nil
}

// writeServiceError mapeia os erros do serviço para status HTTP; detalhes
// internos ficam no log, não na resposta.
func (s *Server) writeServiceError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrQueryTimeout):
		s.logger.Error("Aggregation timed out", "endpoint", endpoint, "error", err)
		http.Error(w, domain.ErrQueryTimeout.Error(), http.StatusGatewayTimeout)
	default:
		s.logger.Error("Failed to serve analytics request", "endpoint", endpoint, "error", err)
		http.Error(w, domain.ErrUnavailableServer.Error(), http.StatusInternalServerError)
	}
}

// writeJSON devolve um payload já serializado (o cache guarda JSON pronto;
// reserializar aqui quebraria o byte-a-byte entre hit e miss).
func (s *Server) writeJSON(w http.ResponseWriter, payload json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}
