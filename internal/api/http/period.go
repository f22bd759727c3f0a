package apihttp

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gasbalance-cloud/internal/period"
)

const maxDecodeCodes = 240

type decodedPeriod struct {
	Code       string `json:"code"`
	Year       int    `json:"year,omitempty"`
	MonthLabel string `json:"month_label"`
	Label      string `json:"label"`
	Valid      bool   `json:"valid"`
}

type encodeResponse struct {
	Code string `json:"code"`
}

// PeriodHandler decodes and encodes YYYYMM period codes.
type PeriodHandler struct{}

// NewPeriodHandler constructs a PeriodHandler.
func NewPeriodHandler() *PeriodHandler {
	return &PeriodHandler{}
}

// ServeHTTP handles /api/v1/periods/decode and /api/v1/periods/encode.
func (h *PeriodHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/periods/decode":
		h.handleDecode(w, r)
	case "/api/v1/periods/encode":
		h.handleEncode(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// handleDecode accepts ?code=202407 or a comma separated ?codes= list.
// Malformed codes decode to the N/A sentinel, never to an error.
func (h *PeriodHandler) handleDecode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	form := period.ParseForm(query.Get("form"))
	if code := query.Get("code"); code != "" || !query.Has("codes") {
		writeJSON(w, http.StatusOK, decodeOne(code, form))
		return
	}
	codes := strings.Split(query.Get("codes"), ",")
	if len(codes) > maxDecodeCodes {
		http.Error(w, "too many codes", http.StatusBadRequest)
		return
	}
	out := make([]decodedPeriod, 0, len(codes))
	for _, code := range codes {
		out = append(out, decodeOne(strings.TrimSpace(code), form))
	}
	writeJSON(w, http.StatusOK, out)
}

func decodeOne(code string, form period.Form) decodedPeriod {
	decoded := period.Decode(code, form)
	return decodedPeriod{
		Code:       code,
		Year:       decoded.Year,
		MonthLabel: decoded.MonthLabel,
		Label:      decoded.String(),
		Valid:      decoded.Valid,
	}
}

func (h *PeriodHandler) handleEncode(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "year must be an integer", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, "month must be an integer", http.StatusBadRequest)
		return
	}
	code, err := period.Encode(year, time.Month(month))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{Code: code})
}
