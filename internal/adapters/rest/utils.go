package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes - ограничение тела JSON-запроса.
const maxBodyBytes = 1 << 20

// SuccessResponse - конверт успешного ответа.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorBody - описание ошибки внутри конверта.
type ErrorBody struct {
	Code    domain.ErrorCode       `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// RespondWithJSON отправляет JSON-ответ в конверте.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	respond(w, code, SuccessResponse{Success: true, Data: payload})
}

// RespondWithMessage - успешный ответ без данных, только с сообщением.
func RespondWithMessage(w http.ResponseWriter, code int, message string) {
	respond(w, code, SuccessResponse{Success: true, Message: message})
}

func respond(w http.ResponseWriter, code int, body interface{}) {
	response, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// WriteJSONError отправляет конверт ошибки с заданным кодом.
func WriteJSONError(w http.ResponseWriter, appErr *domain.AppError) {
	respond(w, appErr.Status, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

// WriteError находит AppError в цепочке. Внутренние ошибки логируются,
// но их текст клиенту не уходит.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := domain.AsAppError(err)
	logger := contextkeys.LoggerFromContext(r.Context())
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, port.Fields{"code": appErr.Code})
	} else {
		logger.Debug("Request rejected", port.Fields{"code": appErr.Code, "reason": appErr.Message})
	}
	WriteJSONError(w, appErr)
}

// decodeJSON разбирает обязательное тело запроса.
func decodeJSON(r *http.Request, dst interface{}) error {
	return decodeBody(r, dst, true)
}

// decodeOptionalJSON допускает пустое тело.
func decodeOptionalJSON(r *http.Request, dst interface{}) error {
	return decodeBody(r, dst, false)
}

func decodeBody(r *http.Request, dst interface{}, required bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && !required:
		return nil
	case errors.Is(err, io.EOF):
		return domain.NewValidation("request body is required", nil)
	default:
		return domain.NewValidation("invalid JSON body", map[string]string{"body": err.Error()})
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.NewValidation("validation failed", map[string]string{name: "must be a valid UUID"})
	}
	return id, nil
}

// queryParser разбирает query-параметры и копит ошибки по полям.
type queryParser struct {
	values map[string][]string
	errs   domain.ValidationErrors
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query(), errs: domain.ValidationErrors{}}
}

func (q *queryParser) String(key string) string {
	if v, ok := q.values[key]; ok && len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (q *queryParser) Float(key string) *float64 {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.errs.Add(key, "must be a number")
		return nil
	}
	return &v
}

func (q *queryParser) Int(key string) *int {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.errs.Add(key, "must be an integer")
		return nil
	}
	return &v
}

func (q *queryParser) Bool(key string) *bool {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.errs.Add(key, "must be true or false")
		return nil
	}
	return &v
}

// StringSlice принимает как ?a=x&a=y, так и ?a=x,y.
func (q *queryParser) StringSlice(key string) []string {
	var out []string
	for _, v := range q.values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (q *queryParser) Page() domain.Page {
	page := q.Int("page")
	perPage := q.Int("per_page")
	p, pp := 1, domain.DefaultPageSize
	if page != nil {
		p = *page
	}
	if perPage != nil {
		pp = *perPage
	}
	return domain.NewPage(p, pp)
}

func (q *queryParser) Err() error {
	if len(q.errs) == 0 {
		return nil
	}
	return domain.NewValidation("invalid query parameters", q.errs)
}

// parseDate принимает YYYY-MM-DD или RFC3339.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
