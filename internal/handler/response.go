package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jwg-resto/pos-api/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// envelope is the body shape of every response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode response")
	}
}

func writeOK(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindBusinessRule:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeServiceError answers with the status for err's kind. Internal errors
// are logged with the request id and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, op string, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"request_id": chimw.GetReqID(r.Context()),
			"op":         op,
		}).WithError(err).Error("request failed")
		writeFail(w, status, "internal server error")
		return
	}
	writeFail(w, status, err.Error())
}

func unknownAction(w http.ResponseWriter, action string) {
	if action == "" {
		writeFail(w, http.StatusBadRequest, "action is required")
		return
	}
	writeFail(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", action))
}

var errEmptyBody = errors.New("request body is required")

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return errors.New("invalid request body")
	}
	return nil
}

// queryUUID reads a required uuid query parameter.
func queryUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

func optionalQueryUUID(r *http.Request, key string) (uuid.NullUUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("invalid %s", key)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s, expected YYYY-MM-DD", key)
	}
	return &t, nil
}

func queryInt32(r *http.Request, key string) (int32, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return int32(n), nil
}

func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.URL.Query().Get(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parseOptionalUUID parses a uuid carried in a JSON body field.
func parseOptionalUUID(raw, field string) (uuid.NullUUID, error) {
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("invalid %s", field)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

// --- Value conversions for responses ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// money formats a monetary column with two decimals.
func money(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

func optionalMoney(n pgtype.Numeric) *string {
	if !n.Valid {
		return nil
	}
	s := money(n)
	return &s
}

// quantity formats a stock quantity without trailing zeros.
func quantity(n pgtype.Numeric) string {
	return numericToDecimal(n).String()
}

func optionalQuantity(n pgtype.Numeric) *string {
	if !n.Valid {
		return nil
	}
	s := quantity(n)
	return &s
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func datePtr(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format(dateLayout)
	return &s
}
