package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"dingauth/internal/federation/models"
	dErrors "dingauth/pkg/domain-errors"
	"dingauth/pkg/platform/httputil"
	"dingauth/pkg/requestcontext"
)

const defaultMaxBodyBytes = 16 << 10

// extractLogin reads the credential fields from a JSON body, a form body or
// the query string. Field names come from the handler config.
func (h *Handler) extractLogin(w http.ResponseWriter, r *http.Request) (*models.LoginRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)

	fields, err := h.readFields(r)
	if err != nil {
		return nil, err
	}

	req := &models.LoginRequest{
		TmpAuthCode: fields[h.cfg.CodeParameter],
		UserID:      fields[h.cfg.UserIDParameter],
		AppKey:      fields[h.cfg.AppKeyParameter],
	}
	if err := httputil.PrepareRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *Handler) readFields(r *http.Request) (map[string]string, error) {
	fields := make(map[string]string, 3)
	names := []string{h.cfg.CodeParameter, h.cfg.UserIDParameter, h.cfg.AppKeyParameter}

	if isJSON(r) {
		body, err := decodeJSONFields(r.Body)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if v, ok := body[name]; ok {
				fields[name] = v
			}
		}
	} else if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "request body too large")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid form body")
	}

	for _, name := range names {
		if _, ok := fields[name]; ok {
			continue
		}
		if v := r.FormValue(name); v != "" {
			fields[name] = v
		}
	}
	return fields, nil
}

// decodeJSONFields keeps scalar values; objects, arrays and nulls are dropped.
func decodeJSONFields(body io.Reader) (map[string]string, error) {
	raw := map[string]any{}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "request body too large")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body")
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
	return out, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func requestDetails(r *http.Request) models.RequestDetails {
	ctx := r.Context()
	return models.RequestDetails{
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Device:    requestcontext.Device(ctx),
	}
}
