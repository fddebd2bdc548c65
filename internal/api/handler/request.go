package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"tle_zone_dashboard/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// decodeBody decodes the JSON body into v. Contract errors raised by a
// model's UnmarshalJSON are passed through untouched.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrBadRequest) {
			return err
		}
		return fmt.Errorf("invalid request payload: %v: %w", err, common.ErrBadRequest)
	}
	return nil
}

func validateRequest(v *validator.Validate, req interface{}) error {
	if err := v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %s failed on %q: %w", fe.Field(), fe.Tag(), common.ErrValidation)
		}
		return fmt.Errorf("%v: %w", err, common.ErrValidation)
	}
	return nil
}

// decodeAndValidate is decodeBody followed by validateRequest.
func decodeAndValidate(r *http.Request, v *validator.Validate, req interface{}) error {
	if err := decodeBody(r, req); err != nil {
		return err
	}
	return validateRequest(v, req)
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, common.ErrBadRequest)
	}
	return id, nil
}

// pageParams reads ?page= and ?pageSize=; the service clamps them.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	return page, pageSize
}

func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", name, raw, common.ErrBadRequest)
	}
	return v, nil
}
