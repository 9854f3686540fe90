package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/powcontest/foundation/validate"
	"github.com/dimfeld/httptreemux/v5"
)

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	m := httptreemux.ContextParams(r.Context())
	return m[key]
}

// ParamUint returns the named web call parameter as a non-negative integer.
func ParamUint(r *http.Request, key string) (uint64, error) {
	s := Param(r, key)

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s[%s] must be a non-negative integer", key, s)
	}

	return v, nil
}

// Decode reads the body of an HTTP request looking for a JSON document. The
// body is decoded into the provided value.
//
// If the provided value is a struct then it is checked for validation tags.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return err
	}

	if err := validate.Check(val); err != nil {
		return err
	}

	return nil
}
