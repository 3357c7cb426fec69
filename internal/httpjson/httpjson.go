// Package httpjson holds the JSON response helpers shared by the API handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

func Write(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, message string, status int) {
	Write(w, map[string]string{"error": message}, status)
}

func Message(w http.ResponseWriter, message string) {
	Write(w, map[string]string{"message": message}, http.StatusOK)
}

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
