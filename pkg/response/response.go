// Package response writes the JSON envelope used by every endpoint:
//
//	{"status":200,"message":"...","data":{...},"errors":{...}}
//
// Cart mutations keep their legacy result-code body; see Result.
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// ResultBody is the cart API's body: {"res":5,"total_count":3,"message":"..."}.
// res carries the outcome; the HTTP status is always 200.
type ResultBody struct {
	Res        int    `json:"res"`
	TotalCount *int   `json:"total_count,omitempty"`
	ErrMsg     string `json:"errmsg,omitempty"`
	Message    string `json:"message,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func write(w http.ResponseWriter, status int, body envelope) {
	JSON(w, status, body)
}

func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Message sends a 200 with a message and optional data.
func Message(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Message: message, Data: data})
}

func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message})
}

// ErrorWithData sends an error status with extra data (e.g. a login URL).
func ErrorWithData(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, status, envelope{Status: status, Message: message, Data: data})
}

// ValidationError sends a 422 with a field → message map.
func ValidationError(w http.ResponseWriter, message string, errs map[string]string) {
	if message == "" {
		message = "Validation failed"
	}
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: message,
		Errors:  errs,
	})
}

// Result writes a cart result-code body. total < 0 omits total_count.
func Result(w http.ResponseWriter, res int, total int, errmsg string) {
	body := ResultBody{Res: res}
	if total >= 0 {
		body.TotalCount = &total
	}
	if errmsg != "" {
		if total >= 0 {
			body.Message = errmsg
		} else {
			body.ErrMsg = errmsg
		}
	}
	JSON(w, http.StatusOK, body)
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

func ServiceUnavailable(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Service unavailable")
}

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too Many Requests")
}
