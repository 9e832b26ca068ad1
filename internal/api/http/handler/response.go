package handler

import (
	"encoding/json"
	"net/http"
)

// AckResponse is the uniform terminal response body: the event was received,
// with any delivery error carried alongside rather than failing the call.
type AckResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusEventReceived acknowledges a processed event.
const StatusEventReceived = "EVENT_RECEIVED"

func writeAck(w http.ResponseWriter, statusCode int, errMessage string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(AckResponse{Status: StatusEventReceived, Error: errMessage})
}
