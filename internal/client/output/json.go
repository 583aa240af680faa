package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONResponse is the standard JSON output format
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

// OutputJSON writes data to w in the JSON envelope
func OutputJSON(w io.Writer, data interface{}, err error) error {
	response := JSONResponse{
		Success: err == nil,
		Data:    data,
	}

	if err != nil {
		response.Error = err.Error()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if encodeErr := encoder.Encode(response); encodeErr != nil {
		return fmt.Errorf("failed to encode JSON: %w", encodeErr)
	}
	return nil
}
