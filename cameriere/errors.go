package cameriere

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrSessionExpired means the access token was rejected and could not be
	// refreshed. Stored tokens have been cleared; the user must log in again.
	ErrSessionExpired = errors.New("session expired, please login again")
	ErrValidation     = errors.New("invalid input")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNotFound       = errors.New("not found")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

const maxErrorBody = 4 << 10

// decodeAPIError builds an APIError from the response body: the "error"
// field, then "detail", then the raw body, then the status text.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Detail != "":
			apiErr.Message = body.Detail
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" || apiErr.Message == "{}" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
