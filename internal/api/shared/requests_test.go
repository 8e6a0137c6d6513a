package shared

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answerBody struct {
	Performance string `json:"performance" validate:"required,oneof=again hard medium easy"`
	Seconds     int    `json:"time_spent_seconds" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		errText string
	}{
		{name: "valid", body: `{"performance":"easy","time_spent_seconds":3}`},
		{name: "empty body", body: "", wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"performance":"easy",}`, errText: "invalid character"},
		{name: "unknown field", body: `{"performance":"easy","extra":1}`, errText: "unknown field"},
		{name: "trailing object", body: `{"performance":"easy"}{"performance":"hard"}`, errText: "single JSON object"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tc.body))
			var got answerBody
			err := DecodeJSON(req, &got)

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, "easy", got.Performance)
				assert.Equal(t, 3, got.Seconds)
			}
		})
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDecodeJSON_ReadError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", errorReader{})
	var got answerBody
	err := DecodeJSON(req, &got)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type selfValidating struct {
	Name string
}

func (s *selfValidating) Validate() error {
	if s.Name == "" {
		return errors.New("name required")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&answerBody{Performance: "hard"}))

	err := ValidateRequest(&answerBody{Performance: "good"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Performance", verrs[0].Field())

	assert.Error(t, ValidateRequest(&answerBody{Performance: "easy", Seconds: -1}))

	assert.Error(t, ValidateRequest(&selfValidating{}))
	assert.NoError(t, ValidateRequest(&selfValidating{Name: "x"}))
}
