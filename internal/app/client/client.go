package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dorsu/alumnitracer/internal/app/models/dto"
	"github.com/dorsu/alumnitracer/internal/pkg/apperrors"
	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

// ImageFile is an image upload attached to a profile update.
type ImageFile struct {
	Name    string
	Content []byte
}

// Client is the remote resource client for the tracer REST API. It attaches
// the bearer token when one is available and degrades to unauthenticated
// requests when it is not. Non-2xx responses become transport errors that
// carry the raw response body so callers can surface server-side validation
// detail verbatim; transport errors are never retried here.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenStore
	log     zerolog.Logger
}

// New creates a client rooted at baseURL.
func New(baseURL string, timeout time.Duration, tokens *TokenStore) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     logger.Component("client"),
	}
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string { return c.baseURL }

// Login authenticates against the tracer API and persists the issued token.
func (c *Client) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	body, err := json.Marshal(dto.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	var out dto.LoginResponse
	if err := c.doAs(ctx, http.MethodPost, "/api/auth/login/", "application/json", bytes.NewReader(body), &out, false); err != nil {
		return nil, err
	}
	if out.Token != "" {
		if err := c.tokens.Set(out.Token); err != nil {
			return nil, fmt.Errorf("failed to persist token: %w", err)
		}
	}
	return &out, nil
}

// FindSurveyByAlumni looks up the survey owned by the given alumni account.
// Returns (nil, nil) when the account has no submission; only the first
// element of the list result is used.
func (c *Client) FindSurveyByAlumni(ctx context.Context, alumniID int64) (*dto.SurveyWire, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/alumni-surveys/?alumni=%d", alumniID), "", nil, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrTransport, err.Error())
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewTransportError(resp.StatusCode, string(data))
	}

	list, err := dto.DecodeSurveyList(data)
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrPartialData, err.Error())
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// CreateSurvey submits a new survey (POST) and returns the created record,
// server-assigned id included.
func (c *Client) CreateSurvey(ctx context.Context, w dto.SurveyWire) (*dto.SurveyWire, error) {
	return c.sendSurvey(ctx, http.MethodPost, "/api/alumni-surveys/", w)
}

// UpdateSurvey updates an existing survey (PATCH) and returns the persisted
// record as the server sees it.
func (c *Client) UpdateSurvey(ctx context.Context, id int64, w dto.SurveyWire) (*dto.SurveyWire, error) {
	return c.sendSurvey(ctx, http.MethodPatch, fmt.Sprintf("/api/alumni-surveys/%d/", id), w)
}

func (c *Client) sendSurvey(ctx context.Context, method, path string, w dto.SurveyWire) (*dto.SurveyWire, error) {
	body, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode survey: %w", err)
	}
	var out dto.SurveyWire
	if err := c.do(ctx, method, path, "application/json", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAlumni fetches one alumni account record.
func (c *Client) GetAlumni(ctx context.Context, id int64) (*dto.ProfileWire, error) {
	var out dto.ProfileWire
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/alumni/%d/", id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAlumni patches an alumni account. Without an image the update is a
// JSON body; with one it becomes multipart with the image under the `image`
// field alongside the other changed fields.
func (c *Client) UpdateAlumni(ctx context.Context, id int64, upd dto.ProfileUpdate, image *ImageFile) (*dto.ProfileWire, error) {
	path := fmt.Sprintf("/api/alumni/%d/", id)
	var out dto.ProfileWire

	if image == nil {
		body, err := json.Marshal(upd)
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile update: %w", err)
		}
		if err := c.do(ctx, http.MethodPatch, path, "application/json", bytes.NewReader(body), &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range upd.Fields() {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write multipart field %s: %w", k, err)
		}
	}
	fw, err := mw.CreateFormFile("image", image.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart image part: %w", err)
	}
	if _, err := fw.Write(image.Content); err != nil {
		return nil, fmt.Errorf("failed to write multipart image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	if err := c.do(ctx, http.MethodPatch, path, mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAlumni removes an alumni account. Success is a bodiless 2xx.
func (c *Client) DeleteAlumni(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/alumni/%d/", id), "", nil, nil)
}

// newRequest builds a request with the bearer token attached when one is
// available within the provisioning window. Unauthed requests (login) skip
// the token lookup entirely so they never block on the provisioning poll.
func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed && c.tokens != nil {
		if tok, ok := c.tokens.Await(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		} else {
			c.log.Debug().Str("path", path).Msg("No token available, issuing unauthenticated request")
		}
	}
	return req, nil
}

// do runs one request and decodes a JSON response into out (when non-nil).
// A 404 maps to ErrResourceNotFound; any other non-2xx becomes a transport
// error carrying the raw body; a 2xx with an undecodable body becomes a
// partial-data error so callers can keep their last-known-good state.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	return c.doAs(ctx, method, path, contentType, body, out, true)
}

func (c *Client) doAs(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}, authed bool) error {
	req, err := c.newRequest(ctx, method, path, contentType, body, authed)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewCustomError(apperrors.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewCustomError(apperrors.ErrTransport, err.Error())
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewCustomError(apperrors.ErrResourceNotFound, string(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("Request failed")
		return apperrors.NewTransportError(resp.StatusCode, string(data))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewCustomError(apperrors.ErrPartialData, err.Error())
	}
	return nil
}
