package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtpac "github.com/golang-jwt/jwt/v4"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"github.com/vova4o/gonotes/internal/client/models"
	"github.com/vova4o/gonotes/package/logger"
)

// DefaultTimeout bounds connect, response headers and the whole request
const DefaultTimeout = 30 * time.Second

// maxErrorBody limits how much of a failed response is kept as diagnostic text
const maxErrorBody = 64 << 10

// ErrNotPersisted is returned for update/delete of a note the server has never seen
var ErrNotPersisted = errors.New("note is not saved on the server yet")

// APIError is a non-2xx answer of the notes API
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return e.Op + ": " + e.Body
}

// HTTPClient клиент REST API заметок
type HTTPClient struct {
	log         *logger.Logger
	client      *http.Client
	baseURL     *url.URL
	serv        Servicer
	mu          sync.RWMutex
	accessToken string
}

// Servicer interface
type Servicer interface {
	SaveToken(ctx context.Context, token string) error
	GetToken(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
	SaveUsername(ctx context.Context, username string) error
	GetUsername(ctx context.Context) (string, error)
	IsLoggedIn(ctx context.Context) bool
}

// NewHTTPClient function for creating new client. The persisted token is loaded into memory.
func NewHTTPClient(ctx context.Context, baseURL string, timeout time.Duration, log *logger.Logger, serv Servicer) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	log = log.With("component", "api")
	c := &HTTPClient{
		log:     log,
		client:  newHTTPTransportClient(timeout),
		baseURL: u,
		serv:    serv,
	}

	token, err := serv.GetToken(ctx)
	if err != nil {
		log.Warning("Failed to restore auth token: " + err.Error())
	}
	c.accessToken = token

	return c, nil
}

func newHTTPTransportClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// Close releases idle connections
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}

// Register function for register user in server
func (c *HTTPClient) Register(ctx context.Context, reg models.RegisterAndLogin) (*models.TokenResponse, error) {
	c.log.Info("Register called!")

	body, err := json.Marshal(map[string]string{
		"username": reg.Username,
		"password": reg.Password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "application/json", bytes.NewReader(body), false, "register")
	if err != nil {
		c.log.Error("Error registering user: " + err.Error())
		return nil, fmt.Errorf("Registration failed: %w", err)
	}
	defer resp.Body.Close()

	return c.handleTokenResponse(ctx, resp, "Registration failed", reg.Username)
}

// Login function for login user in server
func (c *HTTPClient) Login(ctx context.Context, reg models.RegisterAndLogin) (*models.TokenResponse, error) {
	c.log.Info("Login called for user: " + reg.Username)

	// поле называется username, даже если интерфейс спрашивает email
	form := url.Values{}
	form.Set("username", reg.Username)
	form.Set("password", reg.Password)
	form.Set("grant_type", "password")

	resp, err := c.do(ctx, http.MethodPost, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), false, "token")
	if err != nil {
		c.log.Error("Error login user: " + err.Error())
		return nil, fmt.Errorf("Login failed: %w", err)
	}
	defer resp.Body.Close()

	return c.handleTokenResponse(ctx, resp, "Login failed", reg.Username)
}

func (c *HTTPClient) handleTokenResponse(ctx context.Context, resp *http.Response, op, username string) (*models.TokenResponse, error) {
	if err := checkStatus(resp, op); err != nil {
		c.log.Error(err.Error())
		return nil, err
	}

	var token models.TokenResponse
	if err := decodeBody(resp.Body, &token); err != nil {
		c.log.Error("Failed to decode token response: " + err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if token.AccessToken == "" {
		c.log.Error("Empty token")
		return nil, fmt.Errorf("%s: empty token", op)
	}

	if err := c.SetAuthToken(ctx, token.AccessToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.serv.SaveUsername(ctx, username); err != nil {
		c.log.Error("Error saving username")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if exp, ok := c.TokenExpiry(); ok {
		c.log.Info(fmt.Sprintf("Access token is valid. Time remaining: %v", time.Until(exp).Round(time.Second)))
	}

	return &token, nil
}

// SetAuthToken caches the token in memory and persists it
func (c *HTTPClient) SetAuthToken(ctx context.Context, token string) error {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()

	if err := c.serv.SaveToken(ctx, token); err != nil {
		c.log.Error("Error saving auth token")
		return err
	}

	return nil
}

// Logout forgets the token locally; the server is not contacted
func (c *HTTPClient) Logout(ctx context.Context) error {
	c.log.Info("Logout called!")

	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()

	return c.serv.ClearToken(ctx)
}

// IsLoggedIn reports whether the token store holds a token
func (c *HTTPClient) IsLoggedIn(ctx context.Context) bool {
	return c.serv.IsLoggedIn(ctx)
}

// Username returns the stored username of the current session
func (c *HTTPClient) Username(ctx context.Context) string {
	username, err := c.serv.GetUsername(ctx)
	if err != nil {
		return ""
	}
	return username
}

// TokenExpiry reads the exp claim of the cached token without verifying it
func (c *HTTPClient) TokenExpiry() (time.Time, bool) {
	token := c.token()
	if token == "" {
		return time.Time{}, false
	}

	// Парсинг токена без проверки подписи
	parsed, _, err := new(jwtpac.Parser).ParseUnverified(token, jwtpac.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	claims, ok := parsed.Claims.(jwtpac.MapClaims)
	if !ok {
		return time.Time{}, false
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}

	return time.Unix(int64(exp), 0), true
}

// GetNotes function for getting notes from server
func (c *HTTPClient) GetNotes(ctx context.Context) ([]models.RemoteNote, error) {
	const op = "Failed to fetch notes"
	c.log.Info("GetNotes called!")

	resp, err := c.do(ctx, http.MethodGet, "", nil, true, "notes")
	if err != nil {
		c.log.Error("Error fetching notes: " + err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, op); err != nil {
		c.log.Error(err.Error())
		return nil, err
	}

	var notes []models.RemoteNote
	if err := decodeBody(resp.Body, &notes); err != nil {
		c.log.Error("Failed to decode notes: " + err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("Successfully fetched " + strconv.Itoa(len(notes)) + " notes")
	return notes, nil
}

// CreateNote function for adding note to server
func (c *HTTPClient) CreateNote(ctx context.Context, note models.RemoteNote) (*models.RemoteNote, error) {
	c.log.Info("CreateNote called!")
	return c.sendNote(ctx, http.MethodPost, "Failed to create note", note, "notes")
}

// UpdateNote updates existing note
func (c *HTTPClient) UpdateNote(ctx context.Context, id models.Identifier, note models.RemoteNote) (*models.RemoteNote, error) {
	const op = "Failed to update note"
	c.log.Info("UpdateNote called for " + id.String())

	if !id.IsRemote() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotPersisted)
	}

	return c.sendNote(ctx, http.MethodPut, op, note, "notes", id.String())
}

// DeleteNote deletes existing note
func (c *HTTPClient) DeleteNote(ctx context.Context, id models.Identifier) error {
	const op = "Failed to delete note"
	c.log.Info("DeleteNote called for " + id.String())

	if !id.IsRemote() {
		return fmt.Errorf("%s: %w", op, ErrNotPersisted)
	}

	resp, err := c.do(ctx, http.MethodDelete, "", nil, true, "notes", id.String())
	if err != nil {
		c.log.Error("Error deleting note: " + err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, op); err != nil {
		c.log.Error(err.Error())
		return err
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) sendNote(ctx context.Context, method, op string, note models.RemoteNote, path ...string) (*models.RemoteNote, error) {
	body, err := json.Marshal(note)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.do(ctx, method, "application/json", bytes.NewReader(body), true, path...)
	if err != nil {
		c.log.Error(op + ": " + err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, op); err != nil {
		c.log.Error(err.Error())
		return nil, err
	}

	var saved models.RemoteNote
	if err := decodeBody(resp.Body, &saved); err != nil {
		c.log.Error("Failed to decode note: " + err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &saved, nil
}

// do builds and sends a request. Without a cached token the request still goes out unauthenticated.
func (c *HTTPClient) do(ctx context.Context, method, contentType string, body io.Reader, auth bool, path ...string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path...).String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if auth {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			c.log.Warning("No auth token available")
		}
	}

	return c.client.Do(req)
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       text,
	}
}

// decodeBody decodes JSON ignoring fields the client does not know about.
// Bodies that are not strict JSON are read as JSON5 and normalized first.
func decodeBody(r io.Reader, v any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty response body")
	}

	if !json.Valid(raw) {
		raw, err = normalizeJSON5(raw)
		if err != nil {
			return err
		}
	}

	return json.Unmarshal(raw, v)
}

func normalizeJSON5(raw []byte) ([]byte, error) {
	var relaxed any
	if err := json5.Unmarshal(raw, &relaxed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return json.Marshal(relaxed)
}
