package client

// http_client.go = typed HTTP client for the reviewhub API, shared by every CLI command.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reviewhub/internal/microservices/http-api/dto"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, "; "))
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends in as JSON and decodes a 2xx body into out. out may be nil.
func (c *HTTPClient) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Fields = payload.Fields
	}
	return apiErr
}

func pageParams(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return q
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Auth

func (c *HTTPClient) Signup(req dto.SignupRequest) (*dto.SignupResponse, error) {
	var out dto.SignupResponse
	if err := c.do(http.MethodPost, "/auth/signup/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Token(req dto.TokenRequest) (*dto.TokenResponse, error) {
	var out dto.TokenResponse
	if err := c.do(http.MethodPost, "/auth/token/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalog

func (c *HTTPClient) ListCategories(search string, page, pageSize int) (*dto.Paginated[dto.TaxonResponse], error) {
	return c.listTaxa("/categories/", search, page, pageSize)
}

func (c *HTTPClient) ListGenres(search string, page, pageSize int) (*dto.Paginated[dto.TaxonResponse], error) {
	return c.listTaxa("/genres/", search, page, pageSize)
}

func (c *HTTPClient) listTaxa(path, search string, page, pageSize int) (*dto.Paginated[dto.TaxonResponse], error) {
	q := pageParams(page, pageSize)
	if search != "" {
		q.Set("search", search)
	}
	var out dto.Paginated[dto.TaxonResponse]
	if err := c.do(http.MethodGet, withQuery(path, q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTaxon creates a category (kind "categories") or a genre (kind "genres").
func (c *HTTPClient) CreateTaxon(kind string, req dto.CreateTaxonRequest) (*dto.TaxonResponse, error) {
	var out dto.TaxonResponse
	if err := c.do(http.MethodPost, "/"+kind+"/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteTaxon(kind, slug string) error {
	return c.do(http.MethodDelete, "/"+kind+"/"+url.PathEscape(slug)+"/", nil, nil)
}

// Titles

type TitleFilter struct {
	Genre    string
	Category string
	Name     string
	Year     int
}

func (c *HTTPClient) ListTitles(f TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	q := pageParams(page, pageSize)
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	var out dto.Paginated[dto.TitleResponse]
	if err := c.do(http.MethodGet, withQuery("/titles/", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetTitle(id int64) (*dto.TitleResponse, error) {
	var out dto.TitleResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/titles/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateTitle(req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	var out dto.TitleResponse
	if err := c.do(http.MethodPost, "/titles/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteTitle(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/titles/%d/", id), nil, nil)
}

// Reviews

func (c *HTTPClient) ListReviews(titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	var out dto.Paginated[dto.ReviewResponse]
	path := withQuery(fmt.Sprintf("/titles/%d/reviews/", titleID), pageParams(page, pageSize))
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SubmitReview(titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var out dto.ReviewResponse
	req := dto.CreateReviewRequest{Text: text, Score: &score}
	if err := c.do(http.MethodPost, fmt.Sprintf("/titles/%d/reviews/", titleID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AmendReview(titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	var out dto.ReviewResponse
	if err := c.do(http.MethodPatch, fmt.Sprintf("/titles/%d/reviews/%d/", titleID, reviewID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) WithdrawReview(titleID, reviewID int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/titles/%d/reviews/%d/", titleID, reviewID), nil, nil)
}

// Comments

func (c *HTTPClient) ListComments(titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	var out dto.Paginated[dto.CommentResponse]
	path := withQuery(fmt.Sprintf("/titles/%d/reviews/%d/comments/", titleID, reviewID), pageParams(page, pageSize))
	if err := c.do(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PostComment(titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	var out dto.CommentResponse
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments/", titleID, reviewID)
	if err := c.do(http.MethodPost, path, dto.CommentRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteComment(titleID, reviewID, commentID int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/titles/%d/reviews/%d/comments/%d/", titleID, reviewID, commentID), nil, nil)
}

// Users

func (c *HTTPClient) Me() (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(http.MethodGet, "/users/me/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateMe(req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(http.MethodPatch, "/users/me/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetRole changes another user's role. Admin only.
func (c *HTTPClient) SetRole(username, role string) (*dto.UserResponse, error) {
	var out dto.UserResponse
	req := dto.UpdateUserRequest{Role: &role}
	if err := c.do(http.MethodPatch, "/users/"+url.PathEscape(username)+"/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
