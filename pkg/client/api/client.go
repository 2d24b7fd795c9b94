// Package api 是车辆目录 HTTP 接口的客户端。
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const userAgent = "car-catalog-cli"

// APIError 服务端返回的 {success:false, message}，Message 原样展示给用户
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

type Car struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CarInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

type Upload struct {
	URL                string `json:"url"`
	DownloadURL        string `json:"downloadUrl"`
	Pathname           string `json:"pathname"`
	ContentType        string `json:"contentType"`
	ContentDisposition string `json:"contentDisposition"`
	Size               int64  `json:"size"`
}

type Token struct {
	Token  string    `json:"token"`
	Expire time.Time `json:"expire"`
}

type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Client struct {
	hc      *client.Client
	baseURL string

	mu    sync.RWMutex
	token string
}

type Option func(*options)

type options struct {
	timeout time.Duration
	token   string
}

// WithTimeout 单次请求的读写超时
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	o := options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	hc, err := client.NewClient(
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(o.timeout),
		client.WithWriteTimeout(o.timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Client{
		hc:      hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   o.token,
	}, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, consts.MethodPost, "/sign-up", jsonBody(body), nil)
}

// SignIn 成功后保存令牌，后续请求自动携带
func (c *Client) SignIn(ctx context.Context, email, password string) (Token, error) {
	var out Token
	body := map[string]string{"identifier": email, "password": password}
	if err := c.do(ctx, consts.MethodPost, "/sign-in", jsonBody(body), &out); err != nil {
		return Token{}, err
	}
	c.SetToken(out.Token)
	return out, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, consts.MethodPost, "/sign-out", nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (Profile, error) {
	var out Profile
	err := c.do(ctx, consts.MethodGet, "/me", nil, &out)
	return out, err
}

func (c *Client) ListCars(ctx context.Context) ([]Car, error) {
	var out struct {
		Cars []Car `json:"cars"`
	}
	if err := c.do(ctx, consts.MethodGet, "/cars", nil, &out); err != nil {
		return nil, err
	}
	if out.Cars == nil {
		out.Cars = []Car{}
	}
	return out.Cars, nil
}

func (c *Client) CreateCar(ctx context.Context, in CarInput) (Car, error) {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	var out struct {
		Car Car `json:"car"`
	}
	if err := c.do(ctx, consts.MethodPost, "/cars", jsonBody(in), &out); err != nil {
		return Car{}, err
	}
	return out.Car, nil
}

func (c *Client) DeleteCar(ctx context.Context, id string) error {
	return c.do(ctx, consts.MethodDelete, "/cars/"+url.PathEscape(id), nil, nil)
}

// Upload 以原始字节上传单个文件
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (Upload, error) {
	var out Upload
	path := "/upload?filename=" + url.QueryEscape(filename)
	err := c.do(ctx, consts.MethodPost, path, &rawBody{data: data, contentType: "application/octet-stream"}, &out)
	return out, err
}

type rawBody struct {
	data        []byte
	contentType string
	err         error
}

func jsonBody(v any) *rawBody {
	data, err := json.Marshal(v)
	return &rawBody{data: data, contentType: consts.MIMEApplicationJSON, err: err}
}

func (c *Client) do(ctx context.Context, method, path string, body *rawBody, out any) error {
	if body != nil && body.err != nil {
		return fmt.Errorf("encode request: %w", body.err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.SetMethod(method)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", consts.MIMEApplicationJSON)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.SetContentTypeBytes([]byte(body.contentType))
		req.SetBody(body.data)
	}

	if err := c.hc.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return decodeError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
	}
	return &APIError{Status: status, Message: payload.Message}
}
