// Package api はバックエンドのREST APIを呼ぶHTTPクライアント。
// 全リクエストがcookie（セッション）とJSONを持ち、タイムアウト付きで送られる。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout  = 10 * time.Second
	HeaderRequestID = "X-Request-Id"
)

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *log.Logger
}

type Option func(*Client)

// 通常リクエストのタイムアウト
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// テスト用にhttp.Clientを差し替える（Jarは維持される）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		jar := c.http.Jar
		c.http = hc
		if c.http.Jar == nil {
			c.http.Jar = jar
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// Newはcookie jar付きのクライアントを作る
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
		timeout: DefaultTimeout,
		log:     log.New("api"),
	}
	c.log.SetLevel(log.OFF)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// 呼び出し単位のオプション
type CallOption func(*call)

type call struct {
	timeout time.Duration
	query   url.Values
}

// このリクエストだけタイムアウトを変える（購入など）
func Timeout(d time.Duration) CallOption {
	return func(c *call) {
		c.timeout = d
	}
}

func Query(key, value string) CallOption {
	return func(c *call) {
		if c.query == nil {
			c.query = url.Values{}
		}
		c.query.Set(key, value)
	}
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, path string, in any, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPost, path, in, out, opts)
}

func (c *Client) Put(ctx context.Context, path string, in any, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPut, path, in, out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts)
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any, opts []CallOption) error {
	cl := call{timeout: c.timeout}
	for _, opt := range opts {
		opt(&cl)
	}

	op := method + " " + path
	target := c.baseURL + path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindValidation, Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, cl.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(HeaderRequestID, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = KindTimeout
		}
		c.log.Warnf("%s failed id=%s: %v", op, reqID, err)
		return &Error{Kind: kind, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Op: op, Err: err}
	}
	c.log.Debugf("%s status=%d id=%s took=%s", op, resp.StatusCode, reqID, time.Since(start))

	if resp.StatusCode >= 400 {
		var er errorResponse
		_ = json.Unmarshal(data, &er)
		return &Error{
			Kind:    kindFromStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: er.Error,
			Op:      op,
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Op: op, Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// パスのセグメントをエスケープして連結する
func Path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(strings.Trim(s, "/")))
	}
	return b.String()
}
