// Package jobclient Job排序服务的HTTP API客户端
package jobclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LENAX/job-processing/pkg/api/dto"
	"github.com/LENAX/job-processing/pkg/core/dag"
)

// APIError 服务端返回的错误
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	if cycle, ok := e.Details["cycle"]; ok {
		return fmt.Sprintf("%s (HTTP %d): %v", e.Message, e.StatusCode, cycle)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsNotFound 是否为404错误
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client HTTP API客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建客户端
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ========== Job API ==========

// PushJob 保存Job定义
func (c *Client) PushJob(ctx context.Context, req dto.UpsertJobRequest) (*dto.JobDetail, error) {
	var resp dto.APIResponse[dto.JobDetail]
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListJobs 分页列出Job定义
func (c *Client) ListJobs(ctx context.Context, limit, offset int) (*dto.ListResponse[dto.JobSummary], error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/v1/jobs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp dto.APIResponse[dto.ListResponse[dto.JobSummary]]
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetJob 获取Job定义详情
func (c *Client) GetJob(ctx context.Context, name string) (*dto.JobDetail, error) {
	var resp dto.APIResponse[dto.JobDetail]
	if err := c.do(ctx, http.MethodGet, jobPath(name), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteJob 删除Job定义
func (c *Client) DeleteJob(ctx context.Context, name string) error {
	var resp dto.APIResponse[any]
	return c.do(ctx, http.MethodDelete, jobPath(name), nil, &resp)
}

// OrderJob 排序已保存的Job定义
func (c *Client) OrderJob(ctx context.Context, name string, policy dag.UnknownDependencyPolicy) (*dto.OrderResponse, error) {
	var resp dto.APIResponse[dto.OrderResponse]
	if err := c.do(ctx, http.MethodGet, orderPath(name, policy, false), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// OrderJobScript 排序已保存的Job定义并返回bash脚本
func (c *Client) OrderJobScript(ctx context.Context, name string, policy dag.UnknownDependencyPolicy) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+orderPath(name, policy, true), nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应体失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseError(resp.StatusCode, body)
	}
	return string(body), nil
}

// ========== Health API ==========

// Health 健康检查
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var resp dto.APIResponse[dto.HealthResponse]
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ========== HTTP Methods ==========

func jobPath(name string) string {
	return "/api/v1/jobs/" + url.PathEscape(name)
}

func orderPath(name string, policy dag.UnknownDependencyPolicy, script bool) string {
	params := url.Values{}
	if policy != "" {
		params.Set("unknown", string(policy))
	}
	if script {
		params.Set("format", "script")
	}
	path := jobPath(name) + "/orderedTasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	return parseResponse(resp, result)
}

func parseResponse(resp *http.Response, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(body))
	}
	return nil
}

// parseError 解析错误信封，非JSON响应体直接作为错误信息
func parseError(status int, body []byte) error {
	var envelope dto.APIResponse[any]
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Message == "" {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}
	return &APIError{StatusCode: status, Message: envelope.Message, Details: envelope.Details}
}
