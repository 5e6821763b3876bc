package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/guestgraph/guestgraph/helper"
	"github.com/guestgraph/guestgraph/pkg/retry"
)

// GremlinConfig configures the HTTP Gremlin client.
type GremlinConfig struct {
	// Endpoint is the Gremlin server HTTP endpoint, eg.
	// http://localhost:8182/gremlin.
	Endpoint string
	Timeout  time.Duration
	Retry    retry.Config
}

// GremlinClient executes traversals over the Gremlin server HTTP
// channel. Transient transport failures are retried with backoff and
// a circuit breaker keeps a dead server from stalling every request;
// rejected queries fail immediately with ErrQueryRejected.
type GremlinClient struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	retryCfg retry.Config
	logger   *slog.Logger
}

func NewGremlinClient(cfg GremlinConfig, logger *slog.Logger) (*GremlinClient, error) {
	if cfg.Endpoint == "" {
		return nil, helper.NewError("NewGremlinClient", fmt.Errorf("endpoint must not be empty"))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gremlin",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("gremlin circuit breaker state change",
				slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})

	return &GremlinClient{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		breaker:  breaker,
		retryCfg: cfg.Retry,
		logger:   logger,
	}, nil
}

// gremlinResponse is the relevant subset of the server response.
type gremlinResponse struct {
	Result struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

// Execute runs one traversal and returns its rows as flat maps.
func (c *GremlinClient) Execute(ctx context.Context, query string) ([]map[string]any, error) {
	var rows []map[string]any

	err := retry.Do(ctx, c.retryCfg, func() error {
		result, err := c.breaker.Execute(func() (any, error) {
			return c.execute(ctx, query)
		})
		if err != nil {
			return err
		}
		rows = result.([]map[string]any)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *GremlinClient) execute(ctx context.Context, query string) ([]map[string]any, error) {
	body, err := json.Marshal(map[string]string{"gremlin": query})
	if err != nil {
		return nil, retry.NonRetryable(helper.NewError("marshal request", err))
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, retry.NonRetryable(helper.NewError("build request", err))
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		return nil, helper.NewError("execute query", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, 16<<20))
	if err != nil {
		return nil, helper.NewError("read response", err)
	}

	// 4xx means the server understood and refused, usually a bad
	// traversal. Retrying the same text cannot help.
	if response.StatusCode >= 400 && response.StatusCode < 500 {
		return nil, retry.NonRetryable(fmt.Errorf("%w: status %d: %s", ErrQueryRejected, response.StatusCode, truncate(string(payload), 200)))
	}
	if response.StatusCode != http.StatusOK {
		return nil, helper.NewError("execute query", fmt.Errorf("unexpected status %d", response.StatusCode))
	}

	var decoded gremlinResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, retry.NonRetryable(helper.NewError("decode response", err))
	}
	if decoded.Status.Code >= 400 && decoded.Status.Code < 500 {
		return nil, retry.NonRetryable(fmt.Errorf("%w: %s", ErrQueryRejected, decoded.Status.Message))
	}

	return decodeRows(decoded.Result.Data)
}

// decodeRows unwraps the GraphSON typed values the Gremlin server
// returns into plain maps. Untyped JSON arrays pass through as is.
func decodeRows(data json.RawMessage) ([]map[string]any, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, retry.NonRetryable(helper.NewError("decode rows", err))
	}

	list, ok := flattenGraphSON(raw).([]any)
	if !ok {
		return nil, retry.NonRetryable(helper.NewError("decode rows", fmt.Errorf("result data is not a list")))
	}

	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
			continue
		}
		rows = append(rows, map[string]any{"value": item})
	}
	return rows, nil
}

// flattenGraphSON recursively strips GraphSON @type/@value wrappers.
// g:Map values arrive as alternating key value lists and become maps.
func flattenGraphSON(value any) any {
	switch v := value.(type) {
	case map[string]any:
		typeName, hasType := v["@type"].(string)
		inner, hasValue := v["@value"]
		if hasType && hasValue {
			if typeName == "g:Map" {
				return flattenGraphSONMap(inner)
			}
			return flattenGraphSON(inner)
		}
		flattened := make(map[string]any, len(v))
		for key, item := range v {
			flattened[key] = flattenGraphSON(item)
		}
		return flattened
	case []any:
		flattened := make([]any, len(v))
		for i, item := range v {
			flattened[i] = flattenGraphSON(item)
		}
		return flattened
	default:
		return value
	}
}

func flattenGraphSONMap(value any) any {
	pairs, ok := value.([]any)
	if !ok || len(pairs)%2 != 0 {
		return flattenGraphSON(value)
	}
	flattened := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := flattenGraphSON(pairs[i]).(string)
		if !ok {
			key = fmt.Sprintf("%v", flattenGraphSON(pairs[i]))
		}
		flattened[key] = flattenGraphSON(pairs[i+1])
	}
	return flattened
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
