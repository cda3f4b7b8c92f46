//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

type cartBody struct {
	Lines []struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	} `json:"lines"`
	Summary struct {
		TotalPrice int64 `json:"totalPrice"`
	} `json:"summary"`
}

func TestSystem_E2E_Checkout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	doJSON(t, http.MethodDelete, baseURL+"/cart", nil, nil, 200)
	doJSON(t, http.MethodPut, baseURL+"/wallet", map[string]any{"coins": 1_000_000}, nil, 200)

	var screen struct {
		Status string           `json:"status"`
		Data   []map[string]any `json:"data"`
	}
	doJSON(t, http.MethodGet, baseURL+"/screens/catalog", nil, &screen, 200)
	if screen.Status != "ready" || len(screen.Data) == 0 {
		t.Fatalf("expected a non-empty catalog, got %q with %d items", screen.Status, len(screen.Data))
	}

	pid, _ := screen.Data[0]["id"].(string)
	if pid == "" {
		t.Fatalf("product id missing in response: %#v", screen.Data[0])
	}

	var c cartBody
	doJSON(t, http.MethodPost, baseURL+"/cart/items", map[string]any{"product_id": pid, "count": 2}, &c, 201)
	if len(c.Lines) != 1 || c.Lines[0].Count != 2 {
		t.Fatalf("unexpected cart: %+v", c)
	}

	if os.Getenv("E2E_RESTART_STOREFRONT") == "1" {
		restartStorefrontContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")

		doJSON(t, http.MethodGet, baseURL+"/cart", nil, &c, 200)
		if len(c.Lines) != 1 || c.Lines[0].ID != pid {
			t.Fatalf("cart not restored after restart: %+v", c)
		}
		doJSON(t, http.MethodPut, baseURL+"/wallet", map[string]any{"coins": 1_000_000}, nil, 200)
	}

	var created struct {
		OrderID string `json:"order_id"`
		Total   int64  `json:"total"`
	}
	doJSON(t, http.MethodPost, baseURL+"/checkout", nil, &created, 201)
	if created.OrderID == "" {
		t.Fatalf("order id missing: %+v", created)
	}

	doJSON(t, http.MethodGet, baseURL+"/cart", nil, &c, 200)
	if len(c.Lines) != 0 {
		t.Fatalf("cart not cleared after checkout: %+v", c)
	}

	var history struct {
		Status string `json:"status"`
		Data   []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	doJSON(t, http.MethodGet, baseURL+"/screens/orders", nil, &history, 200)
	if history.Status != "ready" || len(history.Data) == 0 {
		t.Fatalf("expected order history, got %+v", history)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// mock latency can reach 800ms per call
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
