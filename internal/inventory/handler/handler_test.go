package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/bitfantasy/nimo-inventory/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type apiEnv struct {
	router *gin.Engine
	hub    *events.Hub
	token  string
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	now := func() time.Time { return fixedNow }
	hub := events.NewHub(nil)
	repos := repository.NewGormRepositories(testutil.SetupTestDB(t))
	svc := service.NewServices(repos, service.Options{Hub: hub, Now: now})

	r := testutil.SetupRouter()
	RegisterRoutes(testutil.AuthGroup(r, "/api/v1"), NewHandlers(svc, hub, now))
	return &apiEnv{router: r, hub: hub, token: testutil.GenerateTestToken("user-1", "Tester")}
}

func (e *apiEnv) do(method, path string, body interface{}) (int, map[string]interface{}) {
	w := testutil.DoRequest(e.router, method, path, body, e.token)
	return w.Code, testutil.ParseResponse(w)
}

func dataOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

func idOf(t *testing.T, resp map[string]interface{}) int {
	t.Helper()
	return int(dataOf(t, resp)["id"].(float64))
}

func (e *apiEnv) createProduct(t *testing.T, sku string, stock, reorder int) int {
	t.Helper()
	code, resp := e.do("POST", "/api/v1/inventory/products", map[string]interface{}{
		"sku":           sku,
		"name":          "Product " + sku,
		"category":      "Hardware",
		"current_stock": stock,
		"reorder_level": reorder,
		"unit_cost":     "4.00",
		"selling_price": "10.00",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	return idOf(t, resp)
}

func TestAPI_RequiresToken(t *testing.T) {
	env := setupAPI(t)
	w := testutil.DoRequest(env.router, "GET", "/api/v1/inventory/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductAPI_CRUD(t *testing.T) {
	env := setupAPI(t)
	id := env.createProduct(t, "WID-1", 20, 5)

	code, resp := env.do("GET", fmt.Sprintf("/api/v1/inventory/products/%d", id), nil)
	require.Equal(t, http.StatusOK, code)
	data := dataOf(t, resp)
	assert.Equal(t, "WID-1", data["sku"])
	assert.Equal(t, "normal", data["stock_status"])

	code, resp = env.do("PUT", fmt.Sprintf("/api/v1/inventory/products/%d", id), map[string]interface{}{
		"current_stock": 3,
	})
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "low", dataOf(t, resp)["stock_status"])

	// the adjustment shows up in the product history
	code, resp = env.do("GET", fmt.Sprintf("/api/v1/inventory/products/%d/movements", id), nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, dataOf(t, resp)["total"])

	code, resp = env.do("GET", "/api/v1/inventory/products?stock_level=low", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, dataOf(t, resp)["total"])

	code, _ = env.do("DELETE", fmt.Sprintf("/api/v1/inventory/products/%d", id), nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = env.do("GET", fmt.Sprintf("/api/v1/inventory/products/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.EqualValues(t, 40400, resp["code"])
}

func TestProductAPI_Validation(t *testing.T) {
	env := setupAPI(t)

	code, resp := env.do("POST", "/api/v1/inventory/products", map[string]interface{}{"name": "no sku"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.EqualValues(t, 40000, resp["code"])

	env.createProduct(t, "DUP-1", 1, 0)
	code, resp = env.do("POST", "/api/v1/inventory/products", map[string]interface{}{
		"sku": "dup-1", "name": "again",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.EqualValues(t, 40900, resp["code"])

	code, _ = env.do("GET", "/api/v1/inventory/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do("GET", "/api/v1/inventory/products?stock_level=plenty", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSupplierAPI(t *testing.T) {
	env := setupAPI(t)

	code, resp := env.do("POST", "/api/v1/inventory/suppliers", map[string]interface{}{
		"name":  "Acme",
		"email": "sales@acme.test",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	assert.Equal(t, "Net 30", dataOf(t, resp)["payment_terms"])

	code, resp = env.do("POST", "/api/v1/inventory/suppliers", map[string]interface{}{
		"name":  "Broken",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, code, resp)

	code, resp = env.do("GET", "/api/v1/inventory/suppliers?search=acm", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, dataOf(t, resp)["total"])
}

func TestStockAPI_RecordMovement(t *testing.T) {
	env := setupAPI(t)
	id := env.createProduct(t, "BOLT", 10, 2)

	code, resp := env.do("POST", "/api/v1/inventory/stock-movements", map[string]interface{}{
		"product_id": id,
		"type":       "OUT",
		"quantity":   4,
		"reason":     "Damage Adjustment",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	assert.Equal(t, "Product BOLT", dataOf(t, resp)["product_name"])

	_, resp = env.do("GET", fmt.Sprintf("/api/v1/inventory/products/%d", id), nil)
	assert.EqualValues(t, 6, dataOf(t, resp)["current_stock"])

	code, _ = env.do("POST", "/api/v1/inventory/stock-movements", map[string]interface{}{
		"product_id": id,
		"type":       "SIDEWAYS",
		"quantity":   1,
		"reason":     "Return",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = env.do("GET", "/api/v1/inventory/stock-movements?type=OUT", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, dataOf(t, resp)["total"])

	code, _ = env.do("GET", "/api/v1/inventory/stock-movements?start_date=2024-03-20&end_date=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSalesAPI_StatusLifecycle(t *testing.T) {
	env := setupAPI(t)
	id := env.createProduct(t, "GADGET", 10, 2)

	code, resp := env.do("POST", "/api/v1/inventory/sales-orders", map[string]interface{}{
		"customer_name": "Jane",
		"items":         []map[string]interface{}{{"product_id": id, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, code, resp)
	order := dataOf(t, resp)
	assert.Equal(t, "SO-2024-001", order["order_number"])
	assert.Equal(t, "Pending", order["status"])
	orderID := int(order["id"].(float64))
	statusPath := fmt.Sprintf("/api/v1/inventory/sales-orders/%d/status", orderID)

	code, resp = env.do("PUT", statusPath, map[string]interface{}{"status": "Fulfilled"})
	require.Equal(t, http.StatusOK, code, resp)
	assert.NotNil(t, dataOf(t, resp)["fulfillment_date"])

	_, resp = env.do("GET", fmt.Sprintf("/api/v1/inventory/products/%d", id), nil)
	assert.EqualValues(t, 7, dataOf(t, resp)["current_stock"])

	code, resp = env.do("PUT", statusPath, map[string]interface{}{"status": "Processing"})
	assert.Equal(t, http.StatusConflict, code)
	assert.EqualValues(t, 40901, resp["code"])

	code, _ = env.do("PUT", statusPath, map[string]interface{}{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPurchaseAPI_ReceiveAndCancel(t *testing.T) {
	env := setupAPI(t)
	_, resp := env.do("POST", "/api/v1/inventory/suppliers", map[string]interface{}{"name": "Acme"})
	supplierID := idOf(t, resp)
	productID := env.createProduct(t, "NUT", 0, 5)

	newOrder := func() int {
		code, resp := env.do("POST", "/api/v1/inventory/purchase-orders", map[string]interface{}{
			"supplier_id": supplierID,
			"items":       []map[string]interface{}{{"product_id": productID, "quantity": 25}},
		})
		require.Equal(t, http.StatusCreated, code, resp)
		assert.Equal(t, "Acme", dataOf(t, resp)["supplier_name"])
		return idOf(t, resp)
	}

	received := newOrder()
	code, resp := env.do("POST", fmt.Sprintf("/api/v1/inventory/purchase-orders/%d/receive", received), nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "Received", dataOf(t, resp)["status"])

	_, resp = env.do("GET", fmt.Sprintf("/api/v1/inventory/products/%d", productID), nil)
	assert.EqualValues(t, 25, dataOf(t, resp)["current_stock"])

	code, _ = env.do("POST", fmt.Sprintf("/api/v1/inventory/purchase-orders/%d/cancel", received), nil)
	assert.Equal(t, http.StatusConflict, code)

	cancelled := newOrder()
	code, resp = env.do("POST", fmt.Sprintf("/api/v1/inventory/purchase-orders/%d/cancel", cancelled), nil)
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "Cancelled", dataOf(t, resp)["status"])

	code, resp = env.do("GET", "/api/v1/inventory/purchase-orders?status=Ordered", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, dataOf(t, resp)["total"])
}

func TestReportAPI(t *testing.T) {
	env := setupAPI(t)
	id := env.createProduct(t, "LAMP", 10, 2)
	_, resp := env.do("POST", "/api/v1/inventory/sales-orders", map[string]interface{}{
		"customer_name": "Jane",
		"items":         []map[string]interface{}{{"product_id": id, "quantity": 2}},
	})
	orderID := idOf(t, resp)
	env.do("PUT", fmt.Sprintf("/api/v1/inventory/sales-orders/%d/status", orderID), map[string]interface{}{"status": "Fulfilled"})

	code, resp := env.do("GET", "/api/v1/inventory/reports", nil)
	require.Equal(t, http.StatusOK, code, resp)
	report := dataOf(t, resp)
	dateRange := report["date_range"].(map[string]interface{})
	assert.Equal(t, "2024-01-01", dateRange["start_date"])
	assert.Equal(t, "2024-03-31", dateRange["end_date"])
	top := report["top_products"].([]interface{})
	require.Len(t, top, 1)

	code, _ = env.do("GET", "/api/v1/inventory/reports?start_date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = env.do("GET", "/api/v1/inventory/dashboard?horizon_days=7", nil)
	require.Equal(t, http.StatusOK, code)
	dashboard := dataOf(t, resp)
	assert.EqualValues(t, 7, dashboard["horizon_days"])
	assert.Len(t, dashboard["recent_movements"], 1)
}

func TestReportAPI_Export(t *testing.T) {
	env := setupAPI(t)
	env.createProduct(t, "LAMP", 10, 2)

	w := testutil.DoRequest(env.router, "GET", "/api/v1/inventory/reports/export?format=md&start_date=2024-03-01&end_date=2024-03-31", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".md")
	assert.Contains(t, w.Body.String(), "| Total products |")

	w = testutil.DoRequest(env.router, "GET", "/api/v1/inventory/reports/export?format=pdf", nil, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventStreamConnected(t *testing.T) {
	env := setupAPI(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("GET", "/api/v1/inventory/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	assert.Contains(t, body, "connected")
	assert.Contains(t, body, `"user_id":"user-1"`)

	m := regexp.MustCompile(`"client_id":"inv-([0-9a-f-]+)"`).FindStringSubmatch(body)
	require.Len(t, m, 2, body)
	_, err := uuid.Parse(m[1])
	assert.NoError(t, err)
	assert.Zero(t, env.hub.ClientCount())
}

func TestEventStreamDisabled(t *testing.T) {
	r := testutil.SetupRouter()
	r.GET("/events", NewEventsHandler(nil).Stream)
	w := testutil.DoRequest(r, "GET", "/events", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
