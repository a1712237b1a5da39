// internal/tests/marketplace_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/config"
	"github.com/Mohit-R-04/FarmToMarket/internal/database"
	"github.com/Mohit-R-04/FarmToMarket/internal/events"
	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/router"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

// MarketplaceTestSuite drives the HTTP API against a real PostgreSQL
// database named by TEST_DATABASE_DSN. Every table is truncated between
// tests.
type MarketplaceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (suite *MarketplaceTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		suite.T().Skip("TEST_DATABASE_DSN not set")
	}

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(postgres.Open(dsn), database.NewGormConfig("silent"))
	suite.Require().NoError(err)
	suite.Require().NoError(database.RunMigrations(db))
	suite.Require().NoError(i18n.Initialize("en"))
	utils.SetJWTSecret("test-secret")
	utils.SetJWTIssuer("farm-to-market-test")

	cfg := &config.Config{
		Environment: "test",
		RateLimit:   config.RateLimitConfig{RequestsPerSecond: 10000, Burst: 10000},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Frontend:    config.FrontendConfig{BaseURL: "http://localhost:5173"},
	}

	suite.db = db
	suite.router = router.Initialize(cfg, router.Dependencies{
		DB:      db,
		Emitter: events.NewEmitter(events.NoopPublisher{}, nil),
	})
}

func (suite *MarketplaceTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(`TRUNCATE notifications, bookings, transporter_requests,
		seller_requests, journey_steps, products, users, audit_logs`).Error)

	suite.register("farmer-1", "FARMER", map[string]interface{}{"name": "Ravi", "location": "Salem"})
	suite.register("seller-1", "SELLER", map[string]interface{}{"shopName": "Fresh Mart", "address": "Chennai"})
	suite.register("seller-2", "SELLER", map[string]interface{}{"shopName": "Green Grocer", "address": "Madurai"})
	suite.register("transporter-1", "TRANSPORTER", map[string]interface{}{
		"name":                "Kumar",
		"vehicleType":         "truck",
		"vehicleNumber":       "TN 01 AB 1234",
		"license":             "DL-4471",
		"expectedChargePerKm": 12.5,
	})
}

func (suite *MarketplaceTestSuite) token(userID, role string) string {
	token, err := utils.GenerateJWT(userID, userID+"@example.com", role, 1)
	suite.Require().NoError(err)
	return token
}

func (suite *MarketplaceTestSuite) call(method, path, userID, role string, body interface{}) (int, envelope) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token(userID, role))
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func (suite *MarketplaceTestSuite) decode(raw json.RawMessage, dst interface{}) {
	suite.Require().NoError(json.Unmarshal(raw, dst))
}

func (suite *MarketplaceTestSuite) register(userID, role string, data map[string]interface{}) {
	code, resp := suite.call("POST", "/api/roles/"+role, userID, role, map[string]interface{}{"role_data": data})
	suite.Require().Equal(http.StatusOK, code, resp.Error)
}

type productView struct {
	ID       string  `json:"id"`
	Quantity float64 `json:"quantity"`
	Status   string  `json:"status"`
	SellerID string  `json:"seller_id"`
	Journey  []struct {
		Type     string   `json:"type"`
		Status   string   `json:"status"`
		Quantity *float64 `json:"quantity"`
		Price    *float64 `json:"price"`
	} `json:"journey"`
}

func (suite *MarketplaceTestSuite) createProduct(quantity float64) string {
	code, resp := suite.call("POST", "/api/products", "farmer-1", "FARMER", map[string]interface{}{
		"name":                "Tomatoes",
		"quantity":            quantity,
		"unit":                "kg",
		"production_location": "Salem",
	})
	suite.Require().Equal(http.StatusCreated, code)

	var created struct {
		Product productView `json:"product"`
	}
	suite.decode(resp.Data, &created)
	return created.Product.ID
}

func (suite *MarketplaceTestSuite) requestSeller(productID, sellerID string) string {
	code, resp := suite.call("POST", "/api/seller-requests", "farmer-1", "FARMER", map[string]interface{}{
		"product_id":    productID,
		"seller_id":     sellerID,
		"farmer_price":  2000,
		"selling_price": 50,
	})
	suite.Require().Equal(http.StatusCreated, code)

	var request struct {
		ID string `json:"id"`
	}
	suite.decode(resp.Data, &request)
	return request.ID
}

func (suite *MarketplaceTestSuite) assignSeller(productID string) {
	requestID := suite.requestSeller(productID, "seller-1")
	code, _ := suite.call("PUT", "/api/seller-requests/"+requestID, "seller-1", "SELLER",
		map[string]interface{}{"status": "ACCEPTED"})
	suite.Require().Equal(http.StatusOK, code)
}

func (suite *MarketplaceTestSuite) bookTransport(productID string) string {
	code, resp := suite.call("POST", "/api/transporter-requests", "farmer-1", "FARMER", map[string]interface{}{
		"product_id":             productID,
		"transporter_id":         "transporter-1",
		"farmer_demanded_charge": 800,
		"transport_date":         time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	suite.Require().Equal(http.StatusCreated, code)

	var request struct {
		ID string `json:"id"`
	}
	suite.decode(resp.Data, &request)

	code, resp = suite.call("PUT", "/api/transporter-requests/"+request.ID, "transporter-1", "TRANSPORTER",
		map[string]interface{}{"status": "ACCEPTED"})
	suite.Require().Equal(http.StatusOK, code)

	var accepted struct {
		Booking struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"booking"`
	}
	suite.decode(resp.Data, &accepted)
	suite.Equal("ACCEPTED", accepted.Booking.Status)
	return accepted.Booking.ID
}

func (suite *MarketplaceTestSuite) product(id string) productView {
	code, resp := suite.call("GET", "/api/products/"+id, "farmer-1", "FARMER", nil)
	suite.Require().Equal(http.StatusOK, code)
	var p productView
	suite.decode(resp.Data, &p)
	return p
}

func (suite *MarketplaceTestSuite) TestPartialSale() {
	productID := suite.createProduct(100)
	suite.assignSeller(productID)

	code, _ := suite.call("POST", "/api/products/"+productID+"/sales", "seller-1", "SELLER",
		map[string]interface{}{"quantity": 40})
	suite.Require().Equal(http.StatusOK, code)

	p := suite.product(productID)
	suite.Equal(60.0, p.Quantity)
	suite.Equal("PARTIALLY_SOLD", p.Status)

	var sales int
	for _, step := range p.Journey {
		if step.Type == "SELLER" && step.Status == "PARTIALLY_SOLD" {
			sales++
			suite.Require().NotNil(step.Quantity)
			suite.Equal(40.0, *step.Quantity)
			suite.Require().NotNil(step.Price)
			suite.Equal(50.0, *step.Price)
		}
	}
	suite.Equal(1, sales)

	code, resp := suite.call("POST", "/api/products/"+productID+"/sales", "seller-1", "SELLER",
		map[string]interface{}{"quantity": 61})
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("VALIDATION_ERROR", resp.Error.Code)

	code, resp = suite.call("GET", "/api/revenue/FARMER/farmer-1", "farmer-1", "FARMER", nil)
	suite.Require().Equal(http.StatusOK, code)
	var summary struct {
		Total float64 `json:"total"`
	}
	suite.decode(resp.Data, &summary)
	suite.Equal(2000.0, summary.Total)
}

func (suite *MarketplaceTestSuite) TestDuplicateSellerRequest() {
	productID := suite.createProduct(10)
	suite.requestSeller(productID, "seller-1")

	code, resp := suite.call("POST", "/api/seller-requests", "farmer-1", "FARMER", map[string]interface{}{
		"product_id":    productID,
		"seller_id":     "seller-1",
		"farmer_price":  100,
		"selling_price": 20,
	})
	suite.Equal(http.StatusConflict, code)
	suite.Equal("DUPLICATE_REQUEST", resp.Error.Code)
}

func (suite *MarketplaceTestSuite) TestConcurrentAcceptAssignsOneSeller() {
	productID := suite.createProduct(10)
	first := suite.requestSeller(productID, "seller-1")
	second := suite.requestSeller(productID, "seller-2")

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i, accept := range []struct{ id, seller string }{{first, "seller-1"}, {second, "seller-2"}} {
		wg.Add(1)
		go func(i int, id, seller string) {
			defer wg.Done()
			codes[i], _ = suite.call("PUT", "/api/seller-requests/"+id, seller, "SELLER",
				map[string]interface{}{"status": "ACCEPTED"})
		}(i, accept.id, accept.seller)
	}
	wg.Wait()

	suite.ElementsMatch([]int{http.StatusOK, http.StatusConflict}, codes)
	suite.Equal("ASSIGNED_TO_SELLER", suite.product(productID).Status)
}

func (suite *MarketplaceTestSuite) TestCancellationApprovedReleasesBatch() {
	productID := suite.createProduct(50)
	suite.assignSeller(productID)
	bookingID := suite.bookTransport(productID)

	code, _ := suite.call("PUT", "/api/bookings/"+bookingID+"/picked-up", "transporter-1", "TRANSPORTER", nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal("IN_TRANSIT", suite.product(productID).Status)

	code, _ = suite.call("PUT", "/api/bookings/"+bookingID+"/request-cancellation", "transporter-1", "TRANSPORTER",
		map[string]interface{}{"reason": "vehicle breakdown"})
	suite.Require().Equal(http.StatusOK, code)

	code, resp := suite.call("GET", "/api/notifications/user/farmer-1/unread-count", "farmer-1", "FARMER", nil)
	suite.Require().Equal(http.StatusOK, code)
	var before struct {
		Unread int64 `json:"unread"`
	}
	suite.decode(resp.Data, &before)

	code, resp = suite.call("PUT", "/api/bookings/"+bookingID+"/respond-cancellation", "farmer-1", "FARMER",
		map[string]interface{}{"action": "ACCEPT"})
	suite.Require().Equal(http.StatusOK, code)
	var booking struct {
		Status             string `json:"status"`
		CancellationStatus string `json:"cancellation_status"`
	}
	suite.decode(resp.Data, &booking)
	suite.Equal("CANCELLED", booking.Status)
	suite.Equal("APPROVED", booking.CancellationStatus)

	p := suite.product(productID)
	suite.Equal("ASSIGNED_TO_SELLER", p.Status)

	code, resp = suite.call("GET", "/api/notifications/user/farmer-1/unread-count", "farmer-1", "FARMER", nil)
	suite.Require().Equal(http.StatusOK, code)
	var after struct {
		Unread int64 `json:"unread"`
	}
	suite.decode(resp.Data, &after)
	suite.Equal(before.Unread-1, after.Unread)

	code, resp = suite.call("PUT", "/api/bookings/"+bookingID+"/transported", "transporter-1", "TRANSPORTER",
		map[string]interface{}{"kilometers": 40})
	suite.Equal(http.StatusConflict, code)
	suite.Equal("INVALID_TRANSITION", resp.Error.Code)

	var requestStatus struct {
		Status string
	}
	suite.Require().NoError(suite.db.Table("transporter_requests").Select("status").
		Where("product_id = ?", productID).Scan(&requestStatus).Error)
	suite.Equal("CANCELLED", requestStatus.Status)

	// the same transporter can be booked again for the released batch
	rebooked := suite.bookTransport(productID)
	suite.NotEqual(bookingID, rebooked)
	suite.Equal("BOOKED_TRANSPORT", suite.product(productID).Status)
}

func (suite *MarketplaceTestSuite) TestDeliveryAndTransporterRevenue() {
	productID := suite.createProduct(20)
	suite.assignSeller(productID)
	bookingID := suite.bookTransport(productID)

	code, resp := suite.call("POST", "/api/transporter-requests", "farmer-1", "FARMER", map[string]interface{}{
		"product_id":             productID,
		"transporter_id":         "transporter-1",
		"farmer_demanded_charge": 500,
		"transport_date":         time.Now().UTC().Format(time.RFC3339),
	})
	suite.Equal(http.StatusConflict, code)
	suite.NotNil(resp.Error)

	code, _ = suite.call("PUT", "/api/bookings/"+bookingID+"/transported", "transporter-1", "TRANSPORTER",
		map[string]interface{}{"kilometers": 40})
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal("AT_SELLER", suite.product(productID).Status)

	code, resp = suite.call("GET", "/api/revenue/TRANSPORTER/transporter-1", "transporter-1", "TRANSPORTER", nil)
	suite.Require().Equal(http.StatusOK, code)
	var summary struct {
		Total float64 `json:"total"`
	}
	suite.decode(resp.Data, &summary)
	suite.Equal(500.0, summary.Total)
}

func (suite *MarketplaceTestSuite) TestRoleChecks() {
	code, resp := suite.call("POST", "/api/products", "seller-1", "SELLER", map[string]interface{}{
		"name": "Onions", "quantity": 5, "unit": "kg", "production_location": "Erode",
	})
	suite.Equal(http.StatusForbidden, code)
	suite.Equal("FORBIDDEN", resp.Error.Code)

	code, _ = suite.call("GET", "/api/products", "", "", nil)
	suite.Equal(http.StatusUnauthorized, code)

	code, resp = suite.call("POST", "/api/roles/SELLER", "farmer-1", "FARMER", map[string]interface{}{
		"role_data": map[string]interface{}{"shopName": "Switch", "address": "Salem"},
	})
	suite.Equal(http.StatusForbidden, code)
	suite.Equal("FORBIDDEN", resp.Error.Code)

	var stored struct {
		Role string
	}
	suite.Require().NoError(suite.db.Table("users").Select("role").Where("id = ?", "farmer-1").Scan(&stored).Error)
	suite.Equal("FARMER", stored.Role)

	code, resp = suite.call("POST", "/api/roles/SELLER", "admin-1", "ADMIN", map[string]interface{}{
		"user_id":   "farmer-1",
		"role_data": map[string]interface{}{"shopName": "Switch", "address": "Salem"},
	})
	suite.Equal(http.StatusConflict, code)
	suite.Equal("CONFLICT", resp.Error.Code)
}

func (suite *MarketplaceTestSuite) TestDeleteBlockedWhileBooked() {
	productID := suite.createProduct(20)
	suite.assignSeller(productID)
	suite.bookTransport(productID)

	code, resp := suite.call("DELETE", "/api/products/"+productID, "farmer-1", "FARMER", nil)
	suite.Equal(http.StatusConflict, code)
	suite.Equal("CONFLICT", resp.Error.Code)
}

func (suite *MarketplaceTestSuite) TestAdminClearAllData() {
	productID := suite.createProduct(10)
	suite.requestSeller(productID, "seller-1")

	code, resp := suite.call("POST", "/api/admin/clear-all-data", "farmer-1", "FARMER", nil)
	suite.Equal(http.StatusForbidden, code)
	suite.Equal("FORBIDDEN", resp.Error.Code)

	suite.Require().NoError(suite.db.Exec(`INSERT INTO users (id, email, role, created_at, updated_at)
		VALUES ('admin-1', 'admin@example.com', 'ADMIN', now(), now())`).Error)

	code, resp = suite.call("POST", "/api/admin/clear-all-data", "admin-1", "ADMIN", nil)
	suite.Require().Equal(http.StatusOK, code)
	var cleared struct {
		Result struct {
			Total   int64            `json:"total_records_deleted"`
			ByTable map[string]int64 `json:"deleted_by_table"`
		} `json:"result"`
	}
	suite.decode(resp.Data, &cleared)
	suite.Equal(int64(1), cleared.Result.ByTable["products"])
	suite.Equal(int64(4), cleared.Result.ByTable["users"])

	var users, audits int64
	suite.db.Table("users").Count(&users)
	suite.db.Table("audit_logs").Where("action = ?", "clear_all_data").Count(&audits)
	suite.Equal(int64(1), users)
	suite.Equal(int64(1), audits)
}

func (suite *MarketplaceTestSuite) TestListProductsByTag() {
	code, _ := suite.call("POST", "/api/products", "farmer-1", "FARMER", map[string]interface{}{
		"name":                "Rice",
		"quantity":            50,
		"unit":                "kg",
		"production_location": "Thanjavur",
		"tags":                []string{" Organic", "ORGANIC", "ponni"},
	})
	suite.Require().Equal(http.StatusCreated, code)
	suite.createProduct(5)

	code, resp := suite.call("GET", "/api/products?tag=organic", "seller-1", "SELLER", nil)
	suite.Require().Equal(http.StatusOK, code)
	var products []struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	suite.decode(resp.Data, &products)
	suite.Require().Len(products, 1)
	suite.Equal("Rice", products[0].Name)
	suite.Equal([]string{"organic", "ponni"}, products[0].Tags)
}

func TestMarketplaceSuite(t *testing.T) {
	suite.Run(t, new(MarketplaceTestSuite))
}
