package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/croptivize/catalog/internal/catalog/domain"
	"github.com/croptivize/catalog/internal/catalog/usecase/command"
	"github.com/croptivize/catalog/internal/catalog/usecase/query"
	"github.com/croptivize/catalog/kafka"
	"github.com/croptivize/catalog/pkg/logger"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_service_requests_total",
			Help: "Total number of requests to the catalog service",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_service_request_duration_seconds",
			Help:    "Duration of catalog service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	requestSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "catalog_service_request_duration_summary",
			Help: "Summary of request durations with client-side quantiles",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)
	catalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_service_total_products",
			Help: "Total number of products in the catalog",
		},
	)
)

// ProductHandler handles HTTP requests for the catalog using CQRS handlers
type ProductHandler struct {
	// Command handlers
	createHandler      *command.CreateProductHandler
	updateHandler      *command.UpdateProductHandler
	deleteHandler      *command.DeleteProductHandler
	recordOrderHandler *command.RecordOrderHandler

	// Query handlers
	getProductHandler *query.GetProductHandler
	listHandler       *query.ListProductsHandler
	analyticsHandler  *query.GetAnalyticsHandler
	listOrdersHandler *query.ListOrdersHandler

	repo      domain.ProductRepository
	publisher *kafka.Publisher
}

// NewProductHandler creates a product handler with manual DI.
func NewProductHandler(repo domain.ProductRepository, publisher *kafka.Publisher) *ProductHandler {
	return NewProductHandlerWithDI(
		command.NewCreateProductHandler(repo),
		command.NewUpdateProductHandler(repo),
		command.NewDeleteProductHandler(repo),
		command.NewRecordOrderHandler(repo),
		query.NewGetProductHandler(repo),
		query.NewListProductsHandler(repo),
		query.NewGetAnalyticsHandler(repo),
		query.NewListOrdersHandler(repo),
		repo,
		publisher,
	)
}

// NewProductHandlerWithDI creates a product handler from pre-built usecase
// handlers. Used by Wire.
func NewProductHandlerWithDI(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	recordOrderHandler *command.RecordOrderHandler,
	getProductHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	analyticsHandler *query.GetAnalyticsHandler,
	listOrdersHandler *query.ListOrdersHandler,
	repo domain.ProductRepository,
	publisher *kafka.Publisher,
) *ProductHandler {
	return &ProductHandler{
		createHandler:      createHandler,
		updateHandler:      updateHandler,
		deleteHandler:      deleteHandler,
		recordOrderHandler: recordOrderHandler,
		getProductHandler:  getProductHandler,
		listHandler:        listHandler,
		analyticsHandler:   analyticsHandler,
		listOrdersHandler:  listOrdersHandler,
		repo:               repo,
		publisher:          publisher,
	}
}

// Response is the JSON envelope shared by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *ProductHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes mounts every catalog route on the router.
func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	// Public routes
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods("GET")
	router.HandleFunc("/api/products/analytics", h.metricsMiddleware("/api/products/analytics", AdminMiddleware(h.GetAnalytics))).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods("GET")
	router.HandleFunc("/api/products/{id}/order", h.metricsMiddleware("/api/products/{id}/order", h.RecordOrder)).Methods("POST")

	// Admin routes
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", AdminMiddleware(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", AdminMiddleware(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", AdminMiddleware(h.DeleteProduct))).Methods("DELETE")
	router.HandleFunc("/api/orders", h.metricsMiddleware("/api/orders", AdminMiddleware(h.ListOrders))).Methods("GET")
}

// parseFilter decodes query parameters into a Filter. Malformed values are
// left at their zero value; Normalize turns them into defaults. This endpoint
// never rejects input.
func parseFilter(r *http.Request) domain.Filter {
	q := r.URL.Query()
	var f domain.Filter

	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Search = q.Get("search")
	f.Category = q.Get("category")
	f.Sort = q.Get("sort")

	if raw := q.Get("minPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			f.MinPrice = &v
		}
	}
	if raw := q.Get("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			f.MaxPrice = &v
		}
	}
	if raw := q.Get("minRating"); raw != "" {
		f.MinRating, _ = strconv.ParseFloat(raw, 64)
	}
	if raw := q.Get("featured"); raw != "" {
		f.Featured, _ = strconv.ParseBool(raw)
	}

	return f.Normalize()
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)

	envelope, err := h.listHandler.Handle(r.Context(), f)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list products")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list products",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    envelope,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.getProductHandler.Handle(r.Context(), id)
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Product not found",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    product,
	})
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	IsFeatured  bool    `json:"isFeatured"`
	Image       string  `json:"image"`
	Link        string  `json:"link"`
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	product, err := h.createHandler.Handle(r.Context(), command.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Rating:      req.Rating,
		IsFeatured:  req.IsFeatured,
		Image:       req.Image,
		Link:        req.Link,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create product")
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.updateCatalogSizeMetric(r.Context())
	h.publishEvent(r, kafka.EventTypeProductCreated, product.ID, product.Category)

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	product, err := h.updateHandler.Handle(r.Context(), command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Rating:      req.Rating,
		IsFeatured:  req.IsFeatured,
		Image:       req.Image,
		Link:        req.Link,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to update product")
		respondJSON(w, statusForError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.publishEvent(r, kafka.EventTypeProductUpdated, product.ID, product.Category)

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{ID: id}); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to delete product")
		respondJSON(w, statusForError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.updateCatalogSizeMetric(r.Context())
	h.publishEvent(r, kafka.EventTypeProductDeleted, id, "")

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// RecordOrder handles POST /api/products/{id}/order
func (h *ProductHandler) RecordOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.recordOrderHandler.Handle(r.Context(), command.RecordOrderCommand{ProductID: id})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to record order")
		respondJSON(w, statusForError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order recorded successfully",
		Data:    order,
	})
}

// ListOrders handles GET /api/orders
func (h *ProductHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.listOrdersHandler.Handle(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list orders",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    orders,
	})
}

// GetAnalytics handles GET /api/products/analytics
func (h *ProductHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analyticsHandler.Handle(r.Context())
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to get analytics")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to get analytics",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    analytics,
	})
}

// RegisterHealthCheck mounts the health endpoint backed by a DB ping.
func (h *ProductHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}
		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Catalog service is healthy",
		})
	}).Methods("GET")
}

func (h *ProductHandler) publishEvent(r *http.Request, eventType string, productID uint, category string) {
	err := h.publisher.PublishCatalogEvent(r.Context(), kafka.CatalogEvent{
		EventType: eventType,
		ProductID: productID,
		Category:  category,
	})
	if err != nil {
		// Mutations must not fail because the broker is down.
		logger.Warn(r.Context()).Err(err).Msg("Failed to publish catalog event")
	}
}

func (h *ProductHandler) updateCatalogSizeMetric(ctx context.Context) {
	if count, err := h.repo.Count(ctx); err == nil {
		catalogSize.Set(float64(count))
	}
}

// pathID extracts the {id} path variable, responding 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid product ID",
		})
		return 0, false
	}
	return uint(id), true
}

// statusForError maps usecase errors to HTTP status codes.
func statusForError(err error) int {
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
