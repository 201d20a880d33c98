package main

// @title Catalog Service API
// @version 1.0
// @description Product catalog microservice with filtered, paginated queries and full observability stack (Prometheus, Jaeger)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/croptivize/catalog
// @contact.email support@croptivize.dev

// @license.name MIT
// @license.url https://github.com/croptivize/catalog/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Products
// @tag.description Catalog query and management endpoints

// @tag.name Orders
// @tag.description Order recording endpoints

// @tag.name Analytics
// @tag.description Admin dashboard aggregates

// @tag.name Health
// @tag.description Health check endpoints
