// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/vendor-login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Authenticate a vendor and return a JWT token",
                "parameters": [
                    {"description": "email or store name, and password", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.VendorLogin"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LoginResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Vendor inactive", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Locked out", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/vendor-register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a vendor and return a JWT token",
                "parameters": [
                    {"description": "email, store name and password", "name": "vendor", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.VendorRegistration"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.RegisterResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Email or store name taken", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProductResponse"}}}
                }
            }
        },
        "/products/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Filter and paginate products",
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "integer", "name": "vendorId", "in": "query"},
                    {"type": "integer", "name": "categoryId", "in": "query"},
                    {"type": "number", "name": "minPrice", "in": "query"},
                    {"type": "number", "name": "maxPrice", "in": "query"},
                    {"type": "integer", "name": "minQty", "in": "query"},
                    {"type": "integer", "name": "maxQty", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProductsSearchResult"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get product by ID",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProductResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/products/{id}/stock": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inventory"],
                "summary": "Restock or write off units of a product",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"description": "Quantity change", "name": "adjustment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StockAdjustmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.StockAdjustmentResponse"}},
                    "400": {"description": "Invalid change or insufficient stock", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Not the product owner", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List categories with their icon keys",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/vendor/products": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a new product",
                "parameters": [{"description": "Product to add", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProductRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.ProductResponse"}},
                    "409": {"description": "Duplicated name", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/vendor/products/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update a product's catalog fields",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"description": "Updated product", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ProductRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProductResponse"}}}
            }
        },
        "/vendor/products/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Import products via CSV",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "mode", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ImportProductsResult"}}}
            }
        },
        "/vendor/products/{id}/movements": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["movements"],
                "summary": "Get the stock movement ledger of a product",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "since", "in": "query"},
                    {"type": "string", "name": "until", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MovementsSearchResult"}}}
            }
        },
        "/vendor/products/{id}/movements/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/json"],
                "tags": ["movements"],
                "summary": "Export the stock movement ledger of a product",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
            }
        },
        "/vendor/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["metrics"],
                "summary": "Dashboard counts for the calling vendor",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/cart": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Get the cart of the current session",
                "parameters": [{"type": "string", "name": "X-Cart-Session", "in": "header"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CartResponse"}}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Release every line of the cart",
                "responses": {
                    "204": {"description": "Cart cleared"},
                    "207": {"description": "Some lines could not be released", "schema": {"$ref": "#/definitions/handlers.ClearCartErrors"}}
                }
            }
        },
        "/cart/items": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Reserve units of a product in the cart",
                "parameters": [
                    {"type": "string", "name": "X-Cart-Session", "in": "header"},
                    {"description": "Product and quantity", "name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CartItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CartResponse"}},
                    "409": {"description": "Insufficient stock", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/cart/items/{productId}": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Change the quantity of a cart line",
                "parameters": [
                    {"type": "integer", "name": "productId", "in": "path", "required": true},
                    {"description": "Signed quantity change", "name": "change", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CartDeltaRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CartResponse"}}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Remove a line from the cart and return its units to stock",
                "parameters": [{"type": "integer", "name": "productId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CartResponse"}}}
            }
        },
        "/cart/checkout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Turn the cart into an order",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.OrderResponse"}},
                    "400": {"description": "Cart is empty", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handlers.VendorLogin": {"type": "object", "properties": {"identifier": {"type": "string"}, "password": {"type": "string"}}},
        "handlers.VendorRegistration": {"type": "object", "properties": {"email": {"type": "string"}, "storeName": {"type": "string"}, "password": {"type": "string"}}},
        "handlers.LoginResult": {"type": "object", "properties": {"token": {"type": "string"}}},
        "handlers.RegisterResult": {"type": "object", "properties": {"message": {"type": "string"}, "token": {"type": "string"}}},
        "handlers.ProductRequest": {"type": "object", "properties": {"name": {"type": "string"}, "category": {"type": "string"}, "price": {"type": "string"}, "quantity": {"type": "integer"}, "threshold": {"type": "integer"}}},
        "handlers.ProductResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "vendorId": {"type": "integer"}, "categoryId": {"type": "integer"}, "category": {"type": "string"}, "name": {"type": "string"}, "price": {"type": "string"}, "priceCents": {"type": "integer"}, "stockQuantity": {"type": "integer"}, "lowStockThreshold": {"type": "integer"}, "lowStock": {"type": "boolean"}}},
        "handlers.Meta": {"type": "object", "properties": {"total_count": {"type": "integer"}}},
        "handlers.ProductsSearchResult": {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProductResponse"}}, "meta": {"$ref": "#/definitions/handlers.Meta"}}},
        "handlers.StockAdjustmentRequest": {"type": "object", "properties": {"quantityChange": {"type": "integer"}}},
        "handlers.StockAdjustmentResponse": {"type": "object", "properties": {"productId": {"type": "integer"}, "previousStock": {"type": "integer"}, "newStock": {"type": "integer"}}},
        "handlers.MovementResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "productId": {"type": "integer"}, "delta": {"type": "integer"}, "reason": {"type": "string"}, "sessionId": {"type": "string"}, "createdAt": {"type": "string"}}},
        "handlers.MovementsSearchResult": {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/handlers.MovementResponse"}}, "meta": {"$ref": "#/definitions/handlers.Meta"}}},
        "handlers.CartItemRequest": {"type": "object", "properties": {"productId": {"type": "integer"}, "quantity": {"type": "integer"}}},
        "handlers.CartDeltaRequest": {"type": "object", "properties": {"delta": {"type": "integer"}}},
        "handlers.CartItemResponse": {"type": "object", "properties": {"productId": {"type": "integer"}, "name": {"type": "string"}, "quantity": {"type": "integer"}, "unitPrice": {"type": "string"}, "subtotal": {"type": "string"}, "observedStock": {"type": "integer"}, "expiresAt": {"type": "string"}}},
        "handlers.CartResponse": {"type": "object", "properties": {"sessionId": {"type": "string"}, "items": {"type": "array", "items": {"$ref": "#/definitions/handlers.CartItemResponse"}}, "totalUnits": {"type": "integer"}, "total": {"type": "string"}}},
        "handlers.ClearCartErrors": {"type": "object", "properties": {"errors": {"type": "array", "items": {"type": "string"}}}},
        "handlers.OrderLineResponse": {"type": "object", "properties": {"productId": {"type": "integer"}, "quantity": {"type": "integer"}, "unitPrice": {"type": "string"}}},
        "handlers.OrderResponse": {"type": "object", "properties": {"id": {"type": "string"}, "lines": {"type": "array", "items": {"$ref": "#/definitions/handlers.OrderLineResponse"}}, "total": {"type": "string"}, "createdAt": {"type": "string"}}},
        "handlers.ProductValidationError": {"type": "object", "properties": {"field": {"type": "string"}, "description": {"type": "string"}}},
        "handlers.ImportProductsResult": {"type": "object", "properties": {"imported": {"type": "integer"}, "errors": {"type": "array", "items": {"$ref": "#/definitions/handlers.ProductValidationError"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "GoMart API",
	Description:      "Catalog, server-side cart with stock reservations, and vendor stock management.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
