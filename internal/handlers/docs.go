package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Liquor Analytics API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	measurementProps := map[string]interface{}{
		"id":                  map[string]string{"type": "integer"},
		"lot_number":          map[string]string{"type": "string"},
		"product_name":        map[string]string{"type": "string"},
		"analysis_type":       map[string]interface{}{"type": "string", "enum": []string{"initial", "aging", "other-product"}},
		"alcohol_content":     map[string]interface{}{"type": "number", "nullable": true},
		"acidity":             map[string]interface{}{"type": "number", "nullable": true},
		"sugar_content":       map[string]interface{}{"type": "number", "nullable": true},
		"tannin_level":        map[string]interface{}{"type": "number", "nullable": true},
		"ester_concentration": map[string]interface{}{"type": "number", "nullable": true},
		"aldehyde_level":      map[string]interface{}{"type": "number", "nullable": true},
		"aroma_score":         map[string]interface{}{"type": "number", "nullable": true},
		"taste_score":         map[string]interface{}{"type": "number", "nullable": true},
		"finish_score":        map[string]interface{}{"type": "number", "nullable": true},
		"overall_score":       map[string]interface{}{"type": "number", "nullable": true},
		"created_at":          map[string]string{"type": "string", "format": "date-time"},
	}

	modelProps := map[string]interface{}{
		"id":            map[string]string{"type": "string", "format": "uuid"},
		"target":        map[string]string{"type": "string"},
		"algorithm":     map[string]interface{}{"type": "string", "enum": []string{"random-forest", "gradient-boosting", "linear", "ridge", "lasso"}},
		"training_rows": map[string]string{"type": "integer"},
		"metrics": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"r2":   map[string]string{"type": "number"},
				"mae":  map[string]string{"type": "number"},
				"rmse": map[string]string{"type": "number"},
			},
		},
		"importance": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]string{"type": "number"},
		},
		"created_at": map[string]string{"type": "string", "format": "date-time"},
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Liquor Analytics API",
			"description": "Batch chemistry analytics platform with sensory score prediction, model registry, and flavor reporting",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Liquor Analytics Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/lots": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List batch records",
					"description": "Retrieve lot analysis records with filtering and pagination",
					"parameters": []map[string]interface{}{
						{
							"name":        "lot_number",
							"in":          "query",
							"description": "Filter by lot number",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "analysis_type",
							"in":          "query",
							"description": "Filter by analysis type (initial, aging, other-product)",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "page",
							"in":          "query",
							"description": "Page number (default: 1)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Records per page (default: 100)",
							"required":    false,
							"schema":      map[string]interface{}{"type": "integer", "default": 100},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"data": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type":       "object",
													"properties": measurementProps,
												},
											},
											"total":       map[string]string{"type": "integer"},
											"page":        map[string]string{"type": "integer"},
											"limit":       map[string]string{"type": "integer"},
											"total_pages": map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
					},
				},
				"post": map[string]interface{}{
					"summary":     "Create batch record",
					"description": "Record a new lot analysis with chemical measurements and optional sensory scores",
					"responses": map[string]interface{}{
						"201": map[string]interface{}{"description": "Record created"},
						"400": map[string]interface{}{"description": "Validation failure"},
					},
				},
			},
			"/api/models/train": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Train prediction models",
					"description": "Train a model for one sensory target, or all targets when target is omitted or \"all\"",
					"responses": map[string]interface{}{
						"201": map[string]interface{}{
							"description": "Model trained and registered",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type":       "object",
										"properties": modelProps,
									},
								},
							},
						},
						"422": map[string]interface{}{"description": "Not enough labeled records or non-finite training data"},
					},
				},
			},
			"/api/models": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List registered models",
					"description": "All model artifacts currently in the registry",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
					},
				},
			},
			"/api/predictions": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Predict a sensory score",
					"description": "Apply a registered model to a lot's measurements or an explicit feature map",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Prediction result"},
						"404": map[string]interface{}{"description": "No model registered for the target"},
						"422": map[string]interface{}{"description": "Required features missing from input"},
					},
				},
			},
			"/api/analytics/correlations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Correlation matrix",
					"description": "Pearson correlations between chemical measurements and sensory scores",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response"},
					},
				},
			},
			"/api/reports/flavor": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Generate flavor report",
					"description": "LLM-written flavor profile for a lot based on its chemistry and scores",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Report generated"},
						"503": map[string]interface{}{"description": "Report generation not configured"},
					},
				},
			},
			"/api/reports/comparison": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Generate comparison report",
					"description": "LLM-written comparative analysis of several lots centered on a focus lot",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Report generated"},
						"503": map[string]interface{}{"description": "Report generation not configured"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
