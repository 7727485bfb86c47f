package main

import (
	"log"
	"os"
	"time"

	"go-erp-agent/internal/ai"
	"go-erp-agent/internal/handlers"
	"go-erp-agent/internal/middleware"
	"go-erp-agent/internal/state"
	"go-erp-agent/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	db, err := store.Connect()
	if err != nil {
		log.Fatal("❌ Database unavailable: ", err)
	}

	mgr, err := state.NewManager(store.New(db))
	if err != nil {
		log.Fatal("❌ Failed to load application state: ", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	h := handlers.New(mgr, db, ai.NewService(apiKey), ai.NewAgent(mgr, apiKey))

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)

	// --- FEATURE FLAG: Admin Registration ---
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", h.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// PUBLIC TO STAFF & ADMIN
		api.GET("/products", h.GetProducts)
		api.GET("/products/low-stock", h.GetLowStock)
		api.POST("/checkout", h.ProcessSale)
		api.GET("/sales", h.GetSales)
		api.GET("/system/status", h.GetSystemStatus)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.POST("/products/:id/adjust-stock", h.AdjustStock)
			admin.POST("/products/import", h.ImportProducts)

			admin.GET("/transactions", h.GetTransactions)
			admin.POST("/transactions", h.RecordTransaction)
			admin.GET("/bank-accounts", h.GetBankAccounts)
			admin.POST("/bank-accounts", h.AddBankAccount)

			admin.GET("/staff", h.GetStaff)
			admin.POST("/staff", h.AddStaff)
			admin.PUT("/staff/:id/status", h.UpdateStaffStatus)
			admin.POST("/staff/:id/process-salary", h.ProcessSalary)

			admin.GET("/reports/summary", h.GetSalesReport)
			admin.GET("/reports/financials", h.GetPeriodFinancials)
			admin.GET("/reports/valuation", h.GetStockValuation)

			admin.GET("/settings", h.GetSettings)
			admin.PUT("/settings", h.UpdateSettings)
			admin.GET("/backup", h.ExportBackup)

			admin.POST("/ask", h.AskAI)
			admin.GET("/insights", h.GetInsights)
			admin.GET("/insights/forecast", h.GetForecast)
			admin.GET("/insights/customers", h.GetCustomerIntelligence)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server starting on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
