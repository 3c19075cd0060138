package main

import (
	"log"
	"os"

	"prism-backend/database"
	"prism-backend/gemini"
	"prism-backend/handlers"
	"prism-backend/middleware"
	"prism-backend/quota"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env tidak ditemukan, pakai environment sistem")
	}

	database.ConnectDatabase()

	// PILIH SATU strategi ledger di sini. Default: counter harian.
	// Dua model jangan pernah jalan barengan.
	if os.Getenv("QUOTA_STRATEGY") == "energy" {
		handlers.Ledger = quota.NewEnergyLedger(database.DB)
	} else {
		handlers.Ledger = quota.NewDailyLedger(database.DB)
	}
	handlers.AI = gemini.NewClient()

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	// Public Routes
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.POST("/webhooks/billing", handlers.BillingWebhook)   // billing oracle
	r.POST("/webhooks/identity", handlers.IdentityWebhook) // identity provider

	// Protected Routes (Butuh Token)
	api := r.Group("/api")
	api.Use(middleware.JwtAuthMiddleware())
	{
		// Tutoring
		api.POST("/chat", handlers.SubmitTurn)
		api.GET("/chat/history", handlers.GetHistory)
		api.POST("/doubt", handlers.ResolveDoubt)
		api.POST("/notes", handlers.ExtractNotes)

		// Notebooks
		api.GET("/notebooks", handlers.ListNotebooks)
		api.POST("/notebooks", handlers.CreateNotebook)
		api.GET("/notebooks/:id", handlers.GetNotebook)
		api.PATCH("/notebooks/:id", handlers.UpdateNotebook)
		api.DELETE("/notebooks/:id", handlers.DeleteNotebook)

		// Kuota & akun
		api.GET("/usage", handlers.GetUsage)
		api.POST("/referral", handlers.ApplyReferral)
		api.GET("/subscription", handlers.GetSubscription)
		api.POST("/subscription/register", handlers.RegisterSubscription)

		// Super Admin
		admin := api.Group("/admin")
		{
			admin.GET("/users", handlers.GetAllUsers)
			admin.PATCH("/users/:id/pro", handlers.SetUserProStatus)
			admin.GET("/usage/export", handlers.ExportUsageExcel)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
