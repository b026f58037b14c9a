// file: main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"sekolahku_backend/internals/configs"
	database "sekolahku_backend/internals/databases"
	"sekolahku_backend/internals/middlewares"
	mlogger "sekolahku_backend/internals/middlewares/logger"
	routes "sekolahku_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	database.ConnectDB()
	database.TunePool()
	if configs.GetEnv("RUN_AUTOMIGRATE", "false") == "true" {
		database.MustAutoMigrate(database.DB)
	}
	database.WarmUpQueries()

	app := fiber.New(fiber.Config{
		AppName:     "sekolahku_backend",
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	app.Use(requestid.New())
	app.Use(middlewares.RecoveryMiddleware())
	app.Use(mlogger.LoggerMiddleware())
	app.Use(middlewares.CorsMiddleware())

	routes.SetupRoutes(app, database.DB)

	// graceful shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("⏳ Shutdown signal diterima...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Shutdown error: %v", err)
		}
	}()

	port := configs.GetEnv("PORT", "8080")
	log.Printf("🚀 sekolahku_backend listen di :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("❌ Server berhenti: %v", err)
	}
}
