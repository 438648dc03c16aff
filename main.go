package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/Gymnott1/mpesa-simple-node-server/database"
	"github.com/Gymnott1/mpesa-simple-node-server/middlewares"
	"github.com/Gymnott1/mpesa-simple-node-server/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	if err := database.Open(os.Getenv("DATA_DIR")); err != nil {
		log.Fatal("❌ Failed to open ledgers: ", err)
	}

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")

	if host == "" {
		host = "0.0.0.0"
	}
	if port == "" {
		port = "3000"
	}

	app := fiber.New()
	app.Use(middlewares.RequestLogger())
	routes.Setup(app)

	addr := fmt.Sprintf("%s:%s", host, port)
	log.Println("M-Pesa webhook server running at", addr)
	log.Printf("Webhook URL: http://your-server.com:%s/mpesa-webhook", port)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panicf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Gracefully shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	database.Close()
	log.Println("Server exited cleanly")
}
