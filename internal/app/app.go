package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesnexus-backend/internal/db"
	"notesnexus-backend/internal/handlers"
	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/services"
	"notesnexus-backend/internal/store"
	"notesnexus-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func Run() {
	// Load Env
	if err := utils.LoadEnv(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Init DB
	connString := utils.GetEnv("DATABASE_URL", "")
	if connString == "" {
		// Fallback to individual vars
		connString = "postgres://" + utils.GetEnv("POSTGRES_USER", "postgres") + ":" +
			utils.GetEnv("POSTGRES_PASSWORD", "postgres") + "@" +
			utils.GetEnv("POSTGRES_HOST", "localhost") + ":" +
			utils.GetEnv("POSTGRES_PORT", "5432") + "/" +
			utils.GetEnv("POSTGRES_DB", "notesnexus") + "?sslmode=disable"
	}

	if err := db.InitDB(connString); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to bootstrap schema: %v", err)
	}

	// Presence store
	presenceStore, err := store.NewRedisPresenceStore(store.RedisConfig{
		Addr:     utils.GetEnv("REDIS_ADDR", "localhost:6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       utils.GetEnvInt("REDIS_DB", 0),
		PoolSize: utils.GetEnvInt("REDIS_POOL_SIZE", 10),
	})
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer presenceStore.Close()

	// Services
	pg := store.NewPostgresStore(db.Pool)
	userService := services.NewUserService(pg)
	roomService := services.NewRoomService(pg, rand.NewSource(time.Now().UnixNano()))
	messageService := services.NewMessageService(pg)
	presenceService := services.NewPresenceService(presenceStore, pg)
	catalogService := services.NewCatalogService(services.DefaultNotes(), services.DefaultVideos())

	hub := handlers.NewHub(presenceService, userService, messageService)

	// Fiber App
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// Routes
	api := app.Group("/api")

	// Public Routes
	api.Post("/register", func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		user, err := userService.Register(c.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrUserExists) {
				return c.Status(400).JSON(fiber.Map{"error": "email already registered"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(user)
	})

	api.Post("/login", func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		res, err := userService.Login(c.Context(), req)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	// Learning library (public, read-only)
	api.Get("/notes", func(c *fiber.Ctx) error {
		filter := services.CatalogFilter{
			Query:    c.Query("q"),
			Category: c.Query("category"),
			Sort:     c.Query("sort"),
		}
		return c.JSON(fiber.Map{
			"notes":      catalogService.Notes(filter),
			"categories": catalogService.NoteCategories(),
		})
	})

	api.Get("/videos", func(c *fiber.Ctx) error {
		filter := services.CatalogFilter{
			Query:    c.Query("q"),
			Category: c.Query("category"),
			Sort:     c.Query("sort"),
		}
		return c.JSON(fiber.Map{
			"videos":     catalogService.Videos(filter),
			"categories": catalogService.VideoCategories(),
		})
	})

	// Protected Routes
	protected := api.Group("/")
	protected.Use(handlers.AuthMiddleware)

	// Chat Routes
	protected.Post("/rooms", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req models.CreateRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}

		res, err := roomService.CreateRoom(c.Context(), req.Name, userID, req.ParticipantLimit)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(res)
	})

	protected.Post("/rooms/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req models.JoinRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.Token == "" {
			return c.Status(400).JSON(fiber.Map{"error": "token required"})
		}

		res, err := roomService.JoinRoom(c.Context(), req.Token, userID)
		if err != nil {
			return roomError(c, err)
		}
		return c.JSON(res)
	})

	protected.Get("/rooms", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		rooms, err := roomService.ListRooms(c.Context(), userID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch rooms"})
		}
		return c.JSON(rooms)
	})

	protected.Get("/rooms/:id/messages", func(c *fiber.Ctx) error {
		roomID := c.Params("id")
		if _, err := roomService.GetRoom(c.Context(), roomID); err != nil {
			return roomError(c, err)
		}
		msgs, err := messageService.History(c.Context(), roomID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch messages"})
		}
		return c.JSON(msgs)
	})

	protected.Delete("/rooms/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		roomID := c.Params("id")

		if err := roomService.TerminateRoom(c.Context(), roomID, userID); err != nil {
			return roomError(c, err)
		}

		// Final empty snapshot to live subscribers, then detach them.
		messageService.NotifyRoomTerminated(roomID)
		hub.CloseRoom(roomID)
		return c.JSON(fiber.Map{"success": true})
	})

	// Profile endpoints
	protected.Get("/profile", handlers.GetProfileHandler(userService))
	protected.Put("/profile", handlers.UpdateProfileHandler(userService))

	// Admin endpoints
	admin := protected.Group("/admin")
	admin.Use(handlers.AdminMiddleware(userService))

	admin.Get("/users", func(c *fiber.Ctx) error {
		statuses, err := presenceService.ListUserStatus(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch users"})
		}
		return c.JSON(statuses)
	})

	admin.Post("/users/:id/force-logout", func(c *fiber.Ctx) error {
		if err := userService.RequestForceLogout(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route
	// Note: Middleware order matters. AuthMiddleware checks token.
	// WSUpgradeMiddleware checks if it's a WS request.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", handlers.AuthMiddleware)
	app.Get("/ws", handlers.WebSocketHandler(hub, roomService, messageService, userService))

	// Start Server
	port := utils.GetEnv("PORT", "3001")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // Block until signal
	log.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}

// roomError maps room-directory errors onto HTTP statuses.
func roomError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "room not found"})
	case errors.Is(err, services.ErrRoomFull):
		return c.Status(409).JSON(fiber.Map{"error": "room has reached its participant limit"})
	case errors.Is(err, services.ErrNotAuthorized):
		return c.Status(403).JSON(fiber.Map{"error": "only the creator can terminate this room"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}
