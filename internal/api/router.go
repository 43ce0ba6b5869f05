package api

import (
	"edubot/docs"
	"edubot/internal/api/handlers"
	"edubot/pkg/config"
	"edubot/pkg/middleware"
	"edubot/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	serverCfg *config.ServerConfig,
	chatHandler *handlers.ChatHandler,
	conversationHandler *handlers.ConversationHandler,
	healthHandler *handlers.HealthHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(logger.New())
	app.Use(middleware.RequestContext(appLogger))

	// Importing docs registers the API description with swag.
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.Send(web.Index)
	})
	app.Get("/health", healthHandler.Health)
	app.Post("/chat", chatHandler.Chat)

	api := app.Group("/api/v1")
	conversations := api.Group("/conversations")
	conversations.Get("", conversationHandler.ListConversations)
	conversations.Post("/:id/feedback", conversationHandler.SetFeedback)

	return app
}
