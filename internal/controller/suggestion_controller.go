package controller

import (
	"ai-writing-be/internal/dto"
	"ai-writing-be/internal/pkg/serverutils"
	"ai-writing-be/internal/service"
	internalWS "ai-writing-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type ISuggestionController interface {
	RegisterRoutes(r fiber.Router)
}

type suggestionController struct {
	suggestionService service.ISuggestionService
	hub               *internalWS.Hub
}

func NewSuggestionController(suggestionService service.ISuggestionService, hub *internalWS.Hub) ISuggestionController {
	return &suggestionController{
		suggestionService: suggestionService,
		hub:               hub,
	}
}

func (c *suggestionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/suggestion/v1")

	// WebSocket upgrade happens before the JWT middleware; the handshake
	// itself carries the token as a query param (browser limitation).
	h.Get("/ws/:sessionId", websocket.New(c.serveWs))

	h.Use(serverutils.JwtMiddleware)
	h.Post("/session", c.CreateSession)
	h.Post("/:sessionId/enqueue", c.Enqueue)
	h.Post("/:sessionId/inject", c.Inject)
	h.Post("/:sessionId/pin/:id", c.Pin)
	h.Delete("/:sessionId/suggestion/:id", c.Remove)
	h.Delete("/:sessionId/suggestions", c.ClearAll)
	h.Delete("/:sessionId/cached-sentences", c.ClearCachedSentences)
	h.Post("/:sessionId/topic-shift", c.TopicShift)
	h.Get("/:sessionId/suggestions", c.Suggestions)
	h.Get("/:sessionId/queue", c.QueueSnapshot)
}

func (c *suggestionController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.suggestionService.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *suggestionController) Enqueue(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.EnqueueRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.suggestionService.Enqueue(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success enqueue sentence", res))
}

func (c *suggestionController) Inject(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.InjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.suggestionService.Inject(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success inject suggestion", res))
}

func (c *suggestionController) Pin(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid suggestion id")
	}

	if err := c.suggestionService.Pin(ctx.Context(), sessionId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success pin suggestion", nil))
}

func (c *suggestionController) Remove(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid suggestion id")
	}

	if err := c.suggestionService.Remove(ctx.Context(), sessionId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success remove suggestion", nil))
}

func (c *suggestionController) ClearAll(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	if err := c.suggestionService.ClearAll(ctx.Context(), sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear suggestions", nil))
}

func (c *suggestionController) ClearCachedSentences(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	if err := c.suggestionService.ClearCachedSentences(ctx.Context(), sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear cached sentences", nil))
}

func (c *suggestionController) TopicShift(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.TopicShiftRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := c.suggestionService.TopicShift(ctx.Context(), sessionId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success topic shift", nil))
}

func (c *suggestionController) Suggestions(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.suggestionService.Suggestions(ctx.Context(), sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list suggestions", res))
}

func (c *suggestionController) QueueSnapshot(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.suggestionService.QueueSnapshot(ctx.Context(), sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success queue snapshot", res))
}

func (c *suggestionController) serveWs(conn *websocket.Conn) {
	sessionId, err := uuid.Parse(conn.Params("sessionId"))
	if err != nil {
		conn.Close()
		return
	}
	internalWS.ServeWs(c.hub, conn, sessionId, c.suggestionService)
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return uuid.Nil, serverutils.NewAppError(fiber.StatusBadRequest, "invalid session id")
	}
	return sessionId, nil
}
