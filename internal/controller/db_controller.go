package controller

import (
	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/dto"
	"ai-webchat-be/internal/pkg/serverutils"
	"ai-webchat-be/pkg/database"
	"ai-webchat-be/pkg/database/gateway"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type IDbController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Status(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
	Init(ctx *fiber.Ctx) error
	Drop(ctx *fiber.Ctx) error
}

type dbController struct {
	gateway *gateway.Gateway
	db      *gorm.DB
}

func NewDbController(gw *gateway.Gateway, db *gorm.DB) IDbController {
	return &dbController{
		gateway: gw,
		db:      db,
	}
}

func (c *dbController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/db/v1")
	h.Use(authMiddleware)
	h.Get("status", c.Status)
	h.Post("query", c.Query)
	h.Post("init", c.Init)
	h.Post("drop", c.Drop)
}

func (c *dbController) Status(ctx *fiber.Ctx) error {
	if err := c.gateway.Ping(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Database reachable", nil))
}

func (c *dbController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.gateway.Execute(ctx.Context(), req.Query, req.Params)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success execute query", res))
}

func (c *dbController) Init(ctx *fiber.Ctx) error {
	if err := database.InitSchema(c.db); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Schema initialized", nil))
}

// Drop tears the schema down. It exists for test environments only and is
// as destructive as it sounds.
func (c *dbController) Drop(ctx *fiber.Ctx) error {
	if err := database.DropSchema(c.db); err != nil {
		return apperror.Wrap(apperror.ErrQueryFailure, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Schema dropped", nil))
}
