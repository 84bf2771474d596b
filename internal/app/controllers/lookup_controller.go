package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
)

// LookupController serves the name-only tables: departments, classes and
// academic years. Each handler is bound to one table at route setup.
type LookupController struct {
	lookupService services.LookupService
}

// NewLookupController creates a new LookupController
func NewLookupController(lookupService services.LookupService) *LookupController {
	return &LookupController{lookupService: lookupService}
}

func (c *LookupController) List(table models.LookupTable) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		items, err := c.lookupService.List(ctx, table)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ok(ctx, items)
	}
}

func (c *LookupController) Get(table models.LookupTable) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, valid := middleware.ParseIDParam(ctx, "id")
		if !valid {
			return
		}

		item, err := c.lookupService.Get(ctx, table, id)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ok(ctx, item)
	}
}

func (c *LookupController) Create(table models.LookupTable) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req dto.NameRequest
		if !middleware.BindJSON(ctx, &req) {
			return
		}

		id, err := c.lookupService.Create(ctx, table, req.Name)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		created(ctx, id)
	}
}

func (c *LookupController) Rename(table models.LookupTable) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, valid := middleware.ParseIDParam(ctx, "id")
		if !valid {
			return
		}
		var req dto.NameRequest
		if !middleware.BindJSON(ctx, &req) {
			return
		}

		if err := c.lookupService.Rename(ctx, table, id, req.Name); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		message(ctx, fmt.Sprintf("%s updated successfully", table.Label()))
	}
}

func (c *LookupController) Delete(table models.LookupTable) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, valid := middleware.ParseIDParam(ctx, "id")
		if !valid {
			return
		}

		if err := c.lookupService.Delete(ctx, table, id); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		message(ctx, fmt.Sprintf("%s deleted successfully", table.Label()))
	}
}
