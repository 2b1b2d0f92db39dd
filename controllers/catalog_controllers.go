package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

type CatalogController struct {
	Catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{Catalog: catalog}
}

// ListItems -> every item, unfiltered
func (cc *CatalogController) ListItems(c *gin.Context) {
	items, err := cc.Catalog.ListItems(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of items", items)
}

func (cc *CatalogController) GetItem(c *gin.Context) {
	item, err := cc.Catalog.GetItemBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item detail", item)
}

// CreateItem is staff only.
func (cc *CatalogController) CreateItem(c *gin.Context) {
	var req struct {
		Name        string          `json:"name" binding:"required,max=100"`
		Slug        string          `json:"slug" binding:"required,max=100"`
		Price       decimal.Decimal `json:"price"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.Item{
		Name:        req.Name,
		Slug:        req.Slug,
		Price:       req.Price,
		Description: req.Description,
	}
	if _, err := cc.Catalog.GetItemBySlug(c.Request.Context(), req.Slug); err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("slug is already taken"))
		return
	}
	if err := cc.Catalog.CreateItem(c.Request.Context(), &item); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Infof("Item created: %s (%s)", item.Slug, item.Price.StringFixed(2))
	utils.RespondJSON(c, http.StatusCreated, "Item created", item)
}

// UpdateItem is staff only. The slug is the item's identity and cannot change.
func (cc *CatalogController) UpdateItem(c *gin.Context) {
	var req struct {
		Name        *string          `json:"name" binding:"omitempty,max=100"`
		Price       *decimal.Decimal `json:"price"`
		Description *string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := cc.Catalog.UpdateItem(c.Request.Context(), c.Param("slug"), services.ItemPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item updated", item)
}
