// internal/handlers/item.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openkb/product-kb/internal/services"
	"github.com/openkb/product-kb/internal/utils"
)

type ItemHandler struct {
	itemService *services.ItemService
}

func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// GET /api/search
func (h *ItemHandler) Search(c *gin.Context) {
	query := c.Query("q")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	total, items, err := h.itemService.Search(query, limit, offset)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"items": items,
	})
}

// POST /api/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req services.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	if err := h.itemService.Create(&req); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// GET /api/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.itemService.Get(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// PUT /api/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	var req services.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	if err := h.itemService.Update(c.Param("id"), &req); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DELETE /api/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.itemService.Delete(c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
