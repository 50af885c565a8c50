package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skincarechat/internal/catalog"
	"skincarechat/internal/msgfmt"
)

type formatRequest struct {
	Sender string `json:"sender"`
	Text   any    `json:"text"`
}

type productView struct {
	catalog.Product
	Selected bool `json:"selected"`
}

func (a *App) createSession(c *gin.Context) {
	clientID := uuid.NewString()
	token, expiresAt, err := a.issueClientToken(clientID)
	if err != nil {
		a.writeInternal(c, err, "Failed to issue client token")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"client_id":  clientID,
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

func (a *App) formatMessage(c *gin.Context) {
	var payload formatRequest
	if !mustJSON(c, &payload) {
		return
	}
	sender, ok := parseSender(payload.Sender)
	if !ok {
		writeError(c, http.StatusBadRequest, "sender must be user or bot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": a.formatter.FormatValue(sender, payload.Text)})
}

func parseSender(raw string) (msgfmt.Sender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(msgfmt.User):
		return msgfmt.User, true
	case string(msgfmt.Bot):
		return msgfmt.Bot, true
	}
	return "", false
}

func (a *App) listProducts(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	query := strings.TrimSpace(c.Query("q"))

	selected, err := a.session(c).Selected(c.Request.Context())
	if err != nil {
		a.writeInternal(c, err, "Failed to load selection")
		return
	}
	selectedIDs := make(map[int]struct{}, len(selected))
	for _, p := range selected {
		selectedIDs[p.ID] = struct{}{}
	}

	if category == "" && query == "" {
		c.JSON(http.StatusOK, gin.H{
			"products": []productView{},
			"message":  catalog.PromptChooseCategory,
		})
		return
	}

	matches := a.chat.Catalog().Filter(category, query)
	items := make([]productView, 0, len(matches))
	for _, p := range matches {
		_, isSelected := selectedIDs[p.ID]
		items = append(items, productView{Product: p, Selected: isSelected})
	}
	message := ""
	if len(items) == 0 {
		message = catalog.EmptyListing
	}
	c.JSON(http.StatusOK, gin.H{"products": items, "message": message})
}

func (a *App) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": a.chat.Catalog().Categories()})
}

func (a *App) listSelections(c *gin.Context) {
	products, err := a.session(c).Selected(c.Request.Context())
	if err != nil {
		a.writeInternal(c, err, "Failed to load selection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (a *App) toggleSelection(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	selected, products, err := a.session(c).ToggleProduct(c.Request.Context(), productID)
	if isClientError(err, catalog.ErrUnknownProduct) {
		writeError(c, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		a.writeInternal(c, err, "Failed to update selection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": selected, "products": products})
}

func (a *App) removeSelection(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	products, err := a.session(c).RemoveProduct(c.Request.Context(), productID)
	if isClientError(err, catalog.ErrUnknownProduct) {
		writeError(c, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		a.writeInternal(c, err, "Failed to update selection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func productIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("product_id")))
	if err != nil {
		writeError(c, http.StatusBadRequest, "Invalid product id")
		return 0, false
	}
	return id, true
}
