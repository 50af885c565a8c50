package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skincarechat/internal/chat"
	"skincarechat/internal/store"
)

type chatMessageRequest struct {
	Text string `json:"text"`
}

type preferencesRequest struct {
	Direction string `json:"direction"`
}

func (a *App) chatGreeting(c *gin.Context) {
	greeting, err := a.session(c).Greeting(c.Request.Context())
	if err != nil {
		a.writeInternal(c, err, "Failed to load selection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": greeting})
}

func (a *App) chatHistory(c *gin.Context) {
	messages, err := a.session(c).History(c.Request.Context())
	if err != nil {
		a.writeInternal(c, err, "Failed to load chat history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (a *App) sendChatMessage(c *gin.Context) {
	var payload chatMessageRequest
	if !mustJSON(c, &payload) {
		return
	}
	added, err := a.session(c).Send(c.Request.Context(), payload.Text)
	if isClientError(err, chat.ErrEmptyMessage) {
		writeError(c, http.StatusBadRequest, "Message text is required")
		return
	}
	if err != nil {
		a.writeInternal(c, err, "Failed to send chat message")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": added})
}

func (a *App) clearChatHistory(c *gin.Context) {
	if err := a.session(c).ClearHistory(c.Request.Context()); err != nil {
		a.writeInternal(c, err, "Failed to clear chat history")
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) generateRoutine(c *gin.Context) {
	added, err := a.session(c).GenerateRoutine(c.Request.Context())
	if err != nil {
		a.writeInternal(c, err, "Failed to generate routine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": added})
}

func (a *App) getPreferences(c *gin.Context) {
	direction, err := a.session(c).Direction(c.Request.Context())
	if err != nil {
		a.writeInternal(c, err, "Failed to load preferences")
		return
	}
	c.JSON(http.StatusOK, gin.H{"direction": direction})
}

func (a *App) updatePreferences(c *gin.Context) {
	var payload preferencesRequest
	if !mustJSON(c, &payload) {
		return
	}
	direction, err := a.session(c).SetDirection(c.Request.Context(), payload.Direction)
	if isClientError(err, store.ErrInvalidDirection) {
		writeError(c, http.StatusBadRequest, store.ErrInvalidDirection.Error())
		return
	}
	if err != nil {
		a.writeInternal(c, err, "Failed to save preferences")
		return
	}
	c.JSON(http.StatusOK, gin.H{"direction": direction})
}
