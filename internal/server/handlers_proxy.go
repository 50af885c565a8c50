package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"skincarechat/internal/ai"
)

// openAIProxy forwards a chat completions body upstream and answers with the
// upstream status and JSON. Errors use the {"error": ...} envelope browser
// clients of the proxy expect.
func (a *App) openAIProxy(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		a.proxyFailure(c, err)
		return
	}
	var payload ai.CompletionRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			a.proxyFailure(c, err)
			return
		}
	}
	if err := ai.ValidateMessages(payload.Messages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ai.ErrMessagesNotArray.Error()})
		return
	}

	resp, err := a.ai.Complete(c.Request.Context(), payload)
	if err != nil {
		a.proxyFailure(c, err)
		return
	}
	var body bytes.Buffer
	if err := json.Compact(&body, resp.Body); err != nil {
		a.proxyFailure(c, errors.New("upstream returned invalid JSON: "+ai.Preview(resp.Body, 200)))
		return
	}
	c.Data(resp.Status, "application/json", body.Bytes())
}

func (a *App) proxyFailure(c *gin.Context, err error) {
	a.log.Error().Err(err).Msg("proxy error")
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
