package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/feedbacklens/internal/config"
)

// UIConfig serves the runtime settings the embedded pages read on load.
func UIConfig(cfg *config.UIConfig) gin.HandlerFunc {
	payload, _ := json.Marshal(map[string]string{"apiBaseUrl": cfg.APIBaseURL})
	script := []byte(fmt.Sprintf("window.FEEDBACKLENS_CONFIG = %s;\n", payload))

	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "application/javascript; charset=utf-8", script)
	}
}
