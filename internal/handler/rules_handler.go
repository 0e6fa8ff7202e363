package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"regnify/internal/domain"
	"regnify/internal/validator"
	"regnify/internal/validator/invoice"
)

// RulesHandler exposes the active jurisdiction format rules.
type RulesHandler struct {
	registry *validator.Registry
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(registry *validator.Registry) *RulesHandler {
	return &RulesHandler{registry: registry}
}

type jurisdictionRules struct {
	Jurisdiction domain.Jurisdiction `json:"jurisdiction"`
	Rules        []invoice.RuleSpec  `json:"rules"`
}

// List handles GET /api/v1/rules and GET /api/v1/rules?jurisdiction=XX
// @Summary List format rules
// @Description Invoice number rules per jurisdiction, optionally for one jurisdiction.
// @Tags rules
// @Produce json
// @Param jurisdiction query string false "Jurisdiction"
// @Success 200 {object} Response{data=[]jurisdictionRules}
// @Failure 400 {object} ErrorResponseBody "Invalid jurisdiction"
// @Security BearerAuth
// @Router /rules [get]
func (h *RulesHandler) List(c *gin.Context) {
	if raw := c.Query("jurisdiction"); raw != "" {
		j := domain.Jurisdiction(strings.ToUpper(raw))
		if !j.IsValid() {
			RespondError(c, http.StatusBadRequest, "INVALID_JURISDICTION", "invalid jurisdiction")
			return
		}
		RespondOK(c, []jurisdictionRules{{Jurisdiction: j, Rules: h.registry.Specs(j)}})
		return
	}

	jurisdictions := h.registry.Jurisdictions()
	out := make([]jurisdictionRules, 0, len(jurisdictions))
	for _, j := range jurisdictions {
		out = append(out, jurisdictionRules{Jurisdiction: j, Rules: h.registry.Specs(j)})
	}
	RespondOK(c, out)
}
