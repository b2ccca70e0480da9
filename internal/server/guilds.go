package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	guilddomain "github.com/smallbiznis/civitas/internal/guild/domain"
	"github.com/smallbiznis/civitas/pkg/money"
)

type reminderRequest struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
	Every   int    `json:"every"`
}

type setupGuildRequest struct {
	CountryName           string           `json:"country_name"`
	ChefRoleID            string           `json:"chef_role_id"`
	OfficerRoleID         string           `json:"officer_role_id"`
	TaxesChannelID        string           `json:"taxes_channel_id"`
	ServerTaxRate         *decimal.Decimal `json:"server_tax_rate"`
	CountryTaxRate        *decimal.Decimal `json:"country_tax_rate"`
	DefaultCompanyTaxRate *decimal.Decimal `json:"default_company_tax_rate"`
	Reminder              *reminderRequest `json:"reminder"`
}

func (s *Server) SetupGuild(c *gin.Context) {
	var req setupGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	setup := guilddomain.SetupRequest{
		GuildID:               guildParam(c),
		CountryName:           strings.TrimSpace(req.CountryName),
		ChefRoleID:            strings.TrimSpace(req.ChefRoleID),
		OfficerRoleID:         strings.TrimSpace(req.OfficerRoleID),
		TaxesChannelID:        strings.TrimSpace(req.TaxesChannelID),
		ServerTaxRate:         req.ServerTaxRate,
		CountryTaxRate:        req.CountryTaxRate,
		DefaultCompanyTaxRate: req.DefaultCompanyTaxRate,
	}
	if req.Reminder != nil {
		setup.Reminder = &guilddomain.ReminderSettings{
			Enabled: req.Reminder.Enabled,
			Mode:    strings.TrimSpace(req.Reminder.Mode),
			Every:   req.Reminder.Every,
		}
	}

	resp, err := s.guildSvc.Setup(c.Request.Context(), actorFromContext(c), setup)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetGuild(c *gin.Context) {
	resp, err := s.guildSvc.Get(c.Request.Context(), guildParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// countryTaxRateRequest takes either a fraction ("rate": 0.05) or a
// percentage ("percent": 5), never both.
type countryTaxRateRequest struct {
	Rate    *decimal.Decimal `json:"rate"`
	Percent *decimal.Decimal `json:"percent"`
}

func (s *Server) SetCountryTaxRate(c *gin.Context) {
	var req countryTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var rate decimal.Decimal
	switch {
	case req.Rate != nil && req.Percent != nil:
		AbortWithError(c, newValidationError("rate", "ambiguous_rate", "send either rate or percent"))
		return
	case req.Rate != nil:
		rate = *req.Rate
	case req.Percent != nil:
		rate = money.FromPercent(*req.Percent)
	default:
		AbortWithError(c, newValidationError("rate", "required", "rate is required"))
		return
	}

	resp, err := s.guildSvc.SetCountryTaxRate(c.Request.Context(), actorFromContext(c), guildParam(c), rate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
