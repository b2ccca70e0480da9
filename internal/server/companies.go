package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
)

type createCompanyRequest struct {
	Name           string           `json:"name"`
	Emoji          string           `json:"emoji"`
	Type           string           `json:"type"`
	OwnerID        string           `json:"owner_id"`
	CEORoleID      string           `json:"ceo_role_id"`
	ManagerRoleID  string           `json:"manager_role_id"`
	EmployeeRoleID string           `json:"employee_role_id"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Create(c.Request.Context(), actorFromContext(c), companydomain.CreateRequest{
		GuildID:        guildParam(c),
		Name:           strings.TrimSpace(req.Name),
		Emoji:          strings.TrimSpace(req.Emoji),
		Type:           strings.TrimSpace(req.Type),
		OwnerID:        strings.TrimSpace(req.OwnerID),
		CEORoleID:      strings.TrimSpace(req.CEORoleID),
		ManagerRoleID:  strings.TrimSpace(req.ManagerRoleID),
		EmployeeRoleID: strings.TrimSpace(req.EmployeeRoleID),
		TaxRate:        req.TaxRate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCompanies(c *gin.Context) {
	resp, err := s.companySvc.ListByGuild(c.Request.Context(), guildParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
