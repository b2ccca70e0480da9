package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/civitas/internal/taxes/domain"
	"github.com/smallbiznis/civitas/internal/taxes/receipt"
)

type settleRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) GetOutstanding(c *gin.Context) {
	resp, err := s.taxSvc.Outstanding(c.Request.Context(), actorFromContext(c), guildParam(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Settle(c *gin.Context) {
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxSvc.Settle(c.Request.Context(), taxdomain.SettleRequest{
		GuildID:    guildParam(c),
		Actor:      actorFromContext(c),
		AmountPaid: req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListRemittances(c *gin.Context) {
	var query struct {
		CompanyID string `form:"company_id"`
		Limit     int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	companyID, err := parseOptionalID("company_id", query.CompanyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.taxSvc.ListRemittances(c.Request.Context(), taxdomain.ListRequest{
		GuildID:   guildParam(c),
		CompanyID: companyID,
		Limit:     query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadReceipt(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	guildID := guildParam(c)
	remittance, err := s.taxSvc.GetRemittance(ctx, guildID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	guild, err := s.guildSvc.Get(ctx, guildID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	company, err := s.companySvc.Get(ctx, guildID, remittance.CompanyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pdf, err := receipt.Render(receipt.Data{
		CountryName: guild.CountryName,
		CompanyName: company.Name,
		Remittance:  *remittance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", remittance.Reference+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
