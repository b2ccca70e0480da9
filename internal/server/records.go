package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contractdomain "github.com/smallbiznis/civitas/internal/contract/domain"
	saledomain "github.com/smallbiznis/civitas/internal/sale/domain"
)

type recordListQuery struct {
	CompanyID string `form:"company_id"`
	Status    string `form:"status"`
	Limit     int    `form:"limit"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) ListSales(c *gin.Context) {
	var query recordListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	companyID, err := parseOptionalID("company_id", query.CompanyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListRequest{
		GuildID:   guildParam(c),
		CompanyID: companyID,
		Status:    strings.TrimSpace(query.Status),
		Limit:     query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.saleSvc.Approve(c.Request.Context(), actorFromContext(c), guildParam(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req rejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.saleSvc.Reject(c.Request.Context(), actorFromContext(c), guildParam(c), id, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListContracts(c *gin.Context) {
	var query recordListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	companyID, err := parseOptionalID("company_id", query.CompanyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.contractSvc.List(c.Request.Context(), contractdomain.ListRequest{
		GuildID:   guildParam(c),
		CompanyID: companyID,
		Status:    strings.TrimSpace(query.Status),
		Limit:     query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveContract(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.contractSvc.Approve(c.Request.Context(), actorFromContext(c), guildParam(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectContract(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req rejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.contractSvc.Reject(c.Request.Context(), actorFromContext(c), guildParam(c), id, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
