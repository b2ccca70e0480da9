package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/civitas/internal/company/domain"
	contractdomain "github.com/smallbiznis/civitas/internal/contract/domain"
	"github.com/smallbiznis/civitas/internal/observability/logger"
	saledomain "github.com/smallbiznis/civitas/internal/sale/domain"
	"go.uber.org/zap"
)

type clientRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// submissionRequest is the revenue declaration form. Agricole companies
// fill crop and note, construction companies fill the contract fields.
type submissionRequest struct {
	CompanyID     string          `json:"company_id"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	Crop          string          `json:"crop"`
	Note          string          `json:"note"`
	EmployeeCount int             `json:"employee_count"`
	Client        *clientRequest  `json:"client"`
	Description   string          `json:"description"`
}

func (s *Server) Submit(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	companyID, err := parseOptionalID("company_id", req.CompanyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if companyID == 0 {
		AbortWithError(c, newValidationError("company_id", "required", "company_id is required"))
		return
	}

	ctx := c.Request.Context()
	guildID := guildParam(c)
	actor := actorFromContext(c)

	if !s.allowSubmission(c, guildID, actor.ID) {
		return
	}

	company, err := s.companySvc.Get(ctx, guildID, companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	switch company.Type {
	case companydomain.TypeAgricole:
		sale, err := s.saleSvc.Submit(ctx, actor, saledomain.SubmitRequest{
			GuildID:     guildID,
			CompanyID:   company.ID,
			GrossAmount: req.GrossAmount,
			Crop:        strings.TrimSpace(req.Crop),
			Note:        strings.TrimSpace(req.Note),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"kind": "sale", "data": sale})
	case companydomain.TypeBuild:
		if req.Client == nil {
			AbortWithError(c, newValidationError("client", "required", "client is required"))
			return
		}
		client, err := contractdomain.ParseClient(req.Client.Kind, req.Client.Name)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		contract, err := s.contractSvc.Submit(ctx, actor, contractdomain.SubmitRequest{
			GuildID:       guildID,
			CompanyID:     company.ID,
			GrossAmount:   req.GrossAmount,
			EmployeeCount: req.EmployeeCount,
			Client:        client,
			Description:   strings.TrimSpace(req.Description),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"kind": "contract", "data": contract})
	default:
		AbortWithError(c, companydomain.ErrInvalidType)
	}
}

// allowSubmission applies the per-member submission window. It writes the error
// response itself and reports whether the handler may continue.
func (s *Server) allowSubmission(c *gin.Context, guildID, actorID string) bool {
	if !s.guard.Enabled() {
		return true
	}

	ctx := c.Request.Context()
	result, err := s.guard.AllowSubmission(ctx, guildID, actorID)
	if err != nil {
		logger.FromContext(ctx).Warn("submission rate limit check failed", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return false
	}
	if !result.Allowed {
		retryAfter := int(result.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		logger.FromContext(ctx).Warn("submission rate limit exceeded", zap.Int("retry_after_s", retryAfter))
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		AbortWithError(c, ErrRateLimited)
		return false
	}
	return true
}

func (s *Server) ListCrops(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": saledomain.Crops()})
}
