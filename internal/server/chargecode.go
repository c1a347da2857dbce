package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chargecodedomain "github.com/smallbiznis/tenora/internal/chargecode/domain"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type createChargeCodeRequest struct {
	PropertyID  string `json:"property_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) CreateChargeCode(c *gin.Context) {
	var req createChargeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.chargeCodeSvc.Create(c.Request.Context(), chargecodedomain.CreateChargeCodeRequest{
		PropertyID:  strings.TrimSpace(req.PropertyID),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListChargeCodes(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PropertyID string `form:"property_id"`
		ActiveOnly string `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activeOnly, err := parseOptionalBool(c, "active_only")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.chargeCodeSvc.List(c.Request.Context(), chargecodedomain.ListChargeCodeRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		PropertyID: strings.TrimSpace(query.PropertyID),
		ActiveOnly: activeOnly != nil && *activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetChargeCodeByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.chargeCodeSvc.GetByID(c.Request.Context(), chargecodedomain.GetChargeCodeRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateChargeCodeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (s *Server) UpdateChargeCode(c *gin.Context) {
	var req updateChargeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.chargeCodeSvc.Update(c.Request.Context(), chargecodedomain.UpdateChargeCodeRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteChargeCode(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.chargeCodeSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}
