package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	waterreadingdomain "github.com/smallbiznis/tenora/internal/waterreading/domain"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type createWaterReadingRequest struct {
	UnitID         string          `json:"unit_id"`
	ReadingDate    string          `json:"reading_date"`
	CurrentReading decimal.Decimal `json:"current_reading"`
	Notes          string          `json:"notes"`
}

func (s *Server) CreateWaterReading(c *gin.Context) {
	var req createWaterReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	readingDate, err := parseDateField("reading_date", req.ReadingDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.waterReadingSvc.Create(c.Request.Context(), waterreadingdomain.CreateWaterReadingRequest{
		UnitID:         strings.TrimSpace(req.UnitID),
		ReadingDate:    readingDate,
		CurrentReading: req.CurrentReading,
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWaterReadings(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UnitID string `form:"unit_id"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.waterReadingSvc.List(c.Request.Context(), waterreadingdomain.ListWaterReadingRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		UnitID:    strings.TrimSpace(query.UnitID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWaterReadingByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.waterReadingSvc.GetByID(c.Request.Context(), waterreadingdomain.GetWaterReadingRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateWaterReadingRequest struct {
	CurrentReading  *decimal.Decimal `json:"current_reading"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	RatePerUnit     *decimal.Decimal `json:"rate_per_unit"`
	Status          *string          `json:"status"`
	Notes           *string          `json:"notes"`
}

func (s *Server) UpdateWaterReading(c *gin.Context) {
	var req updateWaterReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.waterReadingSvc.Update(c.Request.Context(), waterreadingdomain.UpdateWaterReadingRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		CurrentReading:  req.CurrentReading,
		PreviousReading: req.PreviousReading,
		RatePerUnit:     req.RatePerUnit,
		Status:          req.Status,
		Notes:           req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteWaterReading(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.waterReadingSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}
