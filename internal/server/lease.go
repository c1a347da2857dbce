package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type createLeaseRequest struct {
	UnitID           string           `json:"unit_id"`
	TenantID         string           `json:"tenant_id"`
	StartDate        string           `json:"start_date"`
	EndDate          string           `json:"end_date"`
	RentAmount       *decimal.Decimal `json:"rent_amount"`
	DepositAmount    *decimal.Decimal `json:"deposit_amount"`
	WaterRatePerUnit *decimal.Decimal `json:"water_rate_per_unit"`
}

func (s *Server) CreateLease(c *gin.Context) {
	var req createLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseDateField("start_date", req.StartDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	endDate, err := parseDateField("end_date", req.EndDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.leaseSvc.Create(c.Request.Context(), leasedomain.CreateLeaseRequest{
		UnitID:           strings.TrimSpace(req.UnitID),
		TenantID:         strings.TrimSpace(req.TenantID),
		StartDate:        startDate,
		EndDate:          endDate,
		RentAmount:       req.RentAmount,
		DepositAmount:    req.DepositAmount,
		WaterRatePerUnit: req.WaterRatePerUnit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLeases(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UnitID   string `form:"unit_id"`
		TenantID string `form:"tenant_id"`
		Status   string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leaseSvc.List(c.Request.Context(), leasedomain.ListLeaseRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		UnitID:    strings.TrimSpace(query.UnitID),
		TenantID:  strings.TrimSpace(query.TenantID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLeaseByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.leaseSvc.GetByID(c.Request.Context(), leasedomain.GetLeaseRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateLeaseRequest struct {
	StartDate        *string          `json:"start_date"`
	EndDate          *string          `json:"end_date"`
	RentAmount       *decimal.Decimal `json:"rent_amount"`
	DepositAmount    *decimal.Decimal `json:"deposit_amount"`
	WaterRatePerUnit *decimal.Decimal `json:"water_rate_per_unit"`
	Status           *string          `json:"status"`
}

func (s *Server) UpdateLease(c *gin.Context) {
	var req updateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var update leasedomain.UpdateLeaseRequest
	update.ID = strings.TrimSpace(c.Param("id"))
	update.RentAmount = req.RentAmount
	update.DepositAmount = req.DepositAmount
	update.WaterRatePerUnit = req.WaterRatePerUnit
	update.Status = req.Status

	if req.StartDate != nil {
		startDate, err := parseDateField("start_date", *req.StartDate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDateField("end_date", *req.EndDate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.EndDate = &endDate
	}

	resp, err := s.leaseSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteLease(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.leaseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

func (s *Server) GetLeaseBalance(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.leaseSvc.Balance(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
