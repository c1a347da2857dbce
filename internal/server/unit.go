package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"gorm.io/datatypes"
)

type createUnitRequest struct {
	PropertyID        string           `json:"property_id"`
	HouseTypeID       string           `json:"house_type_id"`
	UnitNumber        string           `json:"unit_number"`
	RentAmount        *decimal.Decimal `json:"rent_amount"`
	RentDepositAmount *decimal.Decimal `json:"rent_deposit_amount"`
	WaterRateAmount   *decimal.Decimal `json:"water_rate_amount"`
	ChargeAmounts     map[string]any   `json:"charge_amounts"`
}

func (s *Server) CreateUnit(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Create(c.Request.Context(), unitdomain.CreateUnitRequest{
		PropertyID:        strings.TrimSpace(req.PropertyID),
		HouseTypeID:       strings.TrimSpace(req.HouseTypeID),
		UnitNumber:        strings.TrimSpace(req.UnitNumber),
		RentAmount:        req.RentAmount,
		RentDepositAmount: req.RentDepositAmount,
		WaterRateAmount:   req.WaterRateAmount,
		ChargeAmounts:     datatypes.JSONMap(req.ChargeAmounts),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUnits(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PropertyID  string `form:"property_id"`
		HouseTypeID string `form:"house_type_id"`
		Status      string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.List(c.Request.Context(), unitdomain.ListUnitRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		PropertyID:  strings.TrimSpace(query.PropertyID),
		HouseTypeID: strings.TrimSpace(query.HouseTypeID),
		Status:      strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUnitByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.unitSvc.GetByID(c.Request.Context(), unitdomain.GetUnitRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateUnitRequest struct {
	UnitNumber        *string          `json:"unit_number"`
	RentAmount        *decimal.Decimal `json:"rent_amount"`
	RentDepositAmount *decimal.Decimal `json:"rent_deposit_amount"`
	WaterRateAmount   *decimal.Decimal `json:"water_rate_amount"`
	ChargeAmounts     map[string]any   `json:"charge_amounts"`
	Status            *string          `json:"status"`
}

func (s *Server) UpdateUnit(c *gin.Context) {
	var req updateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Update(c.Request.Context(), unitdomain.UpdateUnitRequest{
		ID:                strings.TrimSpace(c.Param("id")),
		UnitNumber:        req.UnitNumber,
		RentAmount:        req.RentAmount,
		RentDepositAmount: req.RentDepositAmount,
		WaterRateAmount:   req.WaterRateAmount,
		ChargeAmounts:     datatypes.JSONMap(req.ChargeAmounts),
		Status:            req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteUnit(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.unitSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

type bulkDeleteUnitsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) BulkDeleteUnits(c *gin.Context) {
	var req bulkDeleteUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
