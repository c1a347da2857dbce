package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
	"gorm.io/datatypes"
)

type createHouseTypeRequest struct {
	PropertyID        string           `json:"property_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	BaseRentAmount    decimal.Decimal  `json:"base_rent_amount"`
	RentDepositAmount decimal.Decimal  `json:"rent_deposit_amount"`
	WaterRatePerUnit  *decimal.Decimal `json:"water_rate_per_unit"`
	WaterRateType     string           `json:"water_rate_type"`
	WaterFlatRate     decimal.Decimal  `json:"water_flat_rate"`
	ChargeAmounts     map[string]any   `json:"charge_amounts"`
}

func (s *Server) CreateHouseType(c *gin.Context) {
	var req createHouseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.houseTypeSvc.Create(c.Request.Context(), housetypedomain.CreateHouseTypeRequest{
		PropertyID:        strings.TrimSpace(req.PropertyID),
		Name:              strings.TrimSpace(req.Name),
		Description:       strings.TrimSpace(req.Description),
		BaseRentAmount:    req.BaseRentAmount,
		RentDepositAmount: req.RentDepositAmount,
		WaterRatePerUnit:  req.WaterRatePerUnit,
		WaterRateType:     strings.TrimSpace(req.WaterRateType),
		WaterFlatRate:     req.WaterFlatRate,
		ChargeAmounts:     datatypes.JSONMap(req.ChargeAmounts),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListHouseTypes(c *gin.Context) {
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

	resp, err := s.houseTypeSvc.List(c.Request.Context(), housetypedomain.ListHouseTypeRequest{
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

func (s *Server) GetHouseTypeByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.houseTypeSvc.GetByID(c.Request.Context(), housetypedomain.GetHouseTypeRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateHouseTypeRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	BaseRentAmount    *decimal.Decimal `json:"base_rent_amount"`
	RentDepositAmount *decimal.Decimal `json:"rent_deposit_amount"`
	WaterRatePerUnit  *decimal.Decimal `json:"water_rate_per_unit"`
	WaterRateType     *string          `json:"water_rate_type"`
	WaterFlatRate     *decimal.Decimal `json:"water_flat_rate"`
	ChargeAmounts     map[string]any   `json:"charge_amounts"`
	IsActive          *bool            `json:"is_active"`
}

func (s *Server) UpdateHouseType(c *gin.Context) {
	var req updateHouseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.houseTypeSvc.Update(c.Request.Context(), housetypedomain.UpdateHouseTypeRequest{
		ID:                strings.TrimSpace(c.Param("id")),
		Name:              req.Name,
		Description:       req.Description,
		BaseRentAmount:    req.BaseRentAmount,
		RentDepositAmount: req.RentDepositAmount,
		WaterRatePerUnit:  req.WaterRatePerUnit,
		WaterRateType:     req.WaterRateType,
		WaterFlatRate:     req.WaterFlatRate,
		ChargeAmounts:     datatypes.JSONMap(req.ChargeAmounts),
		IsActive:          req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteHouseType(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.houseTypeSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}
