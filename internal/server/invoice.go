package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	"github.com/smallbiznis/tenora/pkg/db/pagination"
)

type createInvoiceRequest struct {
	LeaseID       string          `json:"lease_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueDate, err := parseDateField("issue_date", req.IssueDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	dueDate, err := parseDateField("due_date", req.DueDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		LeaseID:       strings.TrimSpace(req.LeaseID),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		Description:   strings.TrimSpace(req.Description),
		Amount:        req.Amount,
		IssueDate:     issueDate,
		DueDate:       dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		LeaseID string `form:"lease_id"`
		Status  string `form:"status"`
		Overdue string `form:"overdue"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	overdue, err := parseOptionalBool(c, "overdue")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		LeaseID:   strings.TrimSpace(query.LeaseID),
		Status:    strings.TrimSpace(query.Status),
		Overdue:   overdue != nil && *overdue,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateInvoiceRequest struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	IssueDate   *string          `json:"issue_date"`
	DueDate     *string          `json:"due_date"`
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var update invoicedomain.UpdateInvoiceRequest
	update.ID = strings.TrimSpace(c.Param("id"))
	update.Description = req.Description
	update.Amount = req.Amount

	if req.IssueDate != nil {
		issueDate, err := parseDateField("issue_date", *req.IssueDate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.IssueDate = &issueDate
	}
	if req.DueDate != nil {
		dueDate, err := parseDateField("due_date", *req.DueDate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		update.DueDate = &dueDate
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

func (s *Server) ListInvoiceItems(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.invoiceSvc.ListItems(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addInvoiceItemRequest struct {
	ChargeCode  string           `json:"charge_code"`
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
}

func (s *Server) AddInvoiceItem(c *gin.Context) {
	var req addInvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quantity := decimal.NewFromInt(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	resp, err := s.invoiceSvc.AddItem(c.Request.Context(), invoicedomain.AddItemRequest{
		InvoiceID:   strings.TrimSpace(c.Param("id")),
		ChargeCode:  strings.TrimSpace(req.ChargeCode),
		Description: strings.TrimSpace(req.Description),
		Quantity:    quantity,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateInvoiceItemRequest struct {
	ChargeCode  *string          `json:"charge_code"`
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

func (s *Server) UpdateInvoiceItem(c *gin.Context) {
	var req updateInvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateItem(c.Request.Context(), invoicedomain.UpdateItemRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		ChargeCode:  req.ChargeCode,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoiceItem(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.invoiceSvc.DeleteItem(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

type generateInvoicesRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (s *Server) GenerateMonthlyInvoices(c *gin.Context) {
	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.GenerateMonthly(c.Request.Context(), invoicedomain.GenerateRequest{
		Month: req.Month,
		Year:  req.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
