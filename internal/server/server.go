package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/tenora/internal/chargecode"
	chargecodedomain "github.com/smallbiznis/tenora/internal/chargecode/domain"
	"github.com/smallbiznis/tenora/internal/config"
	"github.com/smallbiznis/tenora/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/tenora/internal/dashboard/domain"
	"github.com/smallbiznis/tenora/internal/housetype"
	housetypedomain "github.com/smallbiznis/tenora/internal/housetype/domain"
	"github.com/smallbiznis/tenora/internal/invoice"
	invoicedomain "github.com/smallbiznis/tenora/internal/invoice/domain"
	"github.com/smallbiznis/tenora/internal/lease"
	leasedomain "github.com/smallbiznis/tenora/internal/lease/domain"
	"github.com/smallbiznis/tenora/internal/observability"
	"github.com/smallbiznis/tenora/internal/payment"
	paymentdomain "github.com/smallbiznis/tenora/internal/payment/domain"
	"github.com/smallbiznis/tenora/internal/property"
	propertydomain "github.com/smallbiznis/tenora/internal/property/domain"
	"github.com/smallbiznis/tenora/internal/tenant"
	tenantdomain "github.com/smallbiznis/tenora/internal/tenant/domain"
	"github.com/smallbiznis/tenora/internal/unit"
	unitdomain "github.com/smallbiznis/tenora/internal/unit/domain"
	"github.com/smallbiznis/tenora/internal/waterreading"
	waterreadingdomain "github.com/smallbiznis/tenora/internal/waterreading/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	property.Module,
	housetype.Module,
	chargecode.Module,
	tenant.Module,
	unit.Module,
	lease.Module,
	waterreading.Module,
	invoice.Module,
	payment.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log))
	r.Use(observability.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *observability.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	propertySvc     propertydomain.Service
	houseTypeSvc    housetypedomain.Service
	chargeCodeSvc   chargecodedomain.Service
	tenantSvc       tenantdomain.Service
	unitSvc         unitdomain.Service
	leaseSvc        leasedomain.Service
	waterReadingSvc waterreadingdomain.Service
	invoiceSvc      invoicedomain.Service
	paymentSvc      paymentdomain.Service
	dashboardSvc    dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	PropertySvc     propertydomain.Service
	HouseTypeSvc    housetypedomain.Service
	ChargeCodeSvc   chargecodedomain.Service
	TenantSvc       tenantdomain.Service
	UnitSvc         unitdomain.Service
	LeaseSvc        leasedomain.Service
	WaterReadingSvc waterreadingdomain.Service
	InvoiceSvc      invoicedomain.Service
	PaymentSvc      paymentdomain.Service
	DashboardSvc    dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		propertySvc:     p.PropertySvc,
		houseTypeSvc:    p.HouseTypeSvc,
		chargeCodeSvc:   p.ChargeCodeSvc,
		tenantSvc:       p.TenantSvc,
		unitSvc:         p.UnitSvc,
		leaseSvc:        p.LeaseSvc,
		waterReadingSvc: p.WaterReadingSvc,
		invoiceSvc:      p.InvoiceSvc,
		paymentSvc:      p.PaymentSvc,
		dashboardSvc:    p.DashboardSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Properties --------
	api.GET("/properties", s.ListProperties)
	api.POST("/properties", s.CreateProperty)
	api.GET("/properties/:id", s.GetPropertyByID)
	api.PATCH("/properties/:id", s.UpdateProperty)
	api.DELETE("/properties/:id", s.DeleteProperty)
	api.POST("/properties/:id/disable", s.DisableProperty)
	api.POST("/properties/:id/enable", s.EnableProperty)

	// -------- House Types --------
	api.GET("/house-types", s.ListHouseTypes)
	api.POST("/house-types", s.CreateHouseType)
	api.GET("/house-types/:id", s.GetHouseTypeByID)
	api.PATCH("/house-types/:id", s.UpdateHouseType)
	api.DELETE("/house-types/:id", s.DeleteHouseType)

	// -------- Charge Codes --------
	api.GET("/charge-codes", s.ListChargeCodes)
	api.POST("/charge-codes", s.CreateChargeCode)
	api.GET("/charge-codes/:id", s.GetChargeCodeByID)
	api.PATCH("/charge-codes/:id", s.UpdateChargeCode)
	api.DELETE("/charge-codes/:id", s.DeleteChargeCode)

	// -------- Tenants --------
	api.GET("/tenants", s.ListTenants)
	api.POST("/tenants", s.CreateTenant)
	api.GET("/tenants/:id", s.GetTenantByID)
	api.PATCH("/tenants/:id", s.UpdateTenant)
	api.DELETE("/tenants/:id", s.DeleteTenant)

	// -------- Units --------
	api.GET("/units", s.ListUnits)
	api.POST("/units", s.CreateUnit)
	api.POST("/units/bulk-delete", s.BulkDeleteUnits)
	api.GET("/units/:id", s.GetUnitByID)
	api.PATCH("/units/:id", s.UpdateUnit)
	api.DELETE("/units/:id", s.DeleteUnit)

	// -------- Leases --------
	api.GET("/leases", s.ListLeases)
	api.POST("/leases", s.CreateLease)
	api.GET("/leases/:id", s.GetLeaseByID)
	api.PATCH("/leases/:id", s.UpdateLease)
	api.DELETE("/leases/:id", s.DeleteLease)
	api.GET("/leases/:id/balance", s.GetLeaseBalance)

	// -------- Water Readings --------
	api.GET("/water-readings", s.ListWaterReadings)
	api.POST("/water-readings", s.CreateWaterReading)
	api.GET("/water-readings/:id", s.GetWaterReadingByID)
	api.PATCH("/water-readings/:id", s.UpdateWaterReading)
	api.DELETE("/water-readings/:id", s.DeleteWaterReading)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.POST("/invoices/generate", s.GenerateMonthlyInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PATCH("/invoices/:id", s.UpdateInvoice)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.GET("/invoices/:id/items", s.ListInvoiceItems)
	api.POST("/invoices/:id/items", s.AddInvoiceItem)

	// -------- Invoice Items --------
	api.PATCH("/invoice-items/:id", s.UpdateInvoiceItem)
	api.DELETE("/invoice-items/:id", s.DeleteInvoiceItem)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.CreatePayment)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.DELETE("/payments/:id", s.DeletePayment)

	// -------- Dashboard --------
	api.GET("/dashboard/stats", s.GetDashboardStats)
}
