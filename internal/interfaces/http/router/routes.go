package router

import (
	"github.com/gin-gonic/gin"

	"github.com/invoicer/backend/internal/interfaces/http/handler"
)

// InvoiceRoutes maps the invoice editing API onto /invoice
func InvoiceRoutes(h *handler.InvoiceHandler, mw ...gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("invoice", "/invoice").
		Use(mw...).
		GET("", h.GetInvoice).
		DELETE("", h.ResetInvoice).
		PATCH("/fields", h.SetFields).
		POST("/items", h.AddItem).
		DELETE("/items/:id", h.RemoveItem).
		POST("/logo", h.UploadLogo).
		POST("/save", h.SaveInvoice).
		GET("/preview", h.GetPreview).
		GET("/export/:format", h.ExportInvoice)
}

// SystemRoutes maps the unauthenticated system endpoints onto /system
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/ping", h.Ping).
		GET("/info", h.GetSystemInfo)
}
