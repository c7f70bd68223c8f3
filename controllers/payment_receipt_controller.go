package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Govind-619/CampusDine/models"
	"github.com/Govind-619/CampusDine/services"
	"github.com/Govind-619/CampusDine/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// PaymentReceiptController renders PDF receipts for captured payments.
type PaymentReceiptController struct {
	txns          services.TransactionRepo
	paymentOrders services.PaymentOrderRepo
	users         services.UserRepo
}

// NewPaymentReceiptController creates a PaymentReceiptController.
func NewPaymentReceiptController(txns services.TransactionRepo, paymentOrders services.PaymentOrderRepo, users services.UserRepo) *PaymentReceiptController {
	return &PaymentReceiptController{txns: txns, paymentOrders: paymentOrders, users: users}
}

// Download handles GET /payments/:gatewayPaymentId/receipt
func (ctl *PaymentReceiptController) Download(c *gin.Context) {
	utils.LogInfo("Starting receipt download process")

	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("Unauthorized receipt download attempt - no user found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	gatewayPaymentID := c.Param("gatewayPaymentId")
	utils.LogInfo("Processing receipt download - Payment ID: %s, user ID: %d", gatewayPaymentID, user.ID)

	ctx := c.Request.Context()
	txn, err := ctl.txns.ByGatewayPaymentID(ctx, gatewayPaymentID)
	if err == services.ErrNoRows {
		utils.NotFound(c, "Payment not found")
		return
	}
	if err != nil {
		utils.LogError("Failed to load transaction for receipt - Payment ID: %s: %v", gatewayPaymentID, err)
		utils.InternalServerError(c, "Failed to load payment", nil)
		return
	}

	if txn.Status != models.TransactionStatusCaptured && txn.Status != models.TransactionStatusRefunded {
		utils.LogError("Receipt requested for uncaptured payment - Payment ID: %s, status: %s", gatewayPaymentID, txn.Status)
		utils.BadRequest(c, "Receipt is only available for captured payments", nil)
		return
	}

	order, err := ctl.paymentOrders.ByID(ctx, txn.PaymentOrderID)
	if err != nil {
		utils.LogError("Failed to load payment order %d for receipt: %v", txn.PaymentOrderID, err)
		utils.InternalServerError(c, "Failed to load payment order", nil)
		return
	}
	if order.UserID != user.ID {
		utils.LogError("Receipt access denied - Payment ID: %s belongs to user %d, requested by %d", gatewayPaymentID, order.UserID, user.ID)
		utils.NotFound(c, "Payment not found")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "CampusDine")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Campus Canteen, Main Block")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@campusdine.app")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Receipt: "+order.Receipt)
	pdf.Cell(70, 8, "Date: "+txn.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(60, 8, "Payment ID: "+txn.GatewayPaymentID)
	pdf.Cell(70, 8, "Order ID: "+order.GatewayOrderID)
	pdf.Ln(8)
	pdf.Cell(60, 8, "Method: "+strings.ToUpper(txn.MethodType))
	if txn.MethodDetails != "" {
		pdf.Cell(70, 8, txn.MethodDetails)
	}
	pdf.Ln(8)
	pdf.Cell(60, 8, "Status: "+txn.Status)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, user.FirstName+" "+user.LastName)
	pdf.Ln(6)
	pdf.Cell(100, 8, user.Email)
	if user.StudentID != "" {
		pdf.Ln(6)
		pdf.Cell(100, 8, "Student ID: "+user.StudentID)
	}
	pdf.Ln(12)

	// Amounts are stored in paise.
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 8, "Amount Paid:", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%s %.2f", txn.Currency, float64(txn.Amount)/100), "", 1, "R", false, 0, "")
	if txn.Fee > 0 {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(120, 8, "Gateway Fee (incl. tax):", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%s %.2f", txn.Currency, float64(txn.Fee)/100), "", 1, "R", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for ordering with CampusDine!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render receipt PDF - Payment ID: %s: %v", gatewayPaymentID, err)
		utils.InternalServerError(c, "Failed to generate receipt", nil)
		return
	}
	utils.LogInfo("Receipt PDF generated - Payment ID: %s", gatewayPaymentID)

	c.Header("Content-Disposition", "attachment; filename=receipt_"+strconv.Itoa(int(txn.ID))+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
