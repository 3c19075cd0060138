package handlers

import (
	"fmt"
	"net/http"
	"time"

	"prism-backend/database"
	"prism-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// GET /api/admin/usage/export — laporan ledger kuota per user dalam xlsx.
// Buat audit pemakaian (termasuk ngecek kejadian fail-open yang ke-log).
func ExportUsageExcel(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var users []models.User
	database.DB.Order("created_at asc").Find(&users)

	f := excelize.NewFile()
	sheetName := "Usage Ledger"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"No", "User ID", "Email", "Pro", "Used Today", "Last Usage Date", "Energy", "Referred By", "Joined"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// Header bold + warna, gaya laporan
	styleHeader, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetCellStyle(sheetName, "A1", "I1", styleHeader)

	row := 2
	for i, u := range users {
		pro := "FREE"
		if u.IsPro {
			pro = "PRO"
		}
		referredBy := ""
		if u.ReferredBy != nil {
			referredBy = *u.ReferredBy
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), u.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), u.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), pro)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), u.DailyMessagesUsed)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), u.LastMessageDate)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), u.NeuralEnergy)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), referredBy)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), u.CreatedAt.Format("02-01-2006"))

		row++
	}

	f.SetColWidth(sheetName, "A", "A", 5)
	f.SetColWidth(sheetName, "B", "C", 30)
	f.SetColWidth(sheetName, "D", "G", 12)
	f.SetColWidth(sheetName, "H", "H", 30)
	f.SetColWidth(sheetName, "I", "I", 12)

	fileName := fmt.Sprintf("Prism_Usage_%s.xlsx", time.Now().Format("20060102"))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate excel"})
	}
}
