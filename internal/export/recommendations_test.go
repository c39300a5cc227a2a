package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockwise/internal/models"
	"stockwise/internal/services"
)

func TestRecommendations(t *testing.T) {
	t.Run("writes_header_and_rows", func(t *testing.T) {
		at := time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)
		data, err := Recommendations([]services.PurchaseRecommendation{
			{
				MaterialID:       "M001",
				MaterialName:     "Steel bolt",
				Unit:             "pcs",
				AlertType:        models.AlertTypePredictedShortage,
				PredictedStock:   42,
				SafeThreshold:    50,
				RequiredQuantity: 8,
				SupplierName:     "Acme",
				AlertTime:        at,
			},
		})
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Material ID", rows[0][0])
		assert.Equal(t, "M001", rows[1][0])
		assert.Equal(t, "Steel bolt", rows[1][1])
		assert.Equal(t, "predicted_shortage", rows[1][4])
		assert.Equal(t, "8", rows[1][7])
		assert.Equal(t, "Acme", rows[1][8])
		assert.Equal(t, at.Format(time.RFC3339), rows[1][11])
	})

	t.Run("empty_list_keeps_header", func(t *testing.T) {
		data, err := Recommendations(nil)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], len(headers))
	})
}

func TestFilename(t *testing.T) {
	got := Filename(time.Date(2026, 3, 2, 23, 0, 0, 0, time.FixedZone("x", 8*3600)))
	assert.Equal(t, "purchase_recommendations_20260302.xlsx", got)
}
