package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/greenthumb/nursery-api/internal/domains/orders/domain"
)

type normalizedCartLine struct {
	PlantID   string `json:"plantId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type normalizedCart struct {
	CustomerID string               `json:"customerId"`
	Lines      []normalizedCartLine `json:"lines"`
}

// FingerprintCart builds a deterministic hash of the staged cart so a
// retried checkout with the same key and contents replays the stored order.
func FingerprintCart(customerID string, items []*domain.OrderItem) (string, error) {
	normalized := normalizedCart{CustomerID: customerID}
	for _, item := range items {
		line := normalizedCartLine{PlantID: item.PlantID, Quantity: item.Quantity}
		if item.Plant != nil {
			line.UnitPrice = item.Plant.UnitPrice.String()
		}
		normalized.Lines = append(normalized.Lines, line)
	}
	sort.Slice(normalized.Lines, func(i, j int) bool {
		return normalized.Lines[i].PlantID < normalized.Lines[j].PlantID
	})
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
