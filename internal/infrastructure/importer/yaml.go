package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockreceipt/internal/core/types"
	"stockreceipt/internal/domain/receiving"
)

type yamlBatch struct {
	Supplier      string     `yaml:"supplier"`
	DeliveryDate  string     `yaml:"deliveryDate"`
	PaymentStatus string     `yaml:"paymentStatus"`
	Notes         string     `yaml:"notes"`
	Lines         []yamlLine `yaml:"lines"`
}

type yamlLine struct {
	Product          string     `yaml:"product"`
	Variant          string     `yaml:"variant"`
	Warehouse        string     `yaml:"warehouse"`
	ProductName      string     `yaml:"productName"`
	VariantName      string     `yaml:"variantName"`
	CurrentQuantity  yamlAmount `yaml:"currentQuantity"`
	ExpectedQuantity yamlAmount `yaml:"expectedQuantity"`
	ReceivedQuantity yamlAmount `yaml:"receivedQuantity"`
	UnitCostPrice    yamlAmount `yaml:"unitCostPrice"`
}

// yamlAmount keeps the scalar text so values like "1.10" are not rounded
// through float64.
type yamlAmount struct {
	types.Amount
}

func (a *yamlAmount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	if node.Tag == "!!null" {
		a.Amount = types.Amount{}
		return nil
	}
	a.Amount = types.ParseAmount(node.Value)
	return nil
}

// ReadYAML decodes a batch document.
func ReadYAML(r io.Reader, now time.Time) (*Batch, error) {
	var doc yamlBatch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty batch document")
		}
		return nil, fmt.Errorf("decode batch yaml: %w", err)
	}

	meta, err := metadata(doc.Supplier, doc.DeliveryDate, doc.PaymentStatus, doc.Notes, now)
	if err != nil {
		return nil, err
	}

	rows := make([]receiving.ReceivedLine, 0, len(doc.Lines))
	for i, l := range doc.Lines {
		current, err := snapshotQuantity(l.CurrentQuantity.Amount)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		row := receiving.NewEmptyLine()
		row.ProductRef = strings.TrimSpace(l.Product)
		row.VariantRef = strings.TrimSpace(l.Variant)
		row.WarehouseRef = strings.TrimSpace(l.Warehouse)
		row.ProductName = l.ProductName
		row.VariantName = l.VariantName
		row.CurrentQuantity = current
		row.ExpectedQuantity = l.ExpectedQuantity.Amount
		row.ReceivedQuantity = l.ReceivedQuantity.Amount
		row.UnitCostPrice = l.UnitCostPrice.Amount
		row.IsModified = true
		rows = append(rows, row)
	}

	return &Batch{Rows: rows, Metadata: meta}, nil
}

