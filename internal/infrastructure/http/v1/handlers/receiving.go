package handlers

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockreceipt/internal/domain/receiving"
	"stockreceipt/internal/infrastructure/http/v1/dto"
	"stockreceipt/pkg/logger"
)

// ReceivingHandler exposes the receiving engine over HTTP.
type ReceivingHandler struct {
	*BaseHandler
	service *receiving.Service
	now     func() time.Time
}

// NewReceivingHandler creates a receiving handler.
func NewReceivingHandler(base *BaseHandler, service *receiving.Service) *ReceivingHandler {
	return &ReceivingHandler{BaseHandler: base, service: service, now: time.Now}
}

// RegisterRoutes mounts the receiving endpoints. execute gets extra
// middleware, typically a role check.
func (h *ReceivingHandler) RegisterRoutes(rg *gin.RouterGroup, execute ...gin.HandlerFunc) {
	rg.POST("/lines/validate", h.ValidateLine)
	rg.GET("/variants/:variantRef", h.ResolveVariant)
	rg.POST("/batches/assemble", h.Assemble)
	rg.POST("/batches/execute", append(execute, h.Execute)...)
}

// ValidateLine checks one quantity and cost pair.
// POST /receiving/lines/validate
func (h *ReceivingHandler) ValidateLine(c *gin.Context) {
	var req dto.ValidateLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.OK(c, dto.NewValidateLineResponse(h.service.ValidateLine(req.ReceivedQuantity, req.UnitCostPrice)))
}

// ResolveVariant returns a line pre-filled from the catalog.
// GET /receiving/variants/:variantRef
func (h *ReceivingHandler) ResolveVariant(c *gin.Context) {
	line, err := h.service.ResolveVariant(c.Request.Context(), receiving.NewEmptyLine(), c.Param("variantRef"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromLine(line))
}

// Assemble builds a batch without applying it.
// POST /receiving/batches/assemble
func (h *ReceivingHandler) Assemble(c *gin.Context) {
	var req dto.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rows, meta, err := req.ToDomain(h.now())
	if err != nil {
		h.Error(c, err)
		return
	}

	batch, err := h.service.Assemble(rows, meta)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatch(*batch))
}

// Execute assembles and applies a batch. With Accept: text/event-stream the
// handler streams progress events and ends with a result event.
// POST /receiving/batches/execute
func (h *ReceivingHandler) Execute(c *gin.Context) {
	var req dto.BatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	rows, meta, err := req.ToDomain(h.now())
	if err != nil {
		h.Error(c, err)
		return
	}

	batch, err := h.service.Assemble(rows, meta)
	if err != nil {
		h.Error(c, err)
		return
	}

	logger.Info(ctx, "executing receipt batch",
		"supplier_ref", batch.Metadata.SupplierRef,
		"items", batch.ItemCount(),
		"operator_id", h.OperatorID(c),
	)

	if wantsEventStream(c) {
		h.stream(c, *batch)
		return
	}

	report := h.service.Execute(ctx, *batch, nil)
	fin := h.service.Finalize(ctx, *batch, report)
	h.OK(c, dto.NewExecuteResponse(report, fin))
}

func (h *ReceivingHandler) stream(c *gin.Context, batch receiving.ReceiptBatch) {
	ctx := c.Request.Context()

	// One progress event per line, so the buffer never blocks a worker.
	progress := make(chan dto.ProgressEvent, len(batch.Lines))
	result := make(chan dto.ExecuteResponse, 1)

	go func() {
		defer close(progress)
		report := h.service.Execute(ctx, batch, func(completed, total int) {
			progress <- dto.ProgressEvent{Completed: completed, Total: total}
		})
		result <- dto.NewExecuteResponse(report, h.service.Finalize(ctx, batch, report))
	}()

	c.Header("Cache-Control", "no-cache")
	c.Stream(func(io.Writer) bool {
		if ev, ok := <-progress; ok {
			c.SSEvent("progress", ev)
			return true
		}
		c.SSEvent("result", <-result)
		return false
	})
}

func wantsEventStream(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}
