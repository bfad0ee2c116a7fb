package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"nexopos/internal/dto"
	"nexopos/internal/model"
	"nexopos/internal/repository"

	"github.com/google/uuid"
)

type InventoryService interface {
	ListLogs(ctx context.Context, actor Actor, filter dto.InventoryLogFilter) (*dto.InventoryLogListResponse, error)
	// ExportCSV renders the same query as a CSV file. Column order is part of
	// the contract with the admin frontend.
	ExportCSV(ctx context.Context, actor Actor, filter dto.InventoryLogFilter) ([]byte, error)
}

type inventoryService struct {
	logs repository.InventoryLogRepository
}

func NewInventoryService(logs repository.InventoryLogRepository) InventoryService {
	return &inventoryService{logs: logs}
}

func (s *inventoryService) ListLogs(ctx context.Context, actor Actor, filter dto.InventoryLogFilter) (*dto.InventoryLogListResponse, error) {
	repoFilter, err := toRepoLogFilter(filter)
	if err != nil {
		return nil, err
	}
	entries, total, err := s.logs.List(ctx, actor.TenantID, repoFilter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InventoryLogResponse, 0, len(entries))
	for i := range entries {
		data = append(data, *toLogResponse(&entries[i]))
	}
	page := repoFilter.Page
	if page < 1 {
		page = 1
	}
	return &dto.InventoryLogListResponse{Data: data, Total: total, Page: page, Limit: repoFilter.Limit}, nil
}

var csvHeader = []string{"date", "time", "product", "user", "action", "change", "final stock", "reason", "origin id"}

func (s *inventoryService) ExportCSV(ctx context.Context, actor Actor, filter dto.InventoryLogFilter) ([]byte, error) {
	repoFilter, err := toRepoLogFilter(filter)
	if err != nil {
		return nil, err
	}
	// Exports ignore pagination: the date range bounds the result.
	repoFilter.Page = 1
	repoFilter.Limit = -1

	entries, _, err := s.logs.List(ctx, actor.TenantID, repoFilter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i := range entries {
		e := &entries[i]
		origin := ""
		if e.SaleID != nil {
			origin = e.SaleID.String()
		} else if e.WebOrderID != nil {
			origin = e.WebOrderID.String()
		}
		record := []string{
			e.CreatedAt.Format("2006-01-02"),
			e.CreatedAt.Format("15:04:05"),
			e.ProductNameSnapshot,
			e.UserNameSnapshot,
			e.ActionType,
			e.QuantityChange.String(),
			e.NewStock.String(),
			e.Reason,
			origin,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toRepoLogFilter(filter dto.InventoryLogFilter) (repository.InventoryLogFilter, error) {
	out := repository.InventoryLogFilter{Page: filter.Page, Limit: filter.Limit}
	if filter.Start != "" {
		t, err := time.Parse("2006-01-02", filter.Start)
		if err != nil {
			return out, invalidRef("invalid start date %q", filter.Start)
		}
		out.Start = t
	}
	if filter.End != "" {
		t, err := time.Parse("2006-01-02", filter.End)
		if err != nil {
			return out, invalidRef("invalid end date %q", filter.End)
		}
		out.End = t.Add(24 * time.Hour)
	}
	if filter.CategoryID != "" {
		cid, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return out, invalidRef("invalid category id %q", filter.CategoryID)
		}
		out.CategoryID = &cid
	}
	return out, nil
}

func toLogResponse(e *model.InventoryLog) *dto.InventoryLogResponse {
	resp := &dto.InventoryLogResponse{
		ID:             e.ID.String(),
		ProductID:      e.ProductID.String(),
		Product:        e.ProductNameSnapshot,
		User:           e.UserNameSnapshot,
		ActionType:     e.ActionType,
		QuantityChange: e.QuantityChange,
		OldStock:       e.OldStock,
		NewStock:       e.NewStock,
		Reason:         e.Reason,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
	if e.SaleID != nil {
		id := e.SaleID.String()
		resp.SaleID = &id
	}
	if e.WebOrderID != nil {
		id := e.WebOrderID.String()
		resp.WebOrderID = &id
	}
	return resp
}
