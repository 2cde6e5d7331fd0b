// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"net/http"
	"strconv"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/utils"
	"github.com/pmdworks/pmd-backend/models"
)

// listAuditLogs serves the paginated audit trail. Filtering is by
// module, action, user id, and client IP; page is 1-based and limit is
// clamped by the repository.
func (h *Handler) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	filter := auditFilterFromQuery(r)

	items, total, err := h.services.AuditService.ListAuditLogs(ctx, filter)
	if err != nil {
		log.Err(err).Msg("audit listing failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.AuditListResponse{
		Items: items,
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: int(total),
	}, http.StatusOK)
}

func auditFilterFromQuery(r *http.Request) models.AuditListFilter {
	q := r.URL.Query()

	filter := models.AuditListFilter{
		Module:    q.Get("module"),
		Action:    q.Get("action"),
		IPAddress: q.Get("ip"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64); err == nil {
		filter.UserID = &userID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	return filter
}
