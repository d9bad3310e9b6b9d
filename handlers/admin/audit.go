package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/utils/response"
)

const auditPageSize = 20

// ListAuditLogs shows the admin audit log, newest first
// GET /admin/audit?page=N
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page, err := h.audit.List(c.UserContext(), c.QueryInt("page", 1), auditPageSize)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return handlers.Render(c, fiber.StatusOK, "admin/audit", fiber.Map{
		"Title":      "Audit Log",
		"Active":     "audit",
		"Entries":    page.Items,
		"Pagination": response.CalculatePagination(page.Page, page.PageSize, page.Total),
	})
}
