package admin

import (
	"github.com/r56149203/EduSphere/services"
)

// AdminHandler serves every page under /admin
type AdminHandler struct {
	taxonomy    *services.TaxonomyService
	resources   *services.ResourceService
	users       *services.UserService
	dashboard   *services.DashboardService
	audit       *services.AuditService
	maxUploadMB int
}

// NewAdminHandler creates a new admin handler; maxUploadMB is shown on the resource form
func NewAdminHandler(
	taxonomy *services.TaxonomyService,
	resources *services.ResourceService,
	users *services.UserService,
	dashboard *services.DashboardService,
	audit *services.AuditService,
	maxUploadMB int,
) *AdminHandler {
	return &AdminHandler{
		taxonomy:    taxonomy,
		resources:   resources,
		users:       users,
		dashboard:   dashboard,
		audit:       audit,
		maxUploadMB: maxUploadMB,
	}
}
