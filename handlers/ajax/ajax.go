package ajax

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/utils/response"
)

// Option is one entry of a cascading select
type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AjaxHandler feeds the cascading class/subject/chapter selects
type AjaxHandler struct {
	taxonomy *services.TaxonomyService
}

// NewAjaxHandler creates a new ajax handler
func NewAjaxHandler(taxonomy *services.TaxonomyService) *AjaxHandler {
	return &AjaxHandler{taxonomy: taxonomy}
}

// Subjects lists the subjects of class_id; unknown or missing ids give []
// GET /ajax/subjects?class_id=N
func (h *AjaxHandler) Subjects(c *fiber.Ctx) error {
	subjects, err := h.taxonomy.ListSubjects(c.UserContext(), handlers.QueryID(c, "class_id"))
	if err != nil {
		log.Errorf("ajax subjects: %v", err)
		return response.Error(c, fiber.StatusInternalServerError, services.ErrSystem.Error(), response.CodeForStatus(fiber.StatusInternalServerError))
	}

	options := make([]Option, 0, len(subjects))
	for _, s := range subjects {
		options = append(options, Option{ID: s.ID, Name: s.Name})
	}
	return c.JSON(options)
}

// Chapters lists the chapters of subject_id; unknown or missing ids give []
// GET /ajax/chapters?subject_id=N
func (h *AjaxHandler) Chapters(c *fiber.Ctx) error {
	chapters, err := h.taxonomy.ListChapters(c.UserContext(), handlers.QueryID(c, "subject_id"))
	if err != nil {
		log.Errorf("ajax chapters: %v", err)
		return response.Error(c, fiber.StatusInternalServerError, services.ErrSystem.Error(), response.CodeForStatus(fiber.StatusInternalServerError))
	}

	options := make([]Option, 0, len(chapters))
	for _, ch := range chapters {
		options = append(options, Option{ID: ch.ID, Name: ch.Name})
	}
	return c.JSON(options)
}
