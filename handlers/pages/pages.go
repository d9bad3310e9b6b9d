package pages

import (
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/services/storage"
)

// PagesHandler serves the public browse pages and uploaded PDFs
type PagesHandler struct {
	taxonomy  *services.TaxonomyService
	resources *services.ResourceService
	files     storage.FileStore
}

// NewPagesHandler creates a new pages handler; files is the pdf store
func NewPagesHandler(taxonomy *services.TaxonomyService, resources *services.ResourceService, files storage.FileStore) *PagesHandler {
	return &PagesHandler{
		taxonomy:  taxonomy,
		resources: resources,
		files:     files,
	}
}

// Index lists all classes
// GET /
func (h *PagesHandler) Index(c *fiber.Ctx) error {
	classes, err := h.taxonomy.ListClasses(c.UserContext())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return handlers.Render(c, fiber.StatusOK, "pages/index", fiber.Map{
		"Title":   "Home",
		"Classes": classes,
	})
}

// Class lists the subjects of a class
// GET /class?class_id=N
func (h *PagesHandler) Class(c *fiber.Ctx) error {
	class, err := h.taxonomy.GetClass(c.UserContext(), handlers.QueryID(c, "class_id"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	subjects, err := h.taxonomy.ListSubjects(c.UserContext(), class.ID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return handlers.Render(c, fiber.StatusOK, "pages/class", fiber.Map{
		"Title":    class.Name,
		"Class":    class,
		"Subjects": subjects,
	})
}

// Subject lists the chapters of a subject; the subject must belong to class_id
// GET /subject?class_id=N&subject_id=M
func (h *PagesHandler) Subject(c *fiber.Ctx) error {
	subject, class, err := h.taxonomy.GetSubject(c.UserContext(), handlers.QueryID(c, "subject_id"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	if class.ID != handlers.QueryID(c, "class_id") {
		return handlers.ServiceError(c, services.ErrNotFound)
	}

	chapters, err := h.taxonomy.ListChapters(c.UserContext(), subject.ID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return handlers.Render(c, fiber.StatusOK, "pages/subject", fiber.Map{
		"Title":    subject.Name,
		"Class":    class,
		"Subject":  subject,
		"Chapters": chapters,
	})
}

// Chapter shows the resources of a chapter grouped by type
// GET /chapter?class_id=N&subject_id=M&chapter_id=P
func (h *PagesHandler) Chapter(c *fiber.Ctx) error {
	hierarchy, err := h.taxonomy.ResolveHierarchy(c.UserContext(),
		handlers.QueryID(c, "class_id"),
		handlers.QueryID(c, "subject_id"),
		handlers.QueryID(c, "chapter_id"),
	)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	groups, err := h.resources.ListByChapter(c.UserContext(), hierarchy.ChapterID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return handlers.Render(c, fiber.StatusOK, "pages/chapter", fiber.Map{
		"Title":     hierarchy.ChapterName,
		"Hierarchy": hierarchy,
		"Groups":    groups,
	})
}

// PDFViewer embeds an uploaded PDF
// GET /pdf-viewer?file=pdfs/<name>.pdf
func (h *PagesHandler) PDFViewer(c *fiber.Ctx) error {
	name, err := h.storedPDF(c.Query("file"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return handlers.Render(c, fiber.StatusOK, "pages/pdf_viewer", fiber.Map{
		"Title":   name,
		"FileURL": "/uploads/" + services.PDFDir + "/" + name,
	})
}

// ServePDF streams an uploaded PDF
// GET /uploads/pdfs/:name
func (h *PagesHandler) ServePDF(c *fiber.Ctx) error {
	name, err := h.storedPDF(services.PDFDir + "/" + c.Params("name"))
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	if err := c.SendFile(h.files.Path(name)); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return nil
}

// storedPDF resolves a pdfs/<name>.pdf path to an existing stored file name.
// Anything that does not clean to itself or leaves the pdf directory is not found.
func (h *PagesHandler) storedPDF(relPath string) (string, error) {
	if relPath == "" || path.Clean(relPath) != relPath {
		return "", services.ErrNotFound
	}
	name, ok := services.StoredName(relPath)
	if !ok || !strings.HasSuffix(strings.ToLower(name), ".pdf") || !h.files.Exists(name) {
		return "", services.ErrNotFound
	}
	return name, nil
}

// Error renders the error page for ?code=N
// GET /error
func (h *PagesHandler) Error(c *fiber.Ctx) error {
	code := c.QueryInt("code", fiber.StatusInternalServerError)
	return handlers.ErrorPage(c, code)
}
